package repository

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// StockRecordRepository define el puerto de persistencia para los contadores
// de stock. Usado dentro de transacciones para garantizar consistencia.
type StockRecordRepository interface {
	// GetByProduct lee el registro sin bloquear (lectura read-committed).
	// Devuelve domain.ErrNotFound si no existe.
	GetByProduct(ctx context.Context, productID string) (*entity.StockRecord, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE con lock_timeout acotado).
	// Devuelve domain.ErrNotFound si no existe y domain.ErrLockTimeout si se
	// agota la espera del bloqueo.
	GetForUpdate(ctx context.Context, productID string) (*entity.StockRecord, error)
	// Create inserta el registro inicial. Devuelve domain.ErrDuplicate si ya existe.
	Create(ctx context.Context, record *entity.StockRecord) error
	// UpdateWithVersion escribe los contadores con compare-and-swap sobre la
	// versión: incrementa Version y devuelve domain.ErrVersionConflict si la
	// versión en BD ya no coincide con record.Version.
	UpdateWithVersion(ctx context.Context, record *entity.StockRecord) error
	// FindBelowThreshold lista registros con disponible <= threshold (lectura
	// sin bloqueo, para alertas).
	FindBelowThreshold(ctx context.Context, threshold int64) ([]*entity.StockRecord, error)
	// List pagina todos los registros (para auditorías batch).
	List(ctx context.Context, limit, offset int) ([]*entity.StockRecord, error)
}
