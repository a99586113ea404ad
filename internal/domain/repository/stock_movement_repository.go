package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia del libro de
// movimientos. Solo inserta y lee: las entradas nunca se actualizan ni borran.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	// ListByProduct lista movimientos de un producto en un rango de fechas,
	// del más reciente al más antiguo (contrato de auditoría).
	ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	// CountByProduct cuenta las entradas de un producto (reconciliación).
	CountByProduct(ctx context.Context, productID string) (int64, error)
}
