package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Es el límite de unidad de trabajo del motor:
// leer registro, validar, mutar, anotar movimiento y commit son atómicos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		recordRepo repository.StockRecordRepository,
		movementRepo repository.StockMovementRepository,
		warehouseRepo repository.WarehouseStockRepository,
	) error) error
}

// ErrCacheMiss lo devuelve Get cuando la clave no existe. Un miss es el camino
// esperado (se recalcula desde la BD); cualquier otro error de Get indica un
// caché degradado y se registra.
var ErrCacheMiss = errors.New("clave no encontrada en el caché")

// CacheClient puerto mínimo de caché para las rutas de solo lectura
// (resumen de umbrales). Nunca se usa dentro de un bloqueo de fila.
type CacheClient interface {
	// Get recupera el valor de una clave; clave inexistente -> ErrCacheMiss.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}
