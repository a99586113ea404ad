package repository

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// WarehouseStockRepository define el puerto para la cantidad por producto+bodega.
type WarehouseStockRepository interface {
	// Get devuelve la fila o una con Quantity 0 si no existe.
	Get(ctx context.Context, productID, warehouseID string) (*entity.WarehouseStock, error)
	// GetForUpdate bloquea la fila de la bodega origen durante un traslado.
	GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.WarehouseStock, error)
	// Upsert inserta o actualiza la cantidad de la bodega.
	Upsert(ctx context.Context, stock *entity.WarehouseStock) error
}
