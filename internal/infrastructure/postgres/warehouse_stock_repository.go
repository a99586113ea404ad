package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.WarehouseStockRepository = (*WarehouseStockRepo)(nil)

// WarehouseStockRepo implementación de WarehouseStockRepository sobre
// PostgreSQL (usable con pool o tx).
type WarehouseStockRepo struct {
	q Querier
}

// NewWarehouseStockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewWarehouseStockRepository(q Querier) *WarehouseStockRepo {
	return &WarehouseStockRepo{q: q}
}

// Get obtiene la cantidad de un producto en una bodega. Si no hay fila,
// devuelve una con cantidad cero (la bodega destino de un traslado puede no
// existir todavía).
func (r *WarehouseStockRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.WarehouseStock, error) {
	query := `
		SELECT product_id, warehouse_id, quantity, updated_at
		FROM warehouse_stock WHERE product_id = $1 AND warehouse_id = $2`
	var ws entity.WarehouseStock
	err := r.q.QueryRow(ctx, query, productID, warehouseID).Scan(
		&ws.ProductID, &ws.WarehouseID, &ws.Quantity, &ws.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.WarehouseStock{ProductID: productID, WarehouseID: warehouseID}, nil
		}
		return nil, fmt.Errorf("get warehouse stock: %w", err)
	}
	return &ws, nil
}

// GetForUpdate obtiene la fila y la bloquea (SELECT FOR UPDATE). La bodega
// origen de un traslado debe existir: sin fila devuelve domain.ErrNotFound.
func (r *WarehouseStockRepo) GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.WarehouseStock, error) {
	query := `
		SELECT product_id, warehouse_id, quantity, updated_at
		FROM warehouse_stock WHERE product_id = $1 AND warehouse_id = $2
		FOR UPDATE`
	var ws entity.WarehouseStock
	err := r.q.QueryRow(ctx, query, productID, warehouseID).Scan(
		&ws.ProductID, &ws.WarehouseID, &ws.Quantity, &ws.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isLockNotAvailable(err) {
			return nil, domain.ErrLockTimeout
		}
		return nil, fmt.Errorf("get warehouse stock for update: %w", err)
	}
	return &ws, nil
}

// Upsert inserta o actualiza la cantidad por producto y bodega.
func (r *WarehouseStockRepo) Upsert(ctx context.Context, stock *entity.WarehouseStock) error {
	query := `
		INSERT INTO warehouse_stock (product_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, stock.ProductID, stock.WarehouseID, stock.Quantity, stock.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert warehouse stock: %w", err)
	}
	return nil
}
