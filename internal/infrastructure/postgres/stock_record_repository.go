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

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

const stockRecordColumns = `product_id, total_quantity, available_quantity, reserved_quantity,
		min_stock_level, average_cost, version, last_restocked_at, updated_at`

// StockRecordRepo implementación de StockRecordRepository sobre PostgreSQL
// (usable con pool o tx).
type StockRecordRepo struct {
	q Querier
}

// NewStockRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockRecordRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q}
}

// GetByProduct lee los contadores actuales sin bloquear la fila.
func (r *StockRecordRepo) GetByProduct(ctx context.Context, productID string) (*entity.StockRecord, error) {
	query := `SELECT ` + stockRecordColumns + ` FROM stock_records WHERE product_id = $1`
	return r.scanOne(ctx, query, productID)
}

// GetForUpdate lee y bloquea la fila (SELECT FOR UPDATE). La espera está
// acotada por el lock_timeout de la transacción; al agotarse devuelve
// domain.ErrLockTimeout.
func (r *StockRecordRepo) GetForUpdate(ctx context.Context, productID string) (*entity.StockRecord, error) {
	query := `SELECT ` + stockRecordColumns + ` FROM stock_records WHERE product_id = $1 FOR UPDATE`
	return r.scanOne(ctx, query, productID)
}

func (r *StockRecordRepo) scanOne(ctx context.Context, query string, productID string) (*entity.StockRecord, error) {
	var rec entity.StockRecord
	err := r.q.QueryRow(ctx, query, productID).Scan(
		&rec.ProductID, &rec.TotalQuantity, &rec.AvailableQuantity, &rec.ReservedQuantity,
		&rec.MinStockLevel, &rec.AverageCost, &rec.Version, &rec.LastRestockedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isLockNotAvailable(err) {
			return nil, domain.ErrLockTimeout
		}
		return nil, fmt.Errorf("get stock record: %w", err)
	}
	return &rec, nil
}

// Create inserta el registro inicial de un producto.
func (r *StockRecordRepo) Create(ctx context.Context, record *entity.StockRecord) error {
	query := `
		INSERT INTO stock_records (product_id, total_quantity, available_quantity, reserved_quantity,
			min_stock_level, average_cost, version, last_restocked_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		record.ProductID, record.TotalQuantity, record.AvailableQuantity, record.ReservedQuantity,
		record.MinStockLevel, record.AverageCost, record.Version, record.LastRestockedAt, record.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create stock record: %w", err)
	}
	return nil
}

// UpdateWithVersion escribe los contadores con compare-and-swap sobre la
// versión. Si la versión en BD ya no coincide (otro escritor hizo commit
// entre la lectura y esta escritura) no toca la fila y devuelve
// domain.ErrVersionConflict, que el coordinador de reintentos interpreta como
// "volver a empezar con datos frescos". En éxito incrementa record.Version.
func (r *StockRecordRepo) UpdateWithVersion(ctx context.Context, record *entity.StockRecord) error {
	query := `
		UPDATE stock_records
		SET total_quantity = $1, available_quantity = $2, reserved_quantity = $3,
			min_stock_level = $4, average_cost = $5, version = version + 1,
			last_restocked_at = $6, updated_at = $7
		WHERE product_id = $8 AND version = $9`
	tag, err := r.q.Exec(ctx, query,
		record.TotalQuantity, record.AvailableQuantity, record.ReservedQuantity,
		record.MinStockLevel, record.AverageCost,
		record.LastRestockedAt, record.UpdatedAt,
		record.ProductID, record.Version,
	)
	if err != nil {
		return fmt.Errorf("update stock record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVersionConflict
	}
	record.Version++
	return nil
}

// FindBelowThreshold lista registros con disponible <= threshold (sin bloqueo).
func (r *StockRecordRepo) FindBelowThreshold(ctx context.Context, threshold int64) ([]*entity.StockRecord, error) {
	query := `SELECT ` + stockRecordColumns + `
		FROM stock_records WHERE available_quantity <= $1
		ORDER BY available_quantity ASC, product_id`
	rows, err := r.q.Query(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("find below threshold: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// List pagina todos los registros (para auditorías batch).
func (r *StockRecordRepo) List(ctx context.Context, limit, offset int) ([]*entity.StockRecord, error) {
	query := `SELECT ` + stockRecordColumns + `
		FROM stock_records ORDER BY product_id LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows pgx.Rows) ([]*entity.StockRecord, error) {
	var list []*entity.StockRecord
	for rows.Next() {
		var rec entity.StockRecord
		if err := rows.Scan(
			&rec.ProductID, &rec.TotalQuantity, &rec.AvailableQuantity, &rec.ReservedQuantity,
			&rec.MinStockLevel, &rec.AverageCost, &rec.Version, &rec.LastRestockedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock record: %w", err)
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}
