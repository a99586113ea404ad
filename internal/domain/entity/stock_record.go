package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockRecord representa los contadores de stock de un producto.
// Invariante protegido por el motor: Available + Reserved == Total, todos >= 0.
// Solo el motor de operaciones puede mutar estos campos; la versión se
// incrementa en cada mutación confirmada (fencing token para OCC).
type StockRecord struct {
	ProductID         string
	TotalQuantity     int64
	AvailableQuantity int64
	ReservedQuantity  int64
	MinStockLevel     int64
	AverageCost       decimal.Decimal // costo promedio ponderado (actualizado en entradas con costo)
	Version           int64
	LastRestockedAt   *time.Time
	UpdatedAt         time.Time
}

// IsConsistent verifica el invariante de contadores del registro.
func (r *StockRecord) IsConsistent() bool {
	return r.AvailableQuantity >= 0 &&
		r.ReservedQuantity >= 0 &&
		r.TotalQuantity >= 0 &&
		r.AvailableQuantity+r.ReservedQuantity == r.TotalQuantity
}
