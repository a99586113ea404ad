package inventory

import "github.com/jhoicas/stock-engine/internal/domain/entity"

// StockStatus clasifica la urgencia de reposición de un registro de stock.
type StockStatus string

const (
	StatusOutOfStock StockStatus = "OUT_OF_STOCK"
	StatusCritical   StockStatus = "CRITICAL"
	StatusLow        StockStatus = "LOW"
	StatusNormal     StockStatus = "NORMAL"
)

// Classify clasifica un registro contra su nivel mínimo configurado (función
// pura, sin efectos):
//
//	disponible <= 0            -> OUT_OF_STOCK
//	disponible <= mínimo / 2   -> CRITICAL
//	disponible <= mínimo       -> LOW
//	en otro caso               -> NORMAL
func Classify(record *entity.StockRecord) StockStatus {
	available := record.AvailableQuantity
	min := record.MinStockLevel
	switch {
	case available <= 0:
		return StatusOutOfStock
	case available <= min/2:
		return StatusCritical
	case available <= min:
		return StatusLow
	default:
		return StatusNormal
	}
}
