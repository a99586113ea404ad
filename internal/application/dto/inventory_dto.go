package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateStockRequest body para POST /api/stock.
type CreateStockRequest struct {
	ProductID       string `json:"product_id"`
	InitialQuantity int64  `json:"initial_quantity"`
	MinStockLevel   int64  `json:"min_stock_level"`
	RequestedBy     string `json:"requested_by,omitempty"`
}

// OperationRequest body común de decrease/increase/reserve/confirm/cancel.
type OperationRequest struct {
	Quantity        int64            `json:"quantity"`
	Reason          string           `json:"reason,omitempty"`
	ReferenceNumber string           `json:"reference_number,omitempty"`
	RequestedBy     string           `json:"requested_by,omitempty"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"` // solo increase
}

// MoveStockRequest body para POST /api/stock/:productId/move.
type MoveStockRequest struct {
	Quantity        int64  `json:"quantity"`
	FromWarehouseID string `json:"from_warehouse_id"`
	ToWarehouseID   string `json:"to_warehouse_id"`
	Reason          string `json:"reason,omitempty"`
	ReferenceNumber string `json:"reference_number,omitempty"`
	RequestedBy     string `json:"requested_by,omitempty"`
}

// AdjustStockRequest body para POST /api/stock/:productId/adjust.
// Quantity con signo; Type: ADJUSTMENT, EXPIRED, DAMAGED o RETURNED.
type AdjustStockRequest struct {
	Quantity        int64  `json:"quantity"`
	Type            string `json:"type"`
	Reason          string `json:"reason,omitempty"`
	ReferenceNumber string `json:"reference_number,omitempty"`
	RequestedBy     string `json:"requested_by,omitempty"`
}

// StockRecordResponse contadores actuales de un producto.
type StockRecordResponse struct {
	ProductID         string          `json:"product_id"`
	TotalQuantity     int64           `json:"total_quantity"`
	AvailableQuantity int64           `json:"available_quantity"`
	ReservedQuantity  int64           `json:"reserved_quantity"`
	MinStockLevel     int64           `json:"min_stock_level"`
	AverageCost       decimal.Decimal `json:"average_cost"`
	Status            string          `json:"status"`
	Version           int64           `json:"version"`
	LastRestockedAt   *time.Time      `json:"last_restocked_at,omitempty"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// MovementResponse entrada del libro de movimientos.
type MovementResponse struct {
	ID                string          `json:"id"`
	TransactionID     string          `json:"transaction_id"`
	ProductID         string          `json:"product_id"`
	WarehouseID       *string         `json:"warehouse_id,omitempty"`
	Type              string          `json:"type"`
	Quantity          int64           `json:"quantity"`
	PreviousAvailable int64           `json:"previous_available"`
	PreviousReserved  int64           `json:"previous_reserved"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	Reason            string          `json:"reason,omitempty"`
	ReferenceNumber   string          `json:"reference_number,omitempty"`
	RequestedBy       string          `json:"requested_by,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ValidationResponse resultado del chequeo de consistencia de un producto.
type ValidationResponse struct {
	ProductID     string `json:"product_id"`
	Consistent    bool   `json:"consistent"`
	ExpectedTotal int64  `json:"expected_total"`
	ActualTotal   int64  `json:"actual_total"`
	Available     int64  `json:"available"`
	Reserved      int64  `json:"reserved"`
	Version       int64  `json:"version"`
}

// PageRequest paginación del listado de movimientos.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// ErrorResponse cuerpo de error HTTP (code estable para clientes, message legible).
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
