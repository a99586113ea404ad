package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de inventario.
const (
	MovementTypeIncrease           = "INCREASE"
	MovementTypeDecrease           = "DECREASE"
	MovementTypeReserve            = "RESERVE"
	MovementTypeConfirmReservation = "CONFIRM_RESERVATION"
	MovementTypeCancelReservation  = "CANCEL_RESERVATION"
	MovementTypeMoveIn             = "MOVE_IN"
	MovementTypeMoveOut            = "MOVE_OUT"
	MovementTypeAdjustment         = "ADJUSTMENT"
	MovementTypeExpired            = "EXPIRED"
	MovementTypeDamaged            = "DAMAGED"
	MovementTypeReturned           = "RETURNED"
)

// StockMovement es una entrada del libro de movimientos: append-only, una por
// mutación confirmada, inmutable una vez escrita. PreviousAvailable y
// PreviousReserved son el snapshot tomado justo antes de mutar, para
// auditoría y reconciliación.
type StockMovement struct {
	ID                string
	TransactionID     string // agrupa las dos entradas de un traslado
	ProductID         string
	WarehouseID       *string // nil cuando la operación no involucra bodega
	Type              string
	Quantity          int64 // magnitud con signo del cambio solicitado
	PreviousAvailable int64
	PreviousReserved  int64
	UnitCost          decimal.Decimal
	TotalCost         decimal.Decimal
	Reason            string
	ReferenceNumber   string // ej. id de orden
	RequestedBy       string
	CreatedAt         time.Time
}
