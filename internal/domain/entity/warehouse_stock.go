package entity

import "time"

// WarehouseStock representa la cantidad de un producto en una bodega concreta.
// La suma por producto debe coincidir con TotalQuantity del StockRecord cuando
// se usan bodegas; los traslados mueven cantidad entre filas de esta tabla.
type WarehouseStock struct {
	ProductID   string
	WarehouseID string
	Quantity    int64
	UpdatedAt   time.Time
}
