package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeIN  = "IN"  // entrada (reverso de venta)
	MovementTypeOUT = "OUT" // salida (venta completada)
)

// InventoryMovement registro inmutable de un cambio de stock.
// StockBefore/StockAfter guardan el contador leído en vivo al momento del movimiento.
type InventoryMovement struct {
	ID          string
	ProductID   string
	VariantID   string
	SaleID      string // venta que originó el movimiento
	Type        string
	Quantity    int // siempre > 0
	Reason      string
	StockBefore int
	StockAfter  int
	CreatedBy   string
	CreatedAt   time.Time
}
