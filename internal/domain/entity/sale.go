package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta. La cancelación es eliminación, no un estado.
const (
	SaleStatusQuote     = "quote"
	SaleStatusCompleted = "completed"
)

// Tipos de descuento aplicables a la venta.
const (
	DiscountTypeFixed      = "FIXED"
	DiscountTypePercentage = "PERCENTAGE"
)

// Sale cabecera de una venta o cotización.
// TotalAmount = Subtotal - Discount; CommissionAmount se guarda aunque sea cotización.
type Sale struct {
	ID               string
	Status           string
	ClientID         string
	EmployeeID       string
	PaymentMethod    string
	DiscountType     string
	DiscountValue    decimal.Decimal // valor ingresado (monto o porcentaje)
	Subtotal         decimal.Decimal
	Discount         decimal.Decimal // descuento aplicado en dinero
	TotalAmount      decimal.Decimal
	CommissionAmount decimal.Decimal
	IdempotencyKey   string
	CreatedBy        string
	CreatedAt        time.Time
}

// IsCompleted indica si la venta ya afectó stock y libro financiero.
func (s *Sale) IsCompleted() bool { return s.Status == SaleStatusCompleted }

// SaleItem línea de una venta: exactamente uno de ProductID o ServiceID.
type SaleItem struct {
	ID        string
	SaleID    string
	ProductID string
	ServiceID string
	VariantID string
	Name      string // nombre capturado al vender
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal // Quantity * UnitPrice
}

// IsProduct indica si la línea mueve inventario.
func (i *SaleItem) IsProduct() bool { return i.ProductID != "" }

// StockKey contador afectado por la línea.
func (i *SaleItem) StockKey() StockKey {
	return StockKey{ProductID: i.ProductID, VariantID: i.VariantID}
}
