package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLineRequest línea del carrito enviada por el POS.
// Si UnitPrice es nil se captura el precio actual del catálogo.
type CartLineRequest struct {
	ItemID    string           `json:"item_id" validate:"required"`
	Kind      string           `json:"kind" validate:"required,oneof=product service"`
	VariantID string           `json:"variant_id,omitempty"`
	Quantity  int              `json:"quantity" validate:"required,min=1"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// DiscountRequest regla de descuento.
type DiscountRequest struct {
	Type  string          `json:"type" validate:"omitempty,oneof=FIXED PERCENTAGE"`
	Value decimal.Decimal `json:"value"`
}

// CartRequest carrito completo.
type CartRequest struct {
	Lines    []CartLineRequest `json:"lines" validate:"dive"`
	Discount *DiscountRequest  `json:"discount,omitempty"`
}

// PreviewRequest body para POST /api/sales/preview.
type PreviewRequest struct {
	CartRequest
	EmployeeID string `json:"employee_id,omitempty"`
}

// CheckoutRequest body para POST /api/sales y PUT /api/sales/:id.
type CheckoutRequest struct {
	CartRequest
	Status         string `json:"status" validate:"required,oneof=quote completed"`
	ClientID       string `json:"client_id,omitempty"`
	EmployeeID     string `json:"employee_id,omitempty"`
	PaymentMethod  string `json:"payment_method,omitempty" validate:"omitempty,max=30"`
	IdempotencyKey string `json:"idempotency_key,omitempty" validate:"omitempty,max=100"`
}

// SaleListRequest filtros de GET /api/sales.
type SaleListRequest struct {
	Status string `query:"status" validate:"omitempty,oneof=quote completed"`
	From   string `query:"from"`
	To     string `query:"to"`
	PageRequest
}

// CartLineResponse línea con precio.
type CartLineResponse struct {
	LineID    string          `json:"line_id"`
	ItemID    string          `json:"item_id"`
	Kind      string          `json:"kind"`
	VariantID string          `json:"variant_id,omitempty"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartSummaryResponse resumen con precios sin persistir nada.
type CartSummaryResponse struct {
	Lines      []CartLineResponse `json:"lines"`
	Subtotal   decimal.Decimal    `json:"subtotal"`
	Discount   decimal.Decimal    `json:"discount"`
	Total      decimal.Decimal    `json:"total"`
	Commission decimal.Decimal    `json:"commission"`
}

// SaleItemResponse ítem de una venta.
type SaleItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id,omitempty"`
	ServiceID string          `json:"service_id,omitempty"`
	VariantID string          `json:"variant_id,omitempty"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SaleResponse venta o cotización con sus ítems.
type SaleResponse struct {
	ID               string             `json:"id"`
	Status           string             `json:"status"`
	ClientID         string             `json:"client_id,omitempty"`
	EmployeeID       string             `json:"employee_id,omitempty"`
	PaymentMethod    string             `json:"payment_method"`
	DiscountType     string             `json:"discount_type,omitempty"`
	DiscountValue    decimal.Decimal    `json:"discount_value"`
	Subtotal         decimal.Decimal    `json:"subtotal"`
	Discount         decimal.Decimal    `json:"discount"`
	TotalAmount      decimal.Decimal    `json:"total_amount"`
	CommissionAmount decimal.Decimal    `json:"commission_amount"`
	CreatedBy        string             `json:"created_by,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	Items            []SaleItemResponse `json:"items,omitempty"`
}
