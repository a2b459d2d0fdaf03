package dto

import "time"

// MovementListRequest filtros de GET /api/inventory/movements.
type MovementListRequest struct {
	ProductID string `query:"product_id"`
	SaleID    string `query:"sale_id"`
	From      string `query:"from"` // YYYY-MM-DD
	To        string `query:"to"`
	PageRequest
}

// MovementResponse movimiento de inventario.
type MovementResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	VariantID   string    `json:"variant_id,omitempty"`
	SaleID      string    `json:"sale_id,omitempty"`
	Type        string    `json:"type"`
	Quantity    int       `json:"quantity"`
	Reason      string    `json:"reason"`
	StockBefore int       `json:"stock_before"`
	StockAfter  int       `json:"stock_after"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
