package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// VariantResponse talla con su stock.
type VariantResponse struct {
	ID            string `json:"id"`
	Size          string `json:"size"`
	StockQuantity int    `json:"stock_quantity"`
}

// CatalogItemResponse producto o servicio del catálogo.
type CatalogItemResponse struct {
	Kind      string            `json:"kind"`
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	UnitPrice decimal.Decimal   `json:"unit_price"`
	ImageRef  string            `json:"image_ref,omitempty"`
	Stock     int               `json:"stock"`
	LowStock  bool              `json:"low_stock"`
	Variants  []VariantResponse `json:"variants,omitempty"`
}

// CatalogResponse foto del catálogo para el POS (solo lectura, puede venir de caché).
type CatalogResponse struct {
	Products    []CatalogItemResponse `json:"products"`
	Services    []CatalogItemResponse `json:"services"`
	GeneratedAt time.Time             `json:"generated_at"`
}
