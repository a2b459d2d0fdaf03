package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto vendible del catálogo.
// Si tiene tallas (Variants) el stock vive en cada talla; si no, en StockQuantity.
type Product struct {
	ID            string
	SKU           string
	Name          string
	Description   string
	Price         decimal.Decimal // precio de venta
	ImageRef      string
	StockQuantity int // solo aplica cuando no hay tallas
	Active        bool
	Variants      []Variant
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Variant talla de un producto con su propio contador de stock.
type Variant struct {
	ID            string
	ProductID     string
	Size          string
	StockQuantity int
}

// HasVariants indica si el producto se vende por talla.
func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// Variant busca una talla por ID.
func (p *Product) Variant(id string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}
