package entity

import "github.com/shopspring/decimal"

// Tipos de ítem vendible.
const (
	ItemKindProduct = "product"
	ItemKindService = "service"
)

// CatalogItem vista unificada de un producto o servicio para armar el carrito.
type CatalogItem struct {
	Kind          string // product | service
	ID            string
	Name          string
	UnitPrice     decimal.Decimal
	ImageRef      string
	StockQuantity int // contador plano del producto (sin tallas)
	Variants      []Variant
}

// IsProduct indica si el ítem lleva inventario.
func (i CatalogItem) IsProduct() bool { return i.Kind == ItemKindProduct }

// ProductItem construye el ítem de catálogo a partir de un producto.
func ProductItem(p *Product) CatalogItem {
	variants := make([]Variant, len(p.Variants))
	copy(variants, p.Variants)
	return CatalogItem{
		Kind:          ItemKindProduct,
		ID:            p.ID,
		Name:          p.Name,
		UnitPrice:     p.Price,
		ImageRef:      p.ImageRef,
		StockQuantity: p.StockQuantity,
		Variants:      variants,
	}
}

// ServiceItem construye el ítem de catálogo a partir de un servicio.
func ServiceItem(s *Service) CatalogItem {
	return CatalogItem{
		Kind:      ItemKindService,
		ID:        s.ID,
		Name:      s.Name,
		UnitPrice: s.Price,
		ImageRef:  s.ImageRef,
	}
}
