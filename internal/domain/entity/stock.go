package entity

// StockKey identifica el contador de stock afectado: la talla si VariantID no está vacío,
// si no el contador plano del producto.
type StockKey struct {
	ProductID string
	VariantID string
}

// IsVariant indica si el contador es de talla.
func (k StockKey) IsVariant() bool { return k.VariantID != "" }
