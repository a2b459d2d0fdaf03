package inventory

import (
	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
)

// EffectiveStock stock visible de un ítem: suma de tallas si las tiene, si no el contador plano.
// Los servicios no llevan inventario y devuelven 0.
func EffectiveStock(item entity.CatalogItem) int {
	if !item.IsProduct() {
		return 0
	}
	if len(item.Variants) == 0 {
		return item.StockQuantity
	}
	total := 0
	for _, v := range item.Variants {
		total += v.StockQuantity
	}
	return total
}

// Resolve determina el contador de stock que aplica a una selección (ítem + talla opcional).
//
// Retorna:
//   - tracked=false para servicios (sin límite de stock).
//   - domain.ErrVariantSelectionRequired si el producto tiene tallas y no se eligió ninguna.
//   - domain.ErrNotFound si la talla no pertenece al producto.
func Resolve(item entity.CatalogItem, variantID string) (key entity.StockKey, available int, tracked bool, err error) {
	if !item.IsProduct() {
		return entity.StockKey{}, 0, false, nil
	}
	key = entity.StockKey{ProductID: item.ID}
	if len(item.Variants) == 0 {
		if variantID != "" {
			return key, 0, true, domain.ErrNotFound
		}
		return key, item.StockQuantity, true, nil
	}
	if variantID == "" {
		return key, 0, true, domain.ErrVariantSelectionRequired
	}
	for _, v := range item.Variants {
		if v.ID == variantID {
			key.VariantID = v.ID
			return key, v.StockQuantity, true, nil
		}
	}
	return key, 0, true, domain.ErrNotFound
}

// IsLowStock marca stock bajo para el panel; threshold <= 0 desactiva la alerta.
func IsLowStock(stock, threshold int) bool {
	return threshold > 0 && stock <= threshold
}
