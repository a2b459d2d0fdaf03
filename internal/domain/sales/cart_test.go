package sales_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/sales"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixtures
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func capItem() entity.CatalogItem {
	return entity.CatalogItem{
		Kind:          entity.ItemKindProduct,
		ID:            "cap",
		Name:          "Gorra",
		UnitPrice:     dec("10.00"),
		StockQuantity: 5,
	}
}

func shirt() entity.CatalogItem {
	return entity.CatalogItem{
		Kind:      entity.ItemKindProduct,
		ID:        "shirt",
		Name:      "Camiseta",
		UnitPrice: dec("25.50"),
		Variants: []entity.Variant{
			{ID: "shirt-s", ProductID: "shirt", Size: "S", StockQuantity: 1},
			{ID: "shirt-m", ProductID: "shirt", Size: "M", StockQuantity: 0},
		},
	}
}

func haircut() entity.CatalogItem {
	return entity.CatalogItem{Kind: entity.ItemKindService, ID: "haircut", Name: "Corte", UnitPrice: dec("15.00")}
}

// ──────────────────────────────────────────────────────────────────────────────
// AddLine
// ──────────────────────────────────────────────────────────────────────────────

func TestAddLine_MismaSeleccionIncrementaCantidad(t *testing.T) {
	cart := sales.NewCart()
	first, err := cart.AddLine(capItem(), "")
	require.NoError(t, err)
	second, err := cart.AddLine(capItem(), "")
	require.NoError(t, err)

	assert.Equal(t, first.LineID, second.LineID, "la misma combinación no crea una línea nueva")
	assert.Equal(t, 2, second.Quantity)
	assert.Len(t, cart.Lines(), 1)
}

func TestAddLine_ProductoConTallasSinSeleccion(t *testing.T) {
	cart := sales.NewCart()
	_, err := cart.AddLine(shirt(), "")
	assert.ErrorIs(t, err, domain.ErrVariantSelectionRequired)
	assert.True(t, cart.IsEmpty())
}

func TestAddLine_TallaAgotada(t *testing.T) {
	cart := sales.NewCart()
	_, err := cart.AddLine(shirt(), "shirt-m")
	assert.ErrorIs(t, err, domain.ErrOutOfStock)

	var stockErr *domain.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "shirt-m", stockErr.VariantID)
}

func TestAddLine_SuperaStockDeTalla(t *testing.T) {
	cart := sales.NewCart()
	_, err := cart.AddLine(shirt(), "shirt-s")
	require.NoError(t, err)

	_, err = cart.AddLine(shirt(), "shirt-s")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 1, cart.Lines()[0].Quantity, "la cantidad no cambia tras el error")
}

func TestAddLine_ServicioSinLimiteDeStock(t *testing.T) {
	cart := sales.NewCart()
	for i := 0; i < 10; i++ {
		_, err := cart.AddLine(haircut(), "")
		require.NoError(t, err)
	}
	assert.Equal(t, 10, cart.Lines()[0].Quantity)
}

func TestAddLine_PrecioCapturadoNoCambia(t *testing.T) {
	cart := sales.NewCart()
	item := capItem()
	_, err := cart.AddLine(item, "")
	require.NoError(t, err)

	item.UnitPrice = dec("99.00")
	_, err = cart.AddLine(item, "")
	require.NoError(t, err)

	lines := cart.Lines()
	require.Len(t, lines, 2, "otro precio de catálogo abre una línea nueva")
	assert.True(t, lines[0].UnitPrice.Equal(dec("10.00")))
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Equal(t, "109.00", cart.Subtotal().StringFixed(2))
}

func TestAddLine_StockSumaTodasLasLineasDelContador(t *testing.T) {
	cart := sales.NewCart()
	_, err := cart.AppendLine(sales.CartLine{ItemID: "shirt", Kind: entity.ItemKindProduct, VariantID: "shirt-s", Quantity: 1, UnitPrice: dec("20.00")})
	require.NoError(t, err)

	_, err = cart.AddLine(shirt(), "shirt-s")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Len(t, cart.Lines(), 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// UpdateQuantity / RemoveLine
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateQuantity_NoBajaDeUno(t *testing.T) {
	cart := sales.NewCart()
	line, err := cart.AddLine(capItem(), "")
	require.NoError(t, err)

	updated, err := cart.UpdateQuantity(line.LineID, -5)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Quantity)

	updated, err = cart.UpdateQuantity(line.LineID, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)
}

func TestUpdateQuantity_LineaInexistente(t *testing.T) {
	_, err := sales.NewCart().UpdateQuantity("nope", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemoveLine(t *testing.T) {
	cart := sales.NewCart()
	line, _ := cart.AddLine(capItem(), "")
	_, _ = cart.AddLine(haircut(), "")

	require.NoError(t, cart.RemoveLine(line.LineID))
	assert.Len(t, cart.Lines(), 1)
	assert.Equal(t, "haircut", cart.Lines()[0].ItemID)
	assert.ErrorIs(t, cart.RemoveLine(line.LineID), domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Totales
// ──────────────────────────────────────────────────────────────────────────────

func TestTotales_EscenarioDescuentoPorcentual(t *testing.T) {
	cart := sales.NewCart()
	_, err := cart.AppendLine(sales.CartLine{ItemID: "cap", Kind: entity.ItemKindProduct, Quantity: 3, UnitPrice: dec("10.00")})
	require.NoError(t, err)
	require.NoError(t, cart.SetDiscount(sales.Discount{Type: entity.DiscountTypePercentage, Value: dec("10")}))

	assert.True(t, cart.Subtotal().Equal(dec("30.00")))
	assert.True(t, cart.AppliedDiscount().Equal(dec("3.00")))
	assert.True(t, cart.Total().Equal(dec("27.00")))
}

func TestTotales_DescuentoFijoMayorQueSubtotal(t *testing.T) {
	cart := sales.NewCart()
	_, _ = cart.AddLine(capItem(), "")
	require.NoError(t, cart.SetDiscount(sales.Discount{Type: entity.DiscountTypeFixed, Value: dec("50")}))

	summary := cart.Summary()
	assert.True(t, summary.Discount.Equal(dec("10.00")), "el descuento se acota al subtotal")
	assert.True(t, summary.Total.IsZero())
}

func TestTotales_CarritoVacio(t *testing.T) {
	cart := sales.NewCart()
	require.NoError(t, cart.SetDiscount(sales.Discount{Type: entity.DiscountTypeFixed, Value: dec("5")}))
	assert.True(t, cart.Total().IsZero())
	assert.True(t, cart.AppliedDiscount().IsZero())
}

func TestSetDiscount_Invalido(t *testing.T) {
	cart := sales.NewCart()
	assert.ErrorIs(t, cart.SetDiscount(sales.Discount{Type: "BOGO", Value: dec("1")}), domain.ErrInvalidInput)
	assert.ErrorIs(t, cart.SetDiscount(sales.Discount{Type: entity.DiscountTypeFixed, Value: dec("-1")}), domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// AppendLine / Clone
// ──────────────────────────────────────────────────────────────────────────────

func TestAppendLine_Validaciones(t *testing.T) {
	cart := sales.NewCart()
	_, err := cart.AppendLine(sales.CartLine{ItemID: "cap", Kind: entity.ItemKindProduct, Quantity: 0, UnitPrice: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = cart.AppendLine(sales.CartLine{ItemID: "haircut", Kind: entity.ItemKindService, VariantID: "x", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = cart.AppendLine(sales.CartLine{ItemID: "x", Kind: "gift", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAppendLine_MismoPrecioSeFusiona(t *testing.T) {
	cart := sales.NewCart()
	first, err := cart.AppendLine(sales.CartLine{ItemID: "cap", Kind: entity.ItemKindProduct, Quantity: 1, UnitPrice: dec("10.00")})
	require.NoError(t, err)
	merged, err := cart.AppendLine(sales.CartLine{ItemID: "cap", Kind: entity.ItemKindProduct, Quantity: 2, UnitPrice: dec("10.001")})
	require.NoError(t, err)

	assert.Equal(t, first.LineID, merged.LineID)
	assert.Equal(t, 3, merged.Quantity)
	require.Len(t, cart.Lines(), 1)
	assert.Equal(t, "30.00", cart.Subtotal().StringFixed(2))
}

func TestAppendLine_OtroPrecioQuedaEnLineaAparte(t *testing.T) {
	cart := sales.NewCart()
	_, err := cart.AppendLine(sales.CartLine{ItemID: "cap", Kind: entity.ItemKindProduct, Quantity: 1, UnitPrice: dec("10.00")})
	require.NoError(t, err)
	_, err = cart.AppendLine(sales.CartLine{ItemID: "cap", Kind: entity.ItemKindProduct, Quantity: 1, UnitPrice: dec("0.00")})
	require.NoError(t, err)

	lines := cart.Lines()
	require.Len(t, lines, 2)
	assert.True(t, lines[0].UnitPrice.Equal(dec("10.00")))
	assert.True(t, lines[1].UnitPrice.IsZero())
	assert.Equal(t, "10.00", cart.Subtotal().StringFixed(2))
}

func TestClone_Independiente(t *testing.T) {
	cart := sales.NewCart()
	line, _ := cart.AddLine(capItem(), "")
	clone := cart.Clone()

	_, err := clone.UpdateQuantity(line.LineID, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Lines()[0].Quantity)
	assert.Equal(t, 3, clone.Lines()[0].Quantity)
}
