package sales

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
)

// Discount regla de descuento del carrito. El valor cero (Type vacío) significa sin descuento.
type Discount struct {
	Type  string          // FIXED | PERCENTAGE
	Value decimal.Decimal // monto o porcentaje según Type
}

// NoDiscount descuento nulo.
var NoDiscount = Discount{}

// Validate verifica tipo conocido y valor no negativo.
func (d Discount) Validate() error {
	if d.Value.IsNegative() {
		return domain.ErrInvalidInput
	}
	switch d.Type {
	case entity.DiscountTypeFixed, entity.DiscountTypePercentage:
		return nil
	case "":
		if !d.Value.IsZero() {
			return domain.ErrInvalidInput
		}
		return nil
	default:
		return domain.ErrInvalidInput
	}
}

// Applied devuelve el descuento en dinero, acotado a [0, subtotal].
func (d Discount) Applied(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	var amount decimal.Decimal
	switch d.Type {
	case entity.DiscountTypeFixed:
		amount = d.Value
	case entity.DiscountTypePercentage:
		amount = subtotal.Mul(d.Value).Div(hundred)
	default:
		return decimal.Zero
	}
	amount = RoundMoney(amount)
	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(subtotal) {
		return subtotal
	}
	return amount
}
