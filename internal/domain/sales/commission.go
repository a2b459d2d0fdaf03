package sales

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pos/internal/domain/entity"
)

// Commission = total * percent / 100, redondeado a 2 decimales. Cero si percent o total no son positivos.
func Commission(percent, total decimal.Decimal) decimal.Decimal {
	if !percent.IsPositive() || !total.IsPositive() {
		return decimal.Zero
	}
	return RoundMoney(total.Mul(percent).Div(hundred))
}

// CommissionFor calcula la comisión del vendedor; sin vendedor no hay comisión.
func CommissionFor(seller *entity.Employee, total decimal.Decimal) decimal.Decimal {
	if seller == nil {
		return decimal.Zero
	}
	return Commission(seller.CommissionPercent, total)
}
