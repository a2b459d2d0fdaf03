// Package sales contiene las reglas puras de una venta: carrito, descuento y comisión.
// No conoce persistencia; los protocolos de commit/reverso viven en la capa de aplicación.
package sales

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// RoundMoney redondea un monto a 2 decimales (mitad hacia arriba).
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
