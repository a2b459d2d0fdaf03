package entity

import "time"

// Customer cliente asociado opcionalmente a una venta.
type Customer struct {
	ID        string
	Name      string
	TaxID     string // NIT o Cédula
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
