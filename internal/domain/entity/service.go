package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service servicio vendible (sin inventario).
type Service struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	ImageRef    string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
