package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee vendedor que puede recibir comisión por venta.
type Employee struct {
	ID                string
	Name              string
	CommissionPercent decimal.Decimal // 0..100
	Status            string          // active, inactive
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
