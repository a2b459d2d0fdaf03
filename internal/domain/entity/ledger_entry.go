package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de asiento del libro financiero.
const (
	LedgerTypeIncome  = "INCOME"
	LedgerTypeExpense = "EXPENSE"
)

// LedgerEntry asiento del libro financiero (solo se agregan, nunca se editan).
type LedgerEntry struct {
	ID          string
	Type        string
	Amount      decimal.Decimal
	Category    string
	Description string
	Date        time.Time // día contable
	SaleID      string    // venta que originó el asiento (opcional)
	EmployeeID  string
	CreatedBy   string
	CreatedAt   time.Time
}
