package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerListRequest filtros de GET /api/ledger.
type LedgerListRequest struct {
	From string `query:"from"` // YYYY-MM-DD
	To   string `query:"to"`
	PageRequest
}

// LedgerEntryResponse asiento del libro financiero.
type LedgerEntryResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	SaleID      string          `json:"sale_id,omitempty"`
	EmployeeID  string          `json:"employee_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
