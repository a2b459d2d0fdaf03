package repository

import (
	"context"
	"time"

	"github.com/jhoicas/ventas-pos/internal/domain/entity"
)

// LedgerRepository puerto del libro financiero (append-only).
type LedgerRepository interface {
	Create(ctx context.Context, entry *entity.LedgerEntry) error
	// ExistsForSale indica si ya hay un asiento de esa categoría para la venta.
	ExistsForSale(ctx context.Context, saleID, category string) (bool, error)
	List(ctx context.Context, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error)
}
