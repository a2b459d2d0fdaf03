package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

var (
	_ repository.InventoryMovementRepository = (*MovementRepo)(nil)
	_ repository.LedgerRepository            = (*LedgerRepo)(nil)
)

// MovementRepo registro append-only de movimientos.
type MovementRepo struct{ s *Store }

// Movements repositorio de movimientos.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

func (r *MovementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *m
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

func (r *MovementRepo) ListBySale(_ context.Context, saleID string) ([]*entity.InventoryMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.InventoryMovement
	for _, m := range r.s.movements {
		if m.SaleID == saleID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MovementRepo) ListByProduct(_ context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.InventoryMovement
	for _, m := range r.s.movements {
		if m.ProductID != productID {
			continue
		}
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset), nil
}

// All copia de todos los movimientos en orden de registro.
func (r *MovementRepo) All() []*entity.InventoryMovement {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.InventoryMovement, len(r.s.movements))
	for i, m := range r.s.movements {
		cp := *m
		out[i] = &cp
	}
	return out
}

// LedgerRepo libro financiero.
type LedgerRepo struct{ s *Store }

// Ledger repositorio del libro financiero.
func (s *Store) Ledger() *LedgerRepo { return &LedgerRepo{s: s} }

func (r *LedgerRepo) Create(_ context.Context, e *entity.LedgerEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	// Mismo índice único (sale_id, category) que los esquemas SQL.
	if e.SaleID != "" {
		for _, existing := range r.s.ledger {
			if existing.SaleID == e.SaleID && existing.Category == e.Category {
				return domain.ErrDuplicate
			}
		}
	}
	cp := *e
	r.s.ledger = append(r.s.ledger, &cp)
	return nil
}

func (r *LedgerRepo) ExistsForSale(_ context.Context, saleID, category string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.ledger {
		if e.SaleID == saleID && e.Category == category {
			return true, nil
		}
	}
	return false, nil
}

func (r *LedgerRepo) List(_ context.Context, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.LedgerEntry
	for _, e := range r.s.ledger {
		if from != nil && e.Date.Before(*from) {
			continue
		}
		if to != nil && e.Date.After(*to) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return paginate(out, limit, offset), nil
}
