package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas e ítems. inTx marca el repositorio entregado dentro de RunSales.
type SaleRepo struct {
	s    *Store
	inTx bool
}

// Sales repositorio de ventas.
func (s *Store) Sales() *SaleRepo { return &SaleRepo{s: s} }

func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	if sale.ID == "" {
		sale.ID = uuid.New().String()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sales[sale.ID]; ok {
		return domain.ErrDuplicate
	}
	if sale.IdempotencyKey != "" {
		for _, existing := range r.s.sales {
			if existing.IdempotencyKey == sale.IdempotencyKey {
				return domain.ErrDuplicate
			}
		}
	}
	cp := *sale
	r.s.sales[sale.ID] = &cp
	return nil
}

func (r *SaleRepo) CreateItem(_ context.Context, item *entity.SaleItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if (item.ProductID == "") == (item.ServiceID == "") {
		return domain.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sales[item.SaleID]; !ok {
		return domain.ErrNotFound
	}
	cp := *item
	r.s.items[item.SaleID] = append(r.s.items[item.SaleID], &cp)
	return nil
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sale, ok := r.s.sales[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *sale
	return &cp, nil
}

// GetByIdempotencyKey fuera de una unidad de trabajo espera a que la unidad en curso
// confirme o revierta, para no devolver una venta que luego desaparece.
func (r *SaleRepo) GetByIdempotencyKey(_ context.Context, key string) (*entity.Sale, error) {
	if !r.inTx {
		r.s.txMu.Lock()
		defer r.s.txMu.Unlock()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if key == "" {
		return nil, domain.ErrNotFound
	}
	for _, sale := range r.s.sales {
		if sale.IdempotencyKey == key {
			cp := *sale
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *SaleRepo) ListItems(_ context.Context, saleID string) ([]*entity.SaleItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return cloneItems(r.s.items[saleID]), nil
}

func (r *SaleRepo) List(_ context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Sale, 0)
	for _, sale := range r.s.sales {
		if f.Status != "" && sale.Status != f.Status {
			continue
		}
		if f.From != nil && sale.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && sale.CreatedAt.After(*f.To) {
			continue
		}
		cp := *sale
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, f.Limit, f.Offset), nil
}

func (r *SaleRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sales[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.sales, id)
	delete(r.s.items, id)
	return nil
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(list) {
			return list[:0]
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
