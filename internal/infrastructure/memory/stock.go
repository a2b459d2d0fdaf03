package memory

import (
	"context"

	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo contadores de stock de productos y tallas.
type StockRepo struct{ s *Store }

// Stock repositorio de contadores.
func (s *Store) Stock() *StockRepo { return &StockRepo{s: s} }

// counter devuelve un puntero al contador; llamar con s.mu tomado.
func (r *StockRepo) counter(key entity.StockKey) (*int, error) {
	p, ok := r.s.products[key.ProductID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !key.IsVariant() {
		return &p.StockQuantity, nil
	}
	for i := range p.Variants {
		if p.Variants[i].ID == key.VariantID {
			return &p.Variants[i].StockQuantity, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *StockRepo) Get(_ context.Context, key entity.StockKey) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, err := r.counter(key)
	if err != nil {
		return 0, err
	}
	return *c, nil
}

// GetForUpdate equivale a Get: RunSales ya serializa las unidades de trabajo.
func (r *StockRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (int, error) {
	return r.Get(ctx, key)
}

func (r *StockRepo) Decrement(_ context.Context, key entity.StockKey, qty int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, err := r.counter(key)
	if err != nil {
		return 0, err
	}
	if *c < qty {
		return *c, domain.ErrInsufficientStock
	}
	*c -= qty
	return *c, nil
}

func (r *StockRepo) Increment(_ context.Context, key entity.StockKey, qty int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, err := r.counter(key)
	if err != nil {
		return 0, err
	}
	*c += qty
	return *c, nil
}
