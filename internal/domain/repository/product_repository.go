package repository

import (
	"context"

	"github.com/jhoicas/ventas-pos/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product y sus tallas (DIP).
// GetByID devuelve domain.ErrNotFound si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	ListActive(ctx context.Context) ([]*entity.Product, error)
}
