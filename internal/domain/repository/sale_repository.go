package repository

import (
	"context"
	"time"

	"github.com/jhoicas/ventas-pos/internal/domain/entity"
)

// SaleFilter criterios de listado de ventas.
type SaleFilter struct {
	Status string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// SaleRepository define el puerto de persistencia para Sale y SaleItem.
// Una venta nunca se actualiza parcialmente: se crea completa o se elimina (con sus ítems).
type SaleRepository interface {
	// Create persiste la cabecera. domain.ErrDuplicate si la clave de idempotencia ya existe.
	Create(ctx context.Context, sale *entity.Sale) error
	CreateItem(ctx context.Context, item *entity.SaleItem) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetByIdempotencyKey devuelve domain.ErrNotFound si no hay venta con esa clave.
	GetByIdempotencyKey(ctx context.Context, key string) (*entity.Sale, error)
	ListItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error)
	List(ctx context.Context, filter SaleFilter) ([]*entity.Sale, error)
	// Delete elimina la venta y sus ítems en cascada.
	Delete(ctx context.Context, id string) error
}
