package repository

import (
	"context"
	"time"

	"github.com/jhoicas/ventas-pos/internal/domain/entity"
)

// InventoryMovementRepository define el puerto de persistencia para movimientos de inventario.
// El registro es append-only: no hay Update ni Delete.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	ListBySale(ctx context.Context, saleID string) ([]*entity.InventoryMovement, error)
	ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error)
}
