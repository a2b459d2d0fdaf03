package repository

import (
	"context"

	"github.com/jhoicas/ventas-pos/internal/domain/entity"
)

// StockRepository define el puerto para leer y mover contadores de stock (talla o producto).
// Usado dentro de la unidad de trabajo de venta para garantizar consistencia.
type StockRepository interface {
	// Get lee el contador en vivo. domain.ErrNotFound si el producto/talla no existe.
	Get(ctx context.Context, key entity.StockKey) (int, error)
	// GetForUpdate lee el contador bloqueando la fila hasta el fin de la transacción
	// (SELECT FOR UPDATE donde el motor lo soporta).
	GetForUpdate(ctx context.Context, key entity.StockKey) (int, error)
	// Decrement resta qty solo si el contador alcanza; devuelve el nuevo valor
	// o domain.ErrInsufficientStock sin modificar nada.
	Decrement(ctx context.Context, key entity.StockKey, qty int) (int, error)
	// Increment suma qty y devuelve el nuevo valor.
	Increment(ctx context.Context, key entity.StockKey, qty int) (int, error)
}
