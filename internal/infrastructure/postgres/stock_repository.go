package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo contadores de stock de productos (sin tallas) y de tallas (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get lee el contador en vivo.
func (r *StockRepo) Get(ctx context.Context, key entity.StockKey) (int, error) {
	return r.read(ctx, key, "")
}

// GetForUpdate lee el contador y bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (int, error) {
	return r.read(ctx, key, " FOR UPDATE")
}

func (r *StockRepo) read(ctx context.Context, key entity.StockKey, suffix string) (int, error) {
	query := `SELECT stock_quantity FROM products WHERE id = $1` + suffix
	args := []any{key.ProductID}
	if key.IsVariant() {
		query = `SELECT stock_quantity FROM product_variants WHERE id = $1 AND product_id = $2` + suffix
		args = []any{key.VariantID, key.ProductID}
	}
	var qty int
	if err := r.q.QueryRow(ctx, query, args...).Scan(&qty); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("get stock: %w", err)
	}
	return qty, nil
}

// Decrement resta qty solo si alcanza (UPDATE condicional); si no, ErrInsufficientStock sin cambios.
func (r *StockRepo) Decrement(ctx context.Context, key entity.StockKey, qty int) (int, error) {
	query := `
		UPDATE products SET stock_quantity = stock_quantity - $2, updated_at = now()
		WHERE id = $1 AND stock_quantity >= $2
		RETURNING stock_quantity`
	args := []any{key.ProductID, qty}
	if key.IsVariant() {
		query = `
			UPDATE product_variants SET stock_quantity = stock_quantity - $3
			WHERE id = $1 AND product_id = $2 AND stock_quantity >= $3
			RETURNING stock_quantity`
		args = []any{key.VariantID, key.ProductID, qty}
	}
	var after int
	err := r.q.QueryRow(ctx, query, args...).Scan(&after)
	if errors.Is(err, pgx.ErrNoRows) {
		// O no existe o no alcanza: distinguir con una lectura.
		current, gerr := r.Get(ctx, key)
		if gerr != nil {
			return 0, gerr
		}
		return current, domain.ErrInsufficientStock
	}
	if err != nil {
		return 0, fmt.Errorf("decrement stock: %w", err)
	}
	return after, nil
}

// Increment suma qty y devuelve el nuevo valor.
func (r *StockRepo) Increment(ctx context.Context, key entity.StockKey, qty int) (int, error) {
	query := `
		UPDATE products SET stock_quantity = stock_quantity + $2, updated_at = now()
		WHERE id = $1
		RETURNING stock_quantity`
	args := []any{key.ProductID, qty}
	if key.IsVariant() {
		query = `
			UPDATE product_variants SET stock_quantity = stock_quantity + $3
			WHERE id = $1 AND product_id = $2
			RETURNING stock_quantity`
		args = []any{key.VariantID, key.ProductID, qty}
	}
	var after int
	if err := r.q.QueryRow(ctx, query, args...).Scan(&after); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("increment stock: %w", err)
	}
	return after, nil
}
