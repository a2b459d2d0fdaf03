package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo contadores de producto y de talla. q es la base o la transacción en curso.
type StockRepo struct {
	q sqlx.ExtContext
}

func NewStockRepo(q sqlx.ExtContext) *StockRepo { return &StockRepo{q: q} }

func (r *StockRepo) Get(ctx context.Context, key entity.StockKey) (int, error) {
	query := `SELECT stock_quantity FROM products WHERE id = ?`
	args := []any{key.ProductID}
	if key.IsVariant() {
		query = `SELECT stock_quantity FROM product_variants WHERE id = ? AND product_id = ?`
		args = []any{key.VariantID, key.ProductID}
	}
	var qty int
	if err := sqlx.GetContext(ctx, r.q, &qty, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("get stock: %w", err)
	}
	return qty, nil
}

// GetForUpdate igual que Get: con una sola conexión la transacción ya es exclusiva.
func (r *StockRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (int, error) {
	return r.Get(ctx, key)
}

func (r *StockRepo) Decrement(ctx context.Context, key entity.StockKey, qty int) (int, error) {
	query := `UPDATE products SET stock_quantity = stock_quantity - ?, updated_at = ? WHERE id = ? AND stock_quantity >= ?`
	args := []any{qty, ts(nowUTC()), key.ProductID, qty}
	if key.IsVariant() {
		query = `UPDATE product_variants SET stock_quantity = stock_quantity - ? WHERE id = ? AND product_id = ? AND stock_quantity >= ?`
		args = []any{qty, key.VariantID, key.ProductID, qty}
	}
	n, err := r.exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("decrement stock: %w", err)
	}
	current, err := r.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return current, domain.ErrInsufficientStock
	}
	return current, nil
}

func (r *StockRepo) Increment(ctx context.Context, key entity.StockKey, qty int) (int, error) {
	query := `UPDATE products SET stock_quantity = stock_quantity + ?, updated_at = ? WHERE id = ?`
	args := []any{qty, ts(nowUTC()), key.ProductID}
	if key.IsVariant() {
		query = `UPDATE product_variants SET stock_quantity = stock_quantity + ? WHERE id = ? AND product_id = ?`
		args = []any{qty, key.VariantID, key.ProductID}
	}
	n, err := r.exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("increment stock: %w", err)
	}
	if n == 0 {
		return 0, domain.ErrNotFound
	}
	return r.Get(ctx, key)
}

func (r *StockRepo) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
