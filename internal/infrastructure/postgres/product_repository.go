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

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, sku, name, description, price, image_ref, stock_quantity, active, created_at, updated_at`

// Create persiste el producto y sus tallas en una sola sentencia.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	stamp(&product.CreatedAt, &product.UpdatedAt)
	ids := make([]string, len(product.Variants))
	sizes := make([]string, len(product.Variants))
	stocks := make([]int32, len(product.Variants))
	for i, v := range product.Variants {
		ids[i], sizes[i], stocks[i] = v.ID, v.Size, int32(v.StockQuantity)
	}
	query := `
		WITH p AS (
			INSERT INTO products (id, sku, name, description, price, image_ref, stock_quantity, active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id
		)
		INSERT INTO product_variants (id, product_id, size, stock_quantity)
		SELECT v.id, p.id, v.size, v.qty
		FROM p, unnest($11::uuid[], $12::text[], $13::int[]) AS v(id, size, qty)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.SKU, product.Name, product.Description, product.Price, product.ImageRef,
		product.StockQuantity, product.Active, product.CreatedAt, product.UpdatedAt,
		ids, sizes, stocks,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto con sus tallas.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id).Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.Price, &p.ImageRef, &p.StockQuantity, &p.Active,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	variants, err := r.variants(ctx, []string{p.ID})
	if err != nil {
		return nil, err
	}
	p.Variants = variants[p.ID]
	return &p, nil
}

// ListActive productos activos ordenados por nombre, con sus tallas.
func (r *ProductRepo) ListActive(ctx context.Context) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products WHERE active ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var (
		list []*entity.Product
		ids  []string
	)
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(
			&p.ID, &p.SKU, &p.Name, &p.Description, &p.Price, &p.ImageRef, &p.StockQuantity, &p.Active,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return list, nil
	}
	variants, err := r.variants(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		p.Variants = variants[p.ID]
	}
	return list, nil
}

func (r *ProductRepo) variants(ctx context.Context, productIDs []string) (map[string][]entity.Variant, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, size, stock_quantity
		FROM product_variants WHERE product_id = ANY($1::uuid[])
		ORDER BY product_id, size`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]entity.Variant)
	for rows.Next() {
		var v entity.Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Size, &v.StockQuantity); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		out[v.ProductID] = append(out[v.ProductID], v)
	}
	return out, rows.Err()
}
