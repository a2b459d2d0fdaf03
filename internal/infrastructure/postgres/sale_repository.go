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

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas e ítems sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, status, COALESCE(client_id::text, ''), COALESCE(employee_id::text, ''), payment_method,
	discount_type, discount_value, subtotal, discount, total_amount, commission_amount,
	COALESCE(idempotency_key, ''), created_by, created_at`

// Create persiste la cabecera. domain.ErrDuplicate si la clave de idempotencia ya existe.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sales (id, status, client_id, employee_id, payment_method, discount_type, discount_value,
			subtotal, discount, total_amount, commission_amount, idempotency_key, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.Status, nullable(s.ClientID), nullable(s.EmployeeID), s.PaymentMethod, s.DiscountType, s.DiscountValue,
		s.Subtotal, s.Discount, s.TotalAmount, s.CommissionAmount, nullable(s.IdempotencyKey), s.CreatedBy, s.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

func (r *SaleRepo) CreateItem(ctx context.Context, it *entity.SaleItem) error {
	query := `
		INSERT INTO sale_items (id, sale_id, product_id, service_id, variant_id, name, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.SaleID, nullable(it.ProductID), nullable(it.ServiceID), nullable(it.VariantID),
		it.Name, it.Quantity, it.UnitPrice, it.Subtotal,
	)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert sale item: %w", err)
	}
	return nil
}

func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.scanOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

func (r *SaleRepo) GetByIdempotencyKey(ctx context.Context, key string) (*entity.Sale, error) {
	if key == "" {
		return nil, domain.ErrNotFound
	}
	return r.scanOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE idempotency_key = $1`, key)
}

func (r *SaleRepo) scanOne(ctx context.Context, query, arg string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return s, nil
}

func (r *SaleRepo) ListItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, COALESCE(product_id::text, ''), COALESCE(service_id::text, ''), COALESCE(variant_id::text, ''),
		       name, quantity, unit_price, subtotal
		FROM sale_items WHERE sale_id = $1
		ORDER BY id`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	var list []*entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(
			&it.ID, &it.SaleID, &it.ProductID, &it.ServiceID, &it.VariantID,
			&it.Name, &it.Quantity, &it.UnitPrice, &it.Subtotal,
		); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE ($1 = '' OR status = $1)
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY created_at DESC
		LIMIT NULLIF($4::int, 0) OFFSET $5`, f.Status, f.From, f.To, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Delete elimina la venta; sale_items cae por ON DELETE CASCADE.
func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(
		&s.ID, &s.Status, &s.ClientID, &s.EmployeeID, &s.PaymentMethod,
		&s.DiscountType, &s.DiscountValue, &s.Subtotal, &s.Discount, &s.TotalAmount, &s.CommissionAmount,
		&s.IdempotencyKey, &s.CreatedBy, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
