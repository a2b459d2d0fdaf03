package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas e ítems.
type SaleRepo struct {
	q sqlx.ExtContext
}

func NewSaleRepo(q sqlx.ExtContext) *SaleRepo { return &SaleRepo{q: q} }

func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = nowUTC()
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO sales(id, status, client_id, employee_id, payment_method, discount_type, discount_value,
			subtotal, discount, total_amount, commission_amount, idempotency_key, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Status, s.ClientID, s.EmployeeID, s.PaymentMethod, s.DiscountType, s.DiscountValue,
		s.Subtotal, s.Discount, s.TotalAmount, s.CommissionAmount, s.IdempotencyKey, s.CreatedBy, ts(s.CreatedAt))
	return mapWriteErr("insert sale", err)
}

func (r *SaleRepo) CreateItem(ctx context.Context, it *entity.SaleItem) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO sale_items(id, sale_id, product_id, service_id, variant_id, name, quantity, unit_price, subtotal)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.SaleID, it.ProductID, it.ServiceID, it.VariantID, it.Name, it.Quantity, it.UnitPrice, it.Subtotal)
	return mapWriteErr("insert sale item", err)
}

func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	var row saleRow
	if err := sqlx.GetContext(ctx, r.q, &row, `SELECT * FROM sales WHERE id = ?`, id); err != nil {
		return nil, mapReadErr("get sale", err)
	}
	return row.entity(), nil
}

func (r *SaleRepo) GetByIdempotencyKey(ctx context.Context, key string) (*entity.Sale, error) {
	if key == "" {
		return nil, domain.ErrNotFound
	}
	var row saleRow
	if err := sqlx.GetContext(ctx, r.q, &row, `SELECT * FROM sales WHERE idempotency_key = ?`, key); err != nil {
		return nil, mapReadErr("get sale by key", err)
	}
	return row.entity(), nil
}

func (r *SaleRepo) ListItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error) {
	var rows []saleItemRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, `SELECT * FROM sale_items WHERE sale_id = ? ORDER BY id`, saleID); err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	out := make([]*entity.SaleItem, len(rows))
	for i, row := range rows {
		out[i] = row.entity()
	}
	return out, nil
}

func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.From != nil {
		where = append(where, "created_at >= ?")
		args = append(args, tsPtr(f.From))
	}
	if f.To != nil {
		where = append(where, "created_at <= ?")
		args = append(args, tsPtr(f.To))
	}
	query := `SELECT * FROM sales`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limitArg(f.Limit), f.Offset)

	var rows []saleRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	out := make([]*entity.Sale, len(rows))
	for i, row := range rows {
		out[i] = row.entity()
	}
	return out, nil
}

// Delete elimina la venta; sale_items cae en cascada.
func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM sales WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
