package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

var (
	_ repository.InventoryMovementRepository = (*MovementRepo)(nil)
	_ repository.LedgerRepository            = (*LedgerRepo)(nil)
)

// MovementRepo auditoría de stock; solo inserta.
type MovementRepo struct {
	q sqlx.ExtContext
}

func NewMovementRepo(q sqlx.ExtContext) *MovementRepo { return &MovementRepo{q: q} }

func (r *MovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = nowUTC()
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO inventory_movements(id, product_id, variant_id, sale_id, type, quantity, reason,
			stock_before, stock_after, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ProductID, m.VariantID, m.SaleID, m.Type, m.Quantity, m.Reason,
		m.StockBefore, m.StockAfter, m.CreatedBy, ts(m.CreatedAt))
	return mapWriteErr("insert movement", err)
}

func (r *MovementRepo) ListBySale(ctx context.Context, saleID string) ([]*entity.InventoryMovement, error) {
	return r.list(ctx, `SELECT * FROM inventory_movements WHERE sale_id = ? ORDER BY created_at, id`, saleID)
}

func (r *MovementRepo) ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	where, args := dateRange("created_at", from, to)
	query := `SELECT * FROM inventory_movements WHERE product_id = ?` + where +
		` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append([]any{productID}, args...)
	args = append(args, limitArg(limit), offset)
	return r.list(ctx, query, args...)
}

func (r *MovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.InventoryMovement, error) {
	var rows []movementRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	out := make([]*entity.InventoryMovement, len(rows))
	for i, row := range rows {
		out[i] = row.entity()
	}
	return out, nil
}

// LedgerRepo libro financiero; solo inserta.
type LedgerRepo struct {
	q sqlx.ExtContext
}

func NewLedgerRepo(q sqlx.ExtContext) *LedgerRepo { return &LedgerRepo{q: q} }

func (r *LedgerRepo) Create(ctx context.Context, e *entity.LedgerEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = nowUTC()
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO ledger_entries(id, type, amount, category, description, date, sale_id, employee_id, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Type, e.Amount, e.Category, e.Description, ts(e.Date), e.SaleID, e.EmployeeID, e.CreatedBy, ts(e.CreatedAt))
	return mapWriteErr("insert ledger entry", err)
}

func (r *LedgerRepo) ExistsForSale(ctx context.Context, saleID, category string) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, r.q, &n,
		`SELECT COUNT(1) FROM ledger_entries WHERE sale_id = ? AND category = ?`, saleID, category)
	if err != nil {
		return false, fmt.Errorf("ledger exists: %w", err)
	}
	return n > 0, nil
}

func (r *LedgerRepo) List(ctx context.Context, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	where, args := dateRange("date", from, to)
	query := `SELECT * FROM ledger_entries WHERE 1 = 1` + where + ` ORDER BY date DESC, created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limitArg(limit), offset)
	var rows []ledgerRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	out := make([]*entity.LedgerEntry, len(rows))
	for i, row := range rows {
		out[i] = row.entity()
	}
	return out, nil
}

func dateRange(column string, from, to *time.Time) (string, []any) {
	var (
		sb   strings.Builder
		args []any
	)
	if from != nil {
		sb.WriteString(" AND " + column + " >= ?")
		args = append(args, tsPtr(from))
	}
	if to != nil {
		sb.WriteString(" AND " + column + " <= ?")
		args = append(args, tsPtr(to))
	}
	return sb.String(), args
}

// limitArg 0 significa sin límite; en SQLite eso es LIMIT -1.
func limitArg(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
