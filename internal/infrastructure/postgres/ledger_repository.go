package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo libro financiero sobre PostgreSQL (usable con pool o tx).
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Create registra un asiento. domain.ErrDuplicate si ya hay uno de esa categoría para la venta.
func (r *LedgerRepo) Create(ctx context.Context, e *entity.LedgerEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO ledger_entries (id, type, amount, category, description, date, sale_id, employee_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.Type, e.Amount, e.Category, e.Description, e.Date,
		nullable(e.SaleID), nullable(e.EmployeeID), e.CreatedBy, e.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

func (r *LedgerRepo) ExistsForSale(ctx context.Context, saleID, category string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM ledger_entries WHERE sale_id = $1 AND category = $2)`,
		saleID, category,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ledger exists: %w", err)
	}
	return exists, nil
}

func (r *LedgerRepo) List(ctx context.Context, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, type, amount, category, description, date,
		       COALESCE(sale_id::text, ''), COALESCE(employee_id::text, ''), created_by, created_at
		FROM ledger_entries
		WHERE ($1::date IS NULL OR date >= $1::date)
		  AND ($2::date IS NULL OR date <= $2::date)
		ORDER BY date DESC, created_at DESC
		LIMIT NULLIF($3::int, 0) OFFSET $4`, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		if err := rows.Scan(
			&e.ID, &e.Type, &e.Amount, &e.Category, &e.Description, &e.Date,
			&e.SaleID, &e.EmployeeID, &e.CreatedBy, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
