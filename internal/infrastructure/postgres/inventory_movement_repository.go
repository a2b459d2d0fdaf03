package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

const movementColumns = `id, product_id, COALESCE(variant_id::text, ''), COALESCE(sale_id::text, ''),
	type, quantity, reason, stock_before, stock_after, created_by, created_at`

// Create persiste un movimiento de inventario.
func (r *InventoryMovementRepo) Create(ctx context.Context, movement *entity.InventoryMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO inventory_movements (id, product_id, variant_id, sale_id, type, quantity, reason, stock_before, stock_after, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.ProductID, nullable(movement.VariantID), nullable(movement.SaleID),
		movement.Type, movement.Quantity, movement.Reason, movement.StockBefore, movement.StockAfter,
		movement.CreatedBy, movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert inventory movement: %w", err)
	}
	return nil
}

// ListBySale movimientos de una venta en orden de registro.
func (r *InventoryMovementRepo) ListBySale(ctx context.Context, saleID string) ([]*entity.InventoryMovement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+movementColumns+`
		FROM inventory_movements WHERE sale_id = $1
		ORDER BY created_at, id`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list movements by sale: %w", err)
	}
	return scanMovements(rows)
}

// ListByProduct movimientos de un producto (todas sus tallas), más recientes primero.
func (r *InventoryMovementRepo) ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+movementColumns+`
		FROM inventory_movements
		WHERE product_id = $1
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY created_at DESC
		LIMIT NULLIF($4::int, 0) OFFSET $5`, productID, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movements by product: %w", err)
	}
	return scanMovements(rows)
}

func scanMovements(rows pgx.Rows) ([]*entity.InventoryMovement, error) {
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		if err := rows.Scan(
			&m.ID, &m.ProductID, &m.VariantID, &m.SaleID, &m.Type, &m.Quantity, &m.Reason,
			&m.StockBefore, &m.StockAfter, &m.CreatedBy, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan inventory movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
