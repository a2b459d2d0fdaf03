package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	appsales "github.com/jhoicas/ventas-pos/internal/application/sales"
)

var _ appsales.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunSales inicia una transacción READ COMMITTED, ejecuta fn con los repos de venta atados a
// la tx y hace Commit o Rollback. El bloqueo de filas lo dan los SELECT ... FOR UPDATE de stock.
func (r *TxRunner) RunSales(ctx context.Context, fn func(ctx context.Context, repos appsales.TxRepos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := appsales.TxRepos{
		Sales:     NewSaleRepository(tx),
		Stock:     NewStockRepository(tx),
		Movements: NewInventoryMovementRepository(tx),
		Ledger:    NewLedgerRepository(tx),
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
