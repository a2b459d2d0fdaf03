package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	appsales "github.com/jhoicas/ventas-pos/internal/application/sales"
)

var _ appsales.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta los protocolos de venta en una transacción SQLite.
type TxRunner struct {
	db *sqlx.DB
}

func NewTxRunner(db *sqlx.DB) *TxRunner { return &TxRunner{db: db} }

func (r *TxRunner) RunSales(ctx context.Context, fn func(ctx context.Context, repos appsales.TxRepos) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	repos := appsales.TxRepos{
		Sales:     NewSaleRepo(tx),
		Stock:     NewStockRepo(tx),
		Movements: NewMovementRepo(tx),
		Ledger:    NewLedgerRepo(tx),
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
