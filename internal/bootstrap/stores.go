// Package bootstrap arma los repositorios según STORE_DRIVER. Lo comparten la API y posctl.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jhoicas/ventas-pos/internal/application/sales"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
	"github.com/jhoicas/ventas-pos/internal/infrastructure/memory"
	"github.com/jhoicas/ventas-pos/internal/infrastructure/postgres"
	"github.com/jhoicas/ventas-pos/internal/infrastructure/sqlite"
	"github.com/jhoicas/ventas-pos/pkg/config"
	"github.com/jhoicas/ventas-pos/pkg/logger"
)

// Stores repositorios fuera de transacción más el runner de la unidad de trabajo.
type Stores struct {
	Driver    string
	Products  repository.ProductRepository
	Services  repository.ServiceRepository
	Employees repository.EmployeeRepository
	Customers repository.CustomerRepository
	Users     repository.UserRepository
	Sales     repository.SaleRepository
	Stock     repository.StockRepository
	Movements repository.InventoryMovementRepository
	Ledger    repository.LedgerRepository
	Tx        sales.TxRunner

	// Migrate aplica el esquema (no-op en memoria). Devuelve lo aplicado.
	Migrate func(ctx context.Context) ([]string, error)
	Ping    func(ctx context.Context) error
	Close   func()
}

// Open conecta el almacenamiento elegido en cfg.Store.Driver.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Stores, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, log)
	case config.DriverSQLite:
		return openSQLite(ctx, cfg)
	case config.DriverMemory:
		return FromMemory(memory.NewStore()), nil
	default:
		return nil, fmt.Errorf("bootstrap: driver %q no soportado", cfg.Store.Driver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Stores, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		return nil, err
	}
	return &Stores{
		Driver:    config.DriverPostgres,
		Products:  postgres.NewProductRepository(pool),
		Services:  postgres.NewServiceRepository(pool),
		Employees: postgres.NewEmployeeRepository(pool),
		Customers: postgres.NewCustomerRepository(pool),
		Users:     postgres.NewUserRepository(pool),
		Sales:     postgres.NewSaleRepository(pool),
		Stock:     postgres.NewStockRepository(pool),
		Movements: postgres.NewInventoryMovementRepository(pool),
		Ledger:    postgres.NewLedgerRepository(pool),
		Tx:        postgres.NewTxRunner(pool),
		Migrate:   func(ctx context.Context) ([]string, error) { return postgres.Migrate(ctx, pool) },
		Ping:      pool.Ping,
		Close:     pool.Close,
	}, nil
}

func openSQLite(ctx context.Context, cfg *config.Config) (*Stores, error) {
	db, err := sqlite.Open(ctx, cfg.Store.SQLitePath)
	if err != nil {
		return nil, err
	}
	return &Stores{
		Driver:    config.DriverSQLite,
		Products:  sqlite.NewProductRepo(db),
		Services:  sqlite.NewServiceRepo(db),
		Employees: sqlite.NewEmployeeRepo(db),
		Customers: sqlite.NewCustomerRepo(db),
		Users:     sqlite.NewUserRepo(db),
		Sales:     sqlite.NewSaleRepo(db),
		Stock:     sqlite.NewStockRepo(db),
		Movements: sqlite.NewMovementRepo(db),
		Ledger:    sqlite.NewLedgerRepo(db),
		Tx:        sqlite.NewTxRunner(db),
		Migrate: func(ctx context.Context) ([]string, error) {
			if err := sqlite.Migrate(ctx, db); err != nil {
				return nil, err
			}
			return []string{"schema.sql"}, nil
		},
		Ping:  db.PingContext,
		Close: func() { _ = db.Close() },
	}, nil
}

// FromMemory envuelve un Store en memoria ya creado (tests y arranque con seed).
func FromMemory(store *memory.Store) *Stores {
	return &Stores{
		Driver:    config.DriverMemory,
		Products:  store.Products(),
		Services:  store.Services(),
		Employees: store.Employees(),
		Customers: store.Customers(),
		Users:     store.Users(),
		Sales:     store.Sales(),
		Stock:     store.Stock(),
		Movements: store.Movements(),
		Ledger:    store.Ledger(),
		Tx:        store,
		Migrate:   func(context.Context) ([]string, error) { return nil, nil },
		Ping:      func(context.Context) error { return nil },
		Close:     func() {},
	}
}
