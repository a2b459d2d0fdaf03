package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsales "github.com/jhoicas/ventas-pos/internal/application/sales"
	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	domsales "github.com/jhoicas/ventas-pos/internal/domain/sales"
	"github.com/jhoicas/ventas-pos/internal/infrastructure/postgres"
	"github.com/jhoicas/ventas-pos/pkg/config"
)

// Requiere una base real: VENTAS_TEST_DATABASE_URL=postgres://... go test ./internal/infrastructure/postgres
func openPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("VENTAS_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("VENTAS_TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn}, nil)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	_, err = postgres.Migrate(ctx, pool)
	require.NoError(t, err)
	return pool
}

func coordinator(pool *pgxpool.Pool) *appsales.Coordinator {
	return appsales.NewCoordinator(postgres.NewTxRunner(pool), postgres.NewSaleRepository(pool),
		postgres.NewEmployeeRepository(pool), postgres.NewCustomerRepository(pool), nil, nil, appsales.Config{})
}

// newProduct crea un producto con ids únicos para no chocar con corridas anteriores.
func newProduct(t *testing.T, pool *pgxpool.Pool, stock int) *entity.Product {
	t.Helper()
	p := &entity.Product{
		ID: uuid.New().String(), Name: "Gorra", Price: decimal.RequireFromString("10.00"), StockQuantity: stock, Active: true,
	}
	require.NoError(t, postgres.NewProductRepository(pool).Create(context.Background(), p))
	return p
}

func cartOf(t *testing.T, p *entity.Product, qty int) *domsales.Cart {
	t.Helper()
	cart := domsales.NewCart()
	_, err := cart.AppendLine(domsales.CartLine{
		ItemID: p.ID, Kind: entity.ItemKindProduct, Name: p.Name, Quantity: qty, UnitPrice: p.Price,
	})
	require.NoError(t, err)
	return cart
}

func TestCoordinator_CommitDeleteRoundTrip(t *testing.T) {
	pool := openPool(t)
	ctx := context.Background()
	p := newProduct(t, pool, 5)
	seller := &entity.Employee{ID: uuid.New().String(), Name: "Ana", CommissionPercent: decimal.NewFromInt(5)}
	require.NoError(t, postgres.NewEmployeeRepository(pool).Create(ctx, seller))

	detail, err := coordinator(pool).Checkout(ctx, cartOf(t, p, 2), appsales.CheckoutMeta{
		TargetStatus: entity.SaleStatusCompleted, EmployeeID: seller.ID, OperatorID: "op",
	})
	require.NoError(t, err)
	assert.True(t, detail.Sale.CommissionAmount.Equal(decimal.NewFromInt(1)))

	stock := postgres.NewStockRepository(pool)
	n, err := stock.Get(ctx, entity.StockKey{ProductID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, coordinator(pool).DeleteSale(ctx, detail.Sale.ID, "op"))
	n, err = stock.Get(ctx, entity.StockKey{ProductID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	exists, err := postgres.NewLedgerRepository(pool).ExistsForSale(ctx, detail.Sale.ID, "Commission")
	require.NoError(t, err)
	assert.True(t, exists, "la comisión no se revierte")

	movs, err := postgres.NewInventoryMovementRepository(pool).ListBySale(ctx, detail.Sale.ID)
	require.NoError(t, err)
	assert.Len(t, movs, 2)
}

func TestCoordinator_LastUnitRace(t *testing.T) {
	pool := openPool(t)
	ctx := context.Background()
	p := newProduct(t, pool, 1)

	const buyers = 4
	errs := make([]error, buyers)
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cart := domsales.NewCart()
			if _, err := cart.AppendLine(domsales.CartLine{
				ItemID: p.ID, Kind: entity.ItemKindProduct, Name: p.Name, Quantity: 1, UnitPrice: p.Price,
			}); err != nil {
				errs[i] = err
				return
			}
			_, errs[i] = coordinator(pool).Checkout(ctx, cart, appsales.CheckoutMeta{
				TargetStatus: entity.SaleStatusCompleted, OperatorID: "op",
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	}
	assert.Equal(t, 1, winners)

	n, err := postgres.NewStockRepository(pool).Get(ctx, entity.StockKey{ProductID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
