package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsales "github.com/jhoicas/ventas-pos/internal/application/sales"
	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/infrastructure/memory"
)

func seeded(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Products().Create(context.Background(), &entity.Product{
		ID: "shirt", Name: "Camiseta", Price: decimal.RequireFromString("25.00"), StockQuantity: 4, Active: true,
		Variants: []entity.Variant{{ID: "shirt-s", Size: "S", StockQuantity: 2}},
	}))
	return store
}

func TestRunSales_RollbackRestoresStockAndKeepsCatalogWrites(t *testing.T) {
	store := seeded(t)
	ctx := context.Background()
	boom := errors.New("fallo")

	err := store.RunSales(ctx, func(ctx context.Context, repos appsales.TxRepos) error {
		_, err := repos.Stock.Decrement(ctx, entity.StockKey{ProductID: "shirt"}, 3)
		require.NoError(t, err)
		_, err = repos.Stock.Decrement(ctx, entity.StockKey{ProductID: "shirt", VariantID: "shirt-s"}, 2)
		require.NoError(t, err)
		require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "mug", Name: "Taza", StockQuantity: 1, Active: true}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := store.Stock().Get(ctx, entity.StockKey{ProductID: "shirt"})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	n, err = store.Stock().Get(ctx, entity.StockKey{ProductID: "shirt", VariantID: "shirt-s"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = store.Products().GetByID(ctx, "mug")
	assert.NoError(t, err, "el alta de catálogo no forma parte de la unidad revertida")
}

func TestGetByIdempotencyKey_WaitsForUnitInFlight(t *testing.T) {
	store := seeded(t)
	ctx := context.Background()
	boom := errors.New("fallo")

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- store.RunSales(ctx, func(ctx context.Context, repos appsales.TxRepos) error {
			if err := repos.Sales.Create(ctx, &entity.Sale{ID: "s-1", Status: entity.SaleStatusQuote, IdempotencyKey: "pos-1"}); err != nil {
				return err
			}
			close(entered)
			<-release
			return boom
		})
	}()
	<-entered

	lookup := make(chan error, 1)
	go func() {
		_, err := store.Sales().GetByIdempotencyKey(ctx, "pos-1")
		lookup <- err
	}()

	select {
	case err := <-lookup:
		t.Fatalf("la búsqueda no esperó a la unidad en curso: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	assert.ErrorIs(t, <-done, boom)
	assert.ErrorIs(t, <-lookup, domain.ErrNotFound)
}
