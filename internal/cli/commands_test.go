package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-pos/internal/application/catalog"
	"github.com/jhoicas/ventas-pos/internal/application/dto"
	appsales "github.com/jhoicas/ventas-pos/internal/application/sales"
	"github.com/jhoicas/ventas-pos/internal/bootstrap"
	"github.com/jhoicas/ventas-pos/internal/cli"
	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/infrastructure/memory"
	"github.com/jhoicas/ventas-pos/pkg/config"
	"github.com/jhoicas/ventas-pos/pkg/logger"
)

const seedJSON = `{
  "employees": [{"id": "ana", "name": "Ana", "commission_percent": "10"}],
  "products": [
    {"id": "cap", "name": "Gorra", "price": "10", "stock": 2},
    {"id": "shirt", "name": "Camiseta", "price": "20", "variants": [{"id": "shirt-s", "size": "S", "stock": 4}]}
  ]
}`

// run ejecuta posctl contra un almacenamiento en memoria compartido entre invocaciones.
func run(t *testing.T, store *memory.Store, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORE_DRIVER", config.DriverMemory)
	t.Setenv("REDIS_ADDR", "")
	open := func(context.Context, *config.Config, *logger.Logger) (*bootstrap.Stores, error) {
		return bootstrap.FromMemory(store), nil
	}
	root := cli.NewRootCommand(open)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func seedFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(seedJSON), 0o600))
	return path
}

func TestSeedAndStockShow(t *testing.T) {
	store := memory.NewStore()

	out, err := run(t, store, "seed", "--file", seedFile(t))
	require.NoError(t, err)
	assert.Equal(t, "creados: 3, omitidos: 0\n", out)

	out, err = run(t, store, "stock", "show", "cap")
	require.NoError(t, err)
	assert.Equal(t, "cap: 2\n", out)

	out, err = run(t, store, "stock", "show", "shirt", "--variant", "shirt-s")
	require.NoError(t, err)
	assert.Equal(t, "shirt talla S: 4\n", out)

	_, err = run(t, store, "stock", "show", "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMigrate_MemoryHasNothingToApply(t *testing.T) {
	out, err := run(t, memory.NewStore(), "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "sin migraciones para memory")
}

func TestSalesDelete_RestoresStock(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	_, err := run(t, store, "seed", "--file", seedFile(t))
	require.NoError(t, err)

	catalogUC := catalog.NewCatalogUseCase(store.Products(), store.Services(), nil, 0, 3, nil)
	cart, err := catalogUC.BuildCart(ctx, dto.CartRequest{Lines: []dto.CartLineRequest{
		{ItemID: "cap", Kind: "product", Quantity: 2},
	}})
	require.NoError(t, err)
	coord := appsales.NewCoordinator(store, store.Sales(), store.Employees(), store.Customers(), nil, nil, appsales.Config{})
	detail, err := coord.Checkout(ctx, cart, appsales.CheckoutMeta{
		TargetStatus: entity.SaleStatusCompleted, EmployeeID: "ana", OperatorID: "u1",
	})
	require.NoError(t, err)
	saleID := detail.Sale.ID

	out, err := run(t, store, "sales", "show", saleID)
	require.NoError(t, err)
	var shown dto.SaleResponse
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "20", shown.TotalAmount.String())
	assert.Len(t, shown.Items, 1)

	out, err = run(t, store, "sales", "list", "--status", "completed")
	require.NoError(t, err)
	var listed []dto.SaleResponse
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	assert.Len(t, listed, 1)

	_, err = run(t, store, "sales", "delete", saleID)
	require.Error(t, err, "sin --yes no se elimina")

	out, err = run(t, store, "sales", "delete", saleID, "--yes", "--operator", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "eliminada")

	qty, err := store.Stock().Get(ctx, entity.StockKey{ProductID: "cap"})
	require.NoError(t, err)
	assert.Equal(t, 2, qty)

	_, err = run(t, store, "sales", "delete", saleID, "--yes")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSeed_RequiresFile(t *testing.T) {
	_, err := run(t, memory.NewStore(), "seed")
	assert.Error(t, err)
}
