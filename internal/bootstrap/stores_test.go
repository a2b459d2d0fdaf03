package bootstrap_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-pos/internal/bootstrap"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/pkg/config"
)

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Store: config.StoreConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "ventas.db"),
	}}
	stores, err := bootstrap.Open(ctx, cfg, nil)
	require.NoError(t, err)
	defer stores.Close()

	applied, err := stores.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"schema.sql"}, applied)
	require.NoError(t, stores.Ping(ctx))

	require.NoError(t, stores.Products.Create(ctx, &entity.Product{ID: "cap", Name: "Gorra", StockQuantity: 4, Active: true}))
	n, err := stores.Stock.Get(ctx, entity.StockKey{ProductID: "cap"})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestOpen_Memory(t *testing.T) {
	stores, err := bootstrap.Open(context.Background(), &config.Config{Store: config.StoreConfig{Driver: config.DriverMemory}}, nil)
	require.NoError(t, err)
	applied, err := stores.Migrate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)
	assert.Equal(t, config.DriverMemory, stores.Driver)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := bootstrap.Open(context.Background(), &config.Config{Store: config.StoreConfig{Driver: "mongo"}}, nil)
	assert.Error(t, err)
}
