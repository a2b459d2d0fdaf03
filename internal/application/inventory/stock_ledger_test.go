package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-pos/internal/application/dto"
	"github.com/jhoicas/ventas-pos/internal/application/inventory"
	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/infrastructure/memory"
)

func seed(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Products().Create(context.Background(), &entity.Product{
		ID: "p1", Name: "Jean", Price: decimal.NewFromInt(80), Active: true,
		Variants: []entity.Variant{{ID: "v32", Size: "32", StockQuantity: 3}},
	}))
	return store
}

func TestStockLedger_DeductAndRestore(t *testing.T) {
	ctx := context.Background()
	store := seed(t)
	ledger := inventory.NewStockLedger()
	key := entity.StockKey{ProductID: "p1", VariantID: "v32"}
	now := time.Now()

	out, err := ledger.DeductInTx(ctx, store.Stock(), store.Movements(), key, 2, "s1", "u1", now)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeOUT, out.Type)
	assert.Equal(t, 3, out.StockBefore)
	assert.Equal(t, 1, out.StockAfter)
	assert.Equal(t, "venta #s1", out.Reason)

	in, err := ledger.RestoreInTx(ctx, store.Stock(), store.Movements(), key, 2, "s1", "u1", now)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeIN, in.Type)
	assert.Equal(t, 1, in.StockBefore)
	assert.Equal(t, 3, in.StockAfter)
	assert.Equal(t, "reverso de venta #s1", in.Reason)

	movs, err := store.Movements().ListBySale(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, movs, 2)
}

func TestStockLedger_DeductShortage(t *testing.T) {
	ctx := context.Background()
	store := seed(t)
	key := entity.StockKey{ProductID: "p1", VariantID: "v32"}

	_, err := inventory.NewStockLedger().DeductInTx(ctx, store.Stock(), store.Movements(), key, 4, "s1", "u1", time.Now())
	require.Error(t, err)
	var stockErr *domain.StockError
	require.True(t, errors.As(err, &stockErr))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 3, stockErr.Available)

	n, err := store.Stock().Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "sin stock suficiente no se modifica el contador")
	assert.Empty(t, store.Movements().All())
}

func TestStockLedger_RejectsNonPositiveQuantity(t *testing.T) {
	store := seed(t)
	_, err := inventory.NewStockLedger().DeductInTx(context.Background(), store.Stock(), store.Movements(),
		entity.StockKey{ProductID: "p1", VariantID: "v32"}, 0, "s1", "u1", time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMovementsUseCase_List(t *testing.T) {
	ctx := context.Background()
	store := seed(t)
	key := entity.StockKey{ProductID: "p1", VariantID: "v32"}
	_, err := inventory.NewStockLedger().DeductInTx(ctx, store.Stock(), store.Movements(), key, 1, "s1", "u1", time.Now())
	require.NoError(t, err)

	uc := inventory.NewMovementsUseCase(store.Movements())

	bySale, err := uc.List(ctx, dto.MovementListRequest{SaleID: "s1"})
	require.NoError(t, err)
	require.Len(t, bySale, 1)
	assert.Equal(t, "v32", bySale[0].VariantID)

	byProduct, err := uc.List(ctx, dto.MovementListRequest{ProductID: "p1"})
	require.NoError(t, err)
	assert.Len(t, byProduct, 1)

	_, err = uc.List(ctx, dto.MovementListRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.List(ctx, dto.MovementListRequest{ProductID: "p1", From: "14/03/2026"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
