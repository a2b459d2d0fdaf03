package sales_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsales "github.com/jhoicas/ventas-pos/internal/application/sales"
	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
	domsales "github.com/jhoicas/ventas-pos/internal/domain/sales"
	"github.com/jhoicas/ventas-pos/internal/infrastructure/memory"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var fixedNow = time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)

type fixture struct {
	store *memory.Store
	coord *appsales.Coordinator
	ctx   context.Context
}

// newFixture siembra: gorra (10.00, stock 5), camiseta con tallas S=2 y M=1 (25.00),
// servicio de corte (15.00) y vendedora Ana con 5 % de comisión.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	return newFixtureWithRunner(t, store, store)
}

func newFixtureWithRunner(t *testing.T, store *memory.Store, runner appsales.TxRunner) *fixture {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID: "cap", SKU: "CAP-01", Name: "Gorra", Price: dec("10.00"), StockQuantity: 5, Active: true,
	}))
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID: "shirt", SKU: "SH-01", Name: "Camiseta", Price: dec("25.00"), Active: true,
		Variants: []entity.Variant{
			{ID: "shirt-s", Size: "S", StockQuantity: 2},
			{ID: "shirt-m", Size: "M", StockQuantity: 1},
		},
	}))
	require.NoError(t, store.Services().Create(ctx, &entity.Service{
		ID: "haircut", Name: "Corte", Price: dec("15.00"), Active: true,
	}))
	require.NoError(t, store.Employees().Create(ctx, &entity.Employee{
		ID: "ana", Name: "Ana", CommissionPercent: dec("5"), Status: "active",
	}))
	require.NoError(t, store.Customers().Create(ctx, &entity.Customer{ID: "cli-1", Name: "Cliente Uno"}))

	coord := appsales.NewCoordinator(runner, store.Sales(), store.Employees(), store.Customers(), nil, nil,
		appsales.Config{CommissionCategory: "Commission"}).
		WithClock(func() time.Time { return fixedNow })
	return &fixture{store: store, coord: coord, ctx: ctx}
}

func (f *fixture) stock(t *testing.T, productID, variantID string) int {
	t.Helper()
	n, err := f.store.Stock().Get(f.ctx, entity.StockKey{ProductID: productID, VariantID: variantID})
	require.NoError(t, err)
	return n
}

func (f *fixture) ledger(t *testing.T) []*entity.LedgerEntry {
	t.Helper()
	list, err := f.store.Ledger().List(f.ctx, nil, nil, 0, 0)
	require.NoError(t, err)
	return list
}

func (f *fixture) sales(t *testing.T) []*entity.Sale {
	t.Helper()
	list, err := f.store.Sales().List(f.ctx, repository.SaleFilter{})
	require.NoError(t, err)
	return list
}

func line(kind, id, variant string, qty int, price string) domsales.CartLine {
	return domsales.CartLine{ItemID: id, Kind: kind, VariantID: variant, Name: id, Quantity: qty, UnitPrice: dec(price)}
}

func cartOf(t *testing.T, lines ...domsales.CartLine) *domsales.Cart {
	t.Helper()
	c := domsales.NewCart()
	for _, l := range lines {
		_, err := c.AppendLine(l)
		require.NoError(t, err)
	}
	return c
}

func completed(employeeID string) appsales.CheckoutMeta {
	return appsales.CheckoutMeta{TargetStatus: entity.SaleStatusCompleted, EmployeeID: employeeID, OperatorID: "op-1"}
}

func quote(employeeID string) appsales.CheckoutMeta {
	return appsales.CheckoutMeta{TargetStatus: entity.SaleStatusQuote, EmployeeID: employeeID, OperatorID: "op-1"}
}

func movementsOfType(list []*entity.InventoryMovement, typ string) []*entity.InventoryMovement {
	var out []*entity.InventoryMovement
	for _, m := range list {
		if m.Type == typ {
			out = append(out, m)
		}
	}
	return out
}

func TestCheckout_CompletedDeductsStockAndPostsCommission(t *testing.T) {
	f := newFixture(t)
	cart := cartOf(t,
		line(entity.ItemKindProduct, "cap", "", 2, "10.00"),
		line(entity.ItemKindProduct, "shirt", "shirt-s", 1, "25.00"),
		line(entity.ItemKindService, "haircut", "", 1, "15.00"),
	)

	detail, err := f.coord.Checkout(f.ctx, cart, completed("ana"))
	require.NoError(t, err)

	sale := detail.Sale
	assert.Equal(t, entity.SaleStatusCompleted, sale.Status)
	assert.True(t, sale.Subtotal.Equal(dec("60.00")))
	assert.True(t, sale.TotalAmount.Equal(dec("60.00")))
	assert.True(t, sale.CommissionAmount.Equal(dec("3.00")))
	assert.Equal(t, "cash", sale.PaymentMethod)

	sum := decimal.Zero
	for _, it := range detail.Items {
		sum = sum.Add(it.Subtotal)
	}
	assert.True(t, sum.Equal(sale.Subtotal), "la suma de ítems debe coincidir con el subtotal")

	assert.Equal(t, 3, f.stock(t, "cap", ""))
	assert.Equal(t, 1, f.stock(t, "shirt", "shirt-s"))
	assert.Equal(t, 1, f.stock(t, "shirt", "shirt-m"))

	movs, err := f.store.Movements().ListBySale(f.ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, movs, 2, "un OUT por ítem de producto; el servicio no mueve stock")
	for _, m := range movs {
		assert.Equal(t, entity.MovementTypeOUT, m.Type)
		assert.Equal(t, "venta #"+sale.ID, m.Reason)
		assert.Equal(t, m.StockBefore-m.Quantity, m.StockAfter)
	}

	entries := f.ledger(t)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.LedgerTypeExpense, entries[0].Type)
	assert.Equal(t, "Commission", entries[0].Category)
	assert.True(t, entries[0].Amount.Equal(dec("3.00")))
	assert.Equal(t, sale.ID, entries[0].SaleID)
	assert.Contains(t, entries[0].Description, "Ana")
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), entries[0].Date)
}

func TestCheckout_PercentageDiscountScenario(t *testing.T) {
	f := newFixture(t)
	cart := cartOf(t, line(entity.ItemKindProduct, "cap", "", 3, "10.00"))
	require.NoError(t, cart.SetDiscount(domsales.Discount{Type: entity.DiscountTypePercentage, Value: dec("10")}))

	detail, err := f.coord.Checkout(f.ctx, cart, completed(""))
	require.NoError(t, err)

	assert.Equal(t, "30.00", detail.Sale.Subtotal.StringFixed(2))
	assert.Equal(t, "3.00", detail.Sale.Discount.StringFixed(2))
	assert.Equal(t, "27.00", detail.Sale.TotalAmount.StringFixed(2))
	assert.Equal(t, entity.DiscountTypePercentage, detail.Sale.DiscountType)
	assert.True(t, detail.Sale.CommissionAmount.IsZero())
	assert.Empty(t, f.ledger(t), "sin vendedor no hay comisión")
}

func TestCheckout_QuoteHasNoEffects(t *testing.T) {
	f := newFixture(t)
	cart := cartOf(t, line(entity.ItemKindProduct, "cap", "", 5, "10.00"))

	detail, err := f.coord.Checkout(f.ctx, cart, quote("ana"))
	require.NoError(t, err)

	assert.Equal(t, entity.SaleStatusQuote, detail.Sale.Status)
	assert.True(t, detail.Sale.CommissionAmount.Equal(dec("2.50")))
	assert.Equal(t, 5, f.stock(t, "cap", ""))
	assert.Empty(t, f.store.Movements().All())
	assert.Empty(t, f.ledger(t))
}

func TestCheckout_RejectsEmptyCartAndBadStatus(t *testing.T) {
	f := newFixture(t)

	_, err := f.coord.Checkout(f.ctx, domsales.NewCart(), completed(""))
	assert.ErrorIs(t, err, domain.ErrEmptyCart)

	cart := cartOf(t, line(entity.ItemKindProduct, "cap", "", 1, "10.00"))
	_, err = f.coord.Checkout(f.ctx, cart, appsales.CheckoutMeta{TargetStatus: "cancelled"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCheckout_UnknownSellerOrClient(t *testing.T) {
	f := newFixture(t)
	cart := cartOf(t, line(entity.ItemKindProduct, "cap", "", 1, "10.00"))

	_, err := f.coord.Checkout(f.ctx, cart, completed("nadie"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	meta := completed("")
	meta.ClientID = "cli-x"
	_, err = f.coord.Checkout(f.ctx, cart, meta)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, 5, f.stock(t, "cap", ""))
	assert.Empty(t, f.sales(t))
}

func TestCheckout_InsufficientStockRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	cart := cartOf(t,
		line(entity.ItemKindProduct, "cap", "", 2, "10.00"),
		line(entity.ItemKindProduct, "shirt", "shirt-m", 2, "25.00"),
	)

	_, err := f.coord.Checkout(f.ctx, cart, completed("ana"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.NotErrorIs(t, err, domain.ErrCommitFailed)

	var stockErr *domain.StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "shirt", stockErr.ProductID)
	assert.Equal(t, "shirt-m", stockErr.VariantID)
	assert.Equal(t, 2, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)

	assert.Equal(t, 5, f.stock(t, "cap", ""))
	assert.Equal(t, 1, f.stock(t, "shirt", "shirt-m"))
	assert.Empty(t, f.sales(t))
	assert.Empty(t, f.store.Movements().All())
	assert.Empty(t, f.ledger(t))

	// El carrito del llamador se conserva para reintentar.
	assert.Len(t, cart.Lines(), 2)
}

func TestCheckout_IdempotencyKeyReturnsExistingSale(t *testing.T) {
	f := newFixture(t)
	cart := cartOf(t, line(entity.ItemKindProduct, "cap", "", 2, "10.00"))
	meta := completed("ana")
	meta.IdempotencyKey = "pos-1:0001"

	first, err := f.coord.Checkout(f.ctx, cart, meta)
	require.NoError(t, err)
	second, err := f.coord.Checkout(f.ctx, cart, meta)
	require.NoError(t, err)

	assert.Equal(t, first.Sale.ID, second.Sale.ID)
	assert.Len(t, second.Items, 1)
	assert.Equal(t, 3, f.stock(t, "cap", ""))
	assert.Len(t, f.ledger(t), 1)
	assert.Len(t, f.store.Movements().All(), 1)
}

func TestDeleteSale_RestoresStockAndKeepsCommission(t *testing.T) {
	f := newFixture(t)
	cart := cartOf(t, line(entity.ItemKindService, "haircut", "", 1, "150.00"),
		line(entity.ItemKindProduct, "cap", "", 5, "10.00"))

	detail, err := f.coord.Checkout(f.ctx, cart, completed("ana"))
	require.NoError(t, err)
	assert.Equal(t, "200.00", detail.Sale.TotalAmount.StringFixed(2))
	assert.Equal(t, "10.00", detail.Sale.CommissionAmount.StringFixed(2))
	assert.Equal(t, 0, f.stock(t, "cap", ""))

	require.NoError(t, f.coord.DeleteSale(f.ctx, detail.Sale.ID, "admin-1"))

	assert.Equal(t, 5, f.stock(t, "cap", ""))
	_, err = f.coord.GetSale(f.ctx, detail.Sale.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	movs, err := f.store.Movements().ListBySale(f.ctx, detail.Sale.ID)
	require.NoError(t, err)
	ins := movementsOfType(movs, entity.MovementTypeIN)
	require.Len(t, ins, 1)
	assert.Equal(t, "reverso de venta #"+detail.Sale.ID, ins[0].Reason)
	assert.Equal(t, 0, ins[0].StockBefore)
	assert.Equal(t, 5, ins[0].StockAfter)
	assert.Equal(t, "admin-1", ins[0].CreatedBy)

	entries := f.ledger(t)
	require.Len(t, entries, 1, "la comisión no se revierte al eliminar")
	assert.Equal(t, "10.00", entries[0].Amount.StringFixed(2))
}

func TestDeleteSale_QuoteHasNoStockEffects(t *testing.T) {
	f := newFixture(t)
	detail, err := f.coord.Checkout(f.ctx, cartOf(t, line(entity.ItemKindProduct, "cap", "", 1, "10.00")), quote(""))
	require.NoError(t, err)

	require.NoError(t, f.coord.DeleteSale(f.ctx, detail.Sale.ID, "admin-1"))
	assert.Equal(t, 5, f.stock(t, "cap", ""))
	assert.Empty(t, f.store.Movements().All())
}

func TestDeleteSale_Unknown(t *testing.T) {
	f := newFixture(t)
	err := f.coord.DeleteSale(f.ctx, "no-existe", "admin-1")
	assert.ErrorIs(t, err, domain.ErrReverseFailed)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEditSale_EquivalentToDeleteThenRecommit(t *testing.T) {
	f := newFixture(t)
	original, err := f.coord.Checkout(f.ctx, cartOf(t,
		line(entity.ItemKindProduct, "cap", "", 4, "10.00"),
		line(entity.ItemKindProduct, "shirt", "shirt-s", 2, "25.00"),
	), completed("ana"))
	require.NoError(t, err)
	assert.Equal(t, 1, f.stock(t, "cap", ""))
	assert.Equal(t, 0, f.stock(t, "shirt", "shirt-s"))

	edited, err := f.coord.EditSale(f.ctx, original.Sale.ID, cartOf(t,
		line(entity.ItemKindProduct, "cap", "", 5, "10.00"),
		line(entity.ItemKindProduct, "shirt", "shirt-m", 1, "25.00"),
	), completed("ana"))
	require.NoError(t, err)

	assert.NotEqual(t, original.Sale.ID, edited.Sale.ID, "la edición produce una venta nueva")
	_, err = f.coord.GetSale(f.ctx, original.Sale.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Como si la original nunca hubiera existido y luego se aplicara el carrito nuevo.
	assert.Equal(t, 0, f.stock(t, "cap", ""))
	assert.Equal(t, 2, f.stock(t, "shirt", "shirt-s"))
	assert.Equal(t, 0, f.stock(t, "shirt", "shirt-m"))
	assert.Len(t, f.sales(t), 1)
}

func TestEditSale_InheritsClientSellerAndPayment(t *testing.T) {
	f := newFixture(t)
	meta := completed("ana")
	meta.ClientID = "cli-1"
	meta.PaymentMethod = "card"
	original, err := f.coord.Checkout(f.ctx, cartOf(t, line(entity.ItemKindProduct, "cap", "", 2, "10.00")), meta)
	require.NoError(t, err)

	edited, err := f.coord.EditSale(f.ctx, original.Sale.ID,
		cartOf(t, line(entity.ItemKindProduct, "cap", "", 4, "10.00")),
		appsales.CheckoutMeta{TargetStatus: entity.SaleStatusCompleted, OperatorID: "admin-1"})
	require.NoError(t, err)

	assert.Equal(t, "cli-1", edited.Sale.ClientID)
	assert.Equal(t, "ana", edited.Sale.EmployeeID)
	assert.Equal(t, "card", edited.Sale.PaymentMethod)
	assert.Equal(t, "2.00", edited.Sale.CommissionAmount.StringFixed(2))
	assert.Equal(t, 1, f.stock(t, "cap", ""))
}

func TestEditSale_ExplicitMetaOverridesOriginal(t *testing.T) {
	f := newFixture(t)
	original, err := f.coord.Checkout(f.ctx, cartOf(t, line(entity.ItemKindProduct, "cap", "", 1, "10.00")), completed("ana"))
	require.NoError(t, err)

	meta := completed("")
	meta.PaymentMethod = "transfer"
	meta.ClientID = "cli-1"
	edited, err := f.coord.EditSale(f.ctx, original.Sale.ID,
		cartOf(t, line(entity.ItemKindProduct, "cap", "", 1, "10.00")), meta)
	require.NoError(t, err)
	assert.Equal(t, "transfer", edited.Sale.PaymentMethod)
	assert.Equal(t, "cli-1", edited.Sale.ClientID)
	assert.Equal(t, "ana", edited.Sale.EmployeeID)
}

func TestEditSale_ReusingOriginalKeyStillEdits(t *testing.T) {
	f := newFixture(t)
	meta := completed("ana")
	meta.IdempotencyKey = "pos-7"
	original, err := f.coord.Checkout(f.ctx, cartOf(t, line(entity.ItemKindProduct, "cap", "", 1, "10.00")), meta)
	require.NoError(t, err)

	edited, err := f.coord.EditSale(f.ctx, original.Sale.ID,
		cartOf(t, line(entity.ItemKindProduct, "cap", "", 3, "10.00")), meta)
	require.NoError(t, err)
	assert.NotEqual(t, original.Sale.ID, edited.Sale.ID)
	assert.Equal(t, "30.00", edited.Sale.TotalAmount.StringFixed(2))
	assert.Equal(t, 2, f.stock(t, "cap", ""))

	// Un reintento de la misma edición devuelve la venta ya editada.
	again, err := f.coord.EditSale(f.ctx, original.Sale.ID,
		cartOf(t, line(entity.ItemKindProduct, "cap", "", 3, "10.00")), meta)
	require.NoError(t, err)
	assert.Equal(t, edited.Sale.ID, again.Sale.ID)
	assert.Equal(t, 2, f.stock(t, "cap", ""))
	assert.Len(t, f.sales(t), 1)
}

func TestEditSale_CommitFailureKeepsOriginal(t *testing.T) {
	f := newFixture(t)
	original, err := f.coord.Checkout(f.ctx, cartOf(t, line(entity.ItemKindProduct, "cap", "", 2, "10.00")), completed("ana"))
	require.NoError(t, err)
	movsBefore := len(f.store.Movements().All())

	_, err = f.coord.EditSale(f.ctx, original.Sale.ID, cartOf(t,
		line(entity.ItemKindProduct, "cap", "", 6, "10.00"),
	), completed("ana"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := f.coord.GetSale(f.ctx, original.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, original.Sale.ID, got.Sale.ID)
	assert.Equal(t, 3, f.stock(t, "cap", ""))
	assert.Len(t, f.store.Movements().All(), movsBefore)
}

func TestEditSale_UnknownSaleIsReverseFailure(t *testing.T) {
	f := newFixture(t)
	_, err := f.coord.EditSale(f.ctx, "no-existe",
		cartOf(t, line(entity.ItemKindProduct, "cap", "", 1, "10.00")), completed(""))
	assert.ErrorIs(t, err, domain.ErrReverseFailed)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.sales(t))
	assert.Equal(t, 5, f.stock(t, "cap", ""))
}

func TestCompleteQuote_OneOutPerItemAndNoneAtQuoteTime(t *testing.T) {
	f := newFixture(t)
	cart := cartOf(t,
		line(entity.ItemKindProduct, "cap", "", 2, "10.00"),
		line(entity.ItemKindProduct, "shirt", "shirt-s", 1, "25.00"),
	)
	require.NoError(t, cart.SetDiscount(domsales.Discount{Type: entity.DiscountTypeFixed, Value: dec("5")}))
	meta := quote("ana")
	meta.ClientID = "cli-1"

	q, err := f.coord.Checkout(f.ctx, cart, meta)
	require.NoError(t, err)
	assert.Empty(t, f.store.Movements().All())

	done, err := f.coord.CompleteQuote(f.ctx, q.Sale.ID, "op-2")
	require.NoError(t, err)

	assert.Equal(t, entity.SaleStatusCompleted, done.Sale.Status)
	assert.Equal(t, "cli-1", done.Sale.ClientID)
	assert.Equal(t, "ana", done.Sale.EmployeeID)
	assert.Equal(t, "40.00", done.Sale.TotalAmount.StringFixed(2))
	assert.Equal(t, "2.00", done.Sale.CommissionAmount.StringFixed(2))

	outs := movementsOfType(f.store.Movements().All(), entity.MovementTypeOUT)
	assert.Len(t, outs, 2)
	assert.Empty(t, movementsOfType(f.store.Movements().All(), entity.MovementTypeIN))
	assert.Equal(t, 3, f.stock(t, "cap", ""))
	assert.Equal(t, 1, f.stock(t, "shirt", "shirt-s"))

	_, err = f.coord.CompleteQuote(f.ctx, done.Sale.ID, "op-2")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestPreview(t *testing.T) {
	f := newFixture(t)
	cart := cartOf(t, line(entity.ItemKindProduct, "cap", "", 3, "10.00"))
	require.NoError(t, cart.SetDiscount(domsales.Discount{Type: entity.DiscountTypeFixed, Value: dec("100")}))

	summary, commission, err := f.coord.Preview(f.ctx, cart, "ana")
	require.NoError(t, err)
	assert.Equal(t, "30.00", summary.Discount.StringFixed(2), "el descuento se acota al subtotal")
	assert.True(t, summary.Total.IsZero())
	assert.True(t, commission.IsZero())
	assert.Empty(t, f.sales(t))
}

func runLastUnitRace(t *testing.T, f *fixture) {
	t.Helper()
	const buyers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		shortages int
	)
	carts := make([]*domsales.Cart, buyers)
	for i := range carts {
		carts[i] = cartOf(t, line(entity.ItemKindProduct, "shirt", "shirt-m", 1, "25.00"))
	}
	start := make(chan struct{})
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(cart *domsales.Cart) {
			defer wg.Done()
			<-start
			_, err := f.coord.Checkout(f.ctx, cart, completed(""))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrInsufficientStock):
				shortages++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}(carts[i])
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, buyers-1, shortages)
	assert.Equal(t, 0, f.stock(t, "shirt", "shirt-m"))
	assert.Len(t, f.sales(t), 1)
}

func TestCheckout_LastUnitRace_TransactionalStore(t *testing.T) {
	runLastUnitRace(t, newFixture(t))
}

func TestCheckout_LastUnitRace_CompensatingRunner(t *testing.T) {
	store := memory.NewStore()
	runner := appsales.NewCompensatingRunner(store.TxRepos(), nil)
	runLastUnitRace(t, newFixtureWithRunner(t, store, runner))
}

// failingLedger falla al registrar asientos de la categoría indicada.
type failingLedger struct {
	repository.LedgerRepository
	err error
}

func (l *failingLedger) Create(ctx context.Context, e *entity.LedgerEntry) error {
	if e.Category == "Commission" && !strings.HasPrefix(e.Description, appsales.CompensationReasonPrefix) {
		return l.err
	}
	return l.LedgerRepository.Create(ctx, e)
}

// failingIncrement rechaza las entradas de stock.
type failingIncrement struct {
	repository.StockRepository
}

func (s *failingIncrement) Increment(context.Context, entity.StockKey, int) (int, error) {
	return 0, errors.New("contador bloqueado")
}

func TestCompensatingRunner_UndoesPartialCommit(t *testing.T) {
	store := memory.NewStore()
	repos := store.TxRepos()
	repos.Ledger = &failingLedger{LedgerRepository: repos.Ledger, err: errors.New("ledger caído")}
	f := newFixtureWithRunner(t, store, appsales.NewCompensatingRunner(repos, nil))

	_, err := f.coord.Checkout(f.ctx, cartOf(t,
		line(entity.ItemKindProduct, "cap", "", 2, "10.00"),
		line(entity.ItemKindProduct, "shirt", "shirt-s", 1, "25.00"),
	), completed("ana"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCommitFailed)
	assert.NotErrorIs(t, err, domain.ErrCompensationFailed)

	assert.Empty(t, f.sales(t))
	assert.Equal(t, 5, f.stock(t, "cap", ""))
	assert.Equal(t, 2, f.stock(t, "shirt", "shirt-s"))
	assert.Empty(t, f.ledger(t))

	all := f.store.Movements().All()
	require.Len(t, all, 4, "cada OUT queda anulado por un contra-movimiento")
	for _, m := range movementsOfType(all, entity.MovementTypeIN) {
		assert.True(t, strings.HasPrefix(m.Reason, appsales.CompensationReasonPrefix))
	}
}

func TestCompensatingRunner_FailedUndoIsSurfaced(t *testing.T) {
	store := memory.NewStore()
	repos := store.TxRepos()
	repos.Ledger = &failingLedger{LedgerRepository: repos.Ledger, err: errors.New("ledger caído")}
	repos.Stock = &failingIncrement{StockRepository: repos.Stock}
	f := newFixtureWithRunner(t, store, appsales.NewCompensatingRunner(repos, nil))

	_, err := f.coord.Checkout(f.ctx, cartOf(t, line(entity.ItemKindProduct, "cap", "", 2, "10.00")), completed("ana"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCompensationFailed)
	assert.Contains(t, err.Error(), "stock.decrement")

	// La venta se deshizo aunque el stock quedó pendiente de conciliación.
	assert.Empty(t, f.sales(t))
	assert.Equal(t, 3, f.stock(t, "cap", ""))
}

func TestCompensatingRunner_DeleteAbortRecreatesSale(t *testing.T) {
	store := memory.NewStore()
	repos := store.TxRepos()
	f := newFixtureWithRunner(t, store, appsales.NewCompensatingRunner(repos, nil))

	detail, err := f.coord.Checkout(f.ctx, cartOf(t, line(entity.ItemKindProduct, "cap", "", 1, "10.00")), completed("ana"))
	require.NoError(t, err)

	runner := appsales.NewCompensatingRunner(repos, nil)
	boom := errors.New("fallo después de eliminar")
	err = runner.RunSales(f.ctx, func(ctx context.Context, tx appsales.TxRepos) error {
		if err := tx.Sales.Delete(ctx, detail.Sale.ID); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := f.coord.GetSale(f.ctx, detail.Sale.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)
}

func TestCompensatingRunner_CounterRecordsUseClockAndOwnCategory(t *testing.T) {
	store := memory.NewStore()
	runner := appsales.NewCompensatingRunner(store.TxRepos(), nil).
		WithClock(func() time.Time { return fixedNow })
	ctx := context.Background()
	boom := errors.New("fallo tras registrar")

	err := runner.RunSales(ctx, func(ctx context.Context, tx appsales.TxRepos) error {
		if err := tx.Movements.Create(ctx, &entity.InventoryMovement{
			ProductID: "cap", SaleID: "s-1", Type: entity.MovementTypeOUT, Quantity: 1,
			Reason: "venta #s-1", StockBefore: 5, StockAfter: 4,
		}); err != nil {
			return err
		}
		if err := tx.Ledger.Create(ctx, &entity.LedgerEntry{
			Type: entity.LedgerTypeExpense, Amount: dec("1.00"), Category: "Commission",
			Description: "Comisión", Date: fixedNow, SaleID: "s-1",
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrCompensationFailed)

	entries, err := store.Ledger().List(ctx, nil, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	var counter *entity.LedgerEntry
	for _, e := range entries {
		if e.Type == entity.LedgerTypeIncome {
			counter = e
		}
	}
	require.NotNil(t, counter)
	assert.Equal(t, appsales.CompensationCategory("Commission"), counter.Category)
	assert.NotEqual(t, "Commission", counter.Category)
	assert.Equal(t, fixedNow, counter.CreatedAt)

	ins := movementsOfType(store.Movements().All(), entity.MovementTypeIN)
	require.Len(t, ins, 1)
	assert.Equal(t, fixedNow, ins[0].CreatedAt)
	assert.Equal(t, 5, ins[0].StockAfter)
}
