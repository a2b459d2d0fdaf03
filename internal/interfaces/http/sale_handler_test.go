package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-pos/internal/application/auth"
	"github.com/jhoicas/ventas-pos/internal/application/catalog"
	"github.com/jhoicas/ventas-pos/internal/application/dto"
	"github.com/jhoicas/ventas-pos/internal/application/inventory"
	"github.com/jhoicas/ventas-pos/internal/application/ledger"
	appsales "github.com/jhoicas/ventas-pos/internal/application/sales"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/ventas-pos/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/ventas-pos/pkg/jwt"
)

type fakePDF struct{}

func (fakePDF) GenerateSalePDF(_ context.Context, doc appsales.SaleDocument) ([]byte, error) {
	return []byte("%PDF-" + doc.Title), nil
}

type apiFixture struct {
	app   *fiber.App
	store *memory.Store
}

// newAPI tienda en memoria: gorra (10.00, stock 2), camiseta con talla S (25.00, stock 1)
// y vendedora Ana con 10 % de comisión.
func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID: "cap", Name: "Gorra", Price: decimal.RequireFromString("10.00"), StockQuantity: 2, Active: true,
	}))
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID: "shirt", Name: "Camiseta", Price: decimal.RequireFromString("25.00"), Active: true,
		Variants: []entity.Variant{{ID: "shirt-s", Size: "S", StockQuantity: 1}},
	}))
	require.NoError(t, store.Employees().Create(ctx, &entity.Employee{
		ID: "ana", Name: "Ana", CommissionPercent: decimal.NewFromInt(10), Status: "active",
	}))

	catalogUC := catalog.NewCatalogUseCase(store.Products(), store.Services(), nil, 0, 1, nil)
	coord := appsales.NewCoordinator(store, store.Sales(), store.Employees(), store.Customers(), nil, nil, appsales.Config{})
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC: auth.NewAuthUseCase(store.Users(), store.Employees(), auth.JWTConfig{
			Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
		}),
		CatalogUC:   catalogUC,
		Coordinator: coord,
		ReceiptUC:   appsales.NewReceiptUseCase(store.Sales(), store.Customers(), store.Employees(), fakePDF{}, "Tienda"),
		MovementsUC: inventory.NewMovementsUseCase(store.Movements()),
		LedgerUC:    ledger.NewLedgerUseCase(store.Ledger()),
		JWTSecret:   testJWTSecret,
		ServiceName: "ventas-pos-test",
	})
	return &apiFixture{app: app, store: store}
}

func bearer(t *testing.T, role string) string {
	return bearerAs(t, "ana", role)
}

func bearerAs(t *testing.T, employeeID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, employeeID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (f *apiFixture) do(t *testing.T, method, path, role string, body any, headers ...string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", bearer(t, role))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func capLine(qty int) fiber.Map {
	return fiber.Map{"item_id": "cap", "kind": "product", "quantity": qty}
}

func TestSales_CreateCompletedCapturesCatalogPrice(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodPost, "/api/sales", apphttp.RoleVendedor, fiber.Map{
		"status": "completed",
		"lines":  []fiber.Map{capLine(2)},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	sale := decode[dto.SaleResponse](t, resp)
	assert.True(t, sale.TotalAmount.Equal(decimal.RequireFromString("20")))
	assert.True(t, sale.CommissionAmount.Equal(decimal.RequireFromString("2")))
	assert.Equal(t, "ana", sale.EmployeeID, "el vendedor sale del token")
	require.Len(t, sale.Items, 1)

	catalogResp := f.do(t, http.MethodGet, "/api/catalog", apphttp.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, catalogResp.StatusCode)
	snap := decode[dto.CatalogResponse](t, catalogResp)
	for _, p := range snap.Products {
		if p.ID == "cap" {
			assert.Equal(t, 0, p.Stock)
			assert.True(t, p.LowStock)
		}
	}
}

func TestSales_InsufficientStockIsConflict(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodPost, "/api/sales", apphttp.RoleVendedor, fiber.Map{
		"status": "completed",
		"lines":  []fiber.Map{capLine(3)},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
}

func TestSales_ValidationErrors(t *testing.T) {
	f := newAPI(t)

	resp := f.do(t, http.MethodPost, "/api/sales", apphttp.RoleVendedor, fiber.Map{
		"status": "completed",
		"lines":  []fiber.Map{capLine(0)},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.NotEmpty(t, body.Fields)

	resp = f.do(t, http.MethodPost, "/api/sales", apphttp.RoleVendedor, fiber.Map{"status": "completed"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "EMPTY_CART", decode[dto.ErrorResponse](t, resp).Code)

	resp = f.do(t, http.MethodPost, "/api/sales", apphttp.RoleVendedor, fiber.Map{
		"status": "completed",
		"lines":  []fiber.Map{{"item_id": "shirt", "kind": "product", "quantity": 1}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "VARIANT_REQUIRED", decode[dto.ErrorResponse](t, resp).Code)
}

func TestSales_IdempotencyHeader(t *testing.T) {
	f := newAPI(t)
	body := fiber.Map{"status": "completed", "lines": []fiber.Map{capLine(1)}}

	first := decode[dto.SaleResponse](t, f.do(t, http.MethodPost, "/api/sales", apphttp.RoleVendedor, body, apphttp.IdempotencyHeader, "pos-1"))
	second := decode[dto.SaleResponse](t, f.do(t, http.MethodPost, "/api/sales", apphttp.RoleVendedor, body, apphttp.IdempotencyHeader, "pos-1"))
	assert.Equal(t, first.ID, second.ID)

	n, err := f.store.Stock().Get(context.Background(), entity.StockKey{ProductID: "cap"})
	require.NoError(t, err)
	assert.Equal(t, 1, n, "el reintento no descuenta de nuevo")
}

func TestSales_DeleteRequiresAdmin(t *testing.T) {
	f := newAPI(t)
	sale := decode[dto.SaleResponse](t, f.do(t, http.MethodPost, "/api/sales", apphttp.RoleVendedor, fiber.Map{
		"status": "completed", "lines": []fiber.Map{capLine(2)},
	}))

	resp := f.do(t, http.MethodDelete, "/api/sales/"+sale.ID, apphttp.RoleVendedor, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodDelete, "/api/sales/"+sale.ID, apphttp.RoleAdmin, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/sales/"+sale.ID, apphttp.RoleAdmin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodDelete, "/api/sales/"+sale.ID, apphttp.RoleAdmin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "NotFound prevalece sobre REVERSE_FAILED")

	n, err := f.store.Stock().Get(context.Background(), entity.StockKey{ProductID: "cap"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ledgerResp := f.do(t, http.MethodGet, "/api/ledger", apphttp.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, ledgerResp.StatusCode)
	assert.Len(t, decode[[]dto.LedgerEntryResponse](t, ledgerResp), 1, "la comisión no se revierte")

	movResp := f.do(t, http.MethodGet, "/api/inventory/movements?sale_id="+sale.ID, apphttp.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, movResp.StatusCode)
	assert.Len(t, decode[[]dto.MovementResponse](t, movResp), 2)
}

func TestSales_EditKeepsOriginalSeller(t *testing.T) {
	f := newAPI(t)
	require.NoError(t, f.store.Employees().Create(context.Background(), &entity.Employee{
		ID: "luis", Name: "Luis", CommissionPercent: decimal.NewFromInt(50), Status: "active",
	}))
	sale := decode[dto.SaleResponse](t, f.do(t, http.MethodPost, "/api/sales", apphttp.RoleVendedor, fiber.Map{
		"status": "completed", "payment_method": "card", "lines": []fiber.Map{capLine(1)},
	}))
	require.Equal(t, "ana", sale.EmployeeID)

	resp := f.do(t, http.MethodPut, "/api/sales/"+sale.ID, "", fiber.Map{
		"status": "completed", "lines": []fiber.Map{capLine(2)},
	}, "Authorization", bearerAs(t, "luis", apphttp.RoleAdmin))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	edited := decode[dto.SaleResponse](t, resp)
	assert.NotEqual(t, sale.ID, edited.ID)
	assert.Equal(t, "ana", edited.EmployeeID, "quien edita no se queda con la comisión")
	assert.Equal(t, "card", edited.PaymentMethod)
	assert.True(t, edited.CommissionAmount.Equal(decimal.RequireFromString("2")))
}

func TestSales_QuoteCompleteAndPDF(t *testing.T) {
	f := newAPI(t)
	quote := decode[dto.SaleResponse](t, f.do(t, http.MethodPost, "/api/sales", apphttp.RoleVendedor, fiber.Map{
		"status": "quote",
		"lines":  []fiber.Map{{"item_id": "shirt", "kind": "product", "variant_id": "shirt-s", "quantity": 1}},
	}))
	assert.Equal(t, entity.SaleStatusQuote, quote.Status)

	pdf := f.do(t, http.MethodGet, "/api/sales/"+quote.ID+"/pdf", apphttp.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, pdf.StatusCode)
	assert.Equal(t, "application/pdf", pdf.Header.Get("Content-Type"))
	assert.Contains(t, pdf.Header.Get("Content-Disposition"), "cotizacion_")
	raw, _ := io.ReadAll(pdf.Body)
	assert.Equal(t, "%PDF-"+appsales.TitleQuote, string(raw))

	resp := f.do(t, http.MethodPost, "/api/sales/"+quote.ID+"/complete", apphttp.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	done := decode[dto.SaleResponse](t, resp)
	assert.Equal(t, entity.SaleStatusCompleted, done.Status)

	resp = f.do(t, http.MethodPost, "/api/sales/"+done.ID+"/complete", apphttp.RoleVendedor, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSales_PreviewAndList(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodPost, "/api/sales/preview", apphttp.RoleVendedor, fiber.Map{
		"lines":    []fiber.Map{capLine(2)},
		"discount": fiber.Map{"type": "PERCENTAGE", "value": "50"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decode[dto.CartSummaryResponse](t, resp)
	assert.True(t, summary.Total.Equal(decimal.RequireFromString("10")))
	assert.True(t, summary.Commission.Equal(decimal.RequireFromString("1")))

	f.do(t, http.MethodPost, "/api/sales", apphttp.RoleVendedor, fiber.Map{"status": "quote", "lines": []fiber.Map{capLine(1)}})
	list := f.do(t, http.MethodGet, "/api/sales?status=quote", apphttp.RoleVendedor, nil)
	require.Equal(t, http.StatusOK, list.StatusCode)
	assert.Len(t, decode[[]dto.SaleResponse](t, list), 1)

	bad := f.do(t, http.MethodGet, "/api/sales?status=cancelled", apphttp.RoleVendedor, nil)
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestHealth(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
