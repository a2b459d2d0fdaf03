package seed_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/ventas-pos/internal/application/auth"
	"github.com/jhoicas/ventas-pos/internal/application/dto"
	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/infrastructure/memory"
	"github.com/jhoicas/ventas-pos/internal/seed"
)

const catalogJSON = `{
  "employees": [{"id": "ana", "name": "Ana Muñoz", "commission_percent": "10"}],
  "customers": [{"id": "c1", "name": "Cliente Uno"}],
  "products": [
    {"id": "cap", "sku": "CAP-1", "name": "Gorra", "price": "10", "stock": 2},
    {"id": "shirt", "name": "Camiseta", "price": 25.5, "variants": [{"id": "shirt-s", "size": "S", "stock": 1}]}
  ],
  "services": [{"id": "wash", "name": "Lavado", "price": "5"}],
  "users": [{"email": "admin@pos.test", "password": "secreto123", "role": "admin", "employee_id": "ana"}]
}`

func targets(store *memory.Store) seed.Targets {
	authUC := auth.NewAuthUseCase(store.Users(), store.Employees(), auth.JWTConfig{Secret: "s", ExpMinutes: 5})
	return seed.Targets{
		Employees: store.Employees(),
		Customers: store.Customers(),
		Products:  store.Products(),
		Services:  store.Services(),
		Users:     authUC,
	}
}

func TestApply_CreatesAndIsRepeatable(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	f, err := seed.Decode(strings.NewReader(catalogJSON), seed.EncodingUTF8)
	require.NoError(t, err)

	res, err := seed.Apply(ctx, f, targets(store), nil)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Created)
	assert.Zero(t, res.Skipped)

	stock, err := store.Stock().Get(ctx, entity.StockKey{ProductID: "cap"})
	require.NoError(t, err)
	assert.Equal(t, 2, stock)
	stock, err = store.Stock().Get(ctx, entity.StockKey{ProductID: "shirt", VariantID: "shirt-s"})
	require.NoError(t, err)
	assert.Equal(t, 1, stock)

	res, err = seed.Apply(ctx, f, targets(store), nil)
	require.NoError(t, err)
	assert.Zero(t, res.Created)
	assert.Equal(t, 6, res.Skipped)

	authUC := auth.NewAuthUseCase(store.Users(), store.Employees(), auth.JWTConfig{Secret: "s", ExpMinutes: 5})
	login, err := authUC.Login(ctx, dto.LoginRequest{Email: "admin@pos.test", Password: "secreto123"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
}

func TestDecode_Latin1(t *testing.T) {
	encoded, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(catalogJSON))
	require.NoError(t, err)

	f, err := seed.Decode(bytes.NewReader(encoded), seed.EncodingLatin1)
	require.NoError(t, err)
	require.Len(t, f.Employees, 1)
	assert.Equal(t, "Ana Muñoz", f.Employees[0].Name)
}

func TestDecode_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown field":  `{"widgets": []}`,
		"missing name":   `{"products": [{"id": "x", "price": "1"}]}`,
		"negative stock": `{"products": [{"id": "x", "name": "X", "price": "1", "stock": -1}]}`,
		"negative price": `{"services": [{"id": "s", "name": "S", "price": "-1"}]}`,
		"bad email":      `{"users": [{"email": "nope", "password": "12345678"}]}`,
		"commission":     `{"employees": [{"id": "e", "name": "E", "commission_percent": "120"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := seed.Decode(strings.NewReader(body), "")
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	_, err := seed.Decode(strings.NewReader(`{}`), "ebcdic")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
