// Package ledger expone consultas de solo lectura del libro financiero.
// Los asientos de comisión los escribe únicamente el coordinador de ventas.
package ledger

import (
	"context"

	"github.com/jhoicas/ventas-pos/internal/application/dto"
	appinventory "github.com/jhoicas/ventas-pos/internal/application/inventory"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

// LedgerUseCase listado de asientos.
type LedgerUseCase struct {
	repo repository.LedgerRepository
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(repo repository.LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{repo: repo}
}

// List asientos entre from y to (YYYY-MM-DD, ambos opcionales), más recientes primero.
func (uc *LedgerUseCase) List(ctx context.Context, in dto.LedgerListRequest) ([]dto.LedgerEntryResponse, error) {
	from, to, err := appinventory.ParseDateRange(in.From, in.To)
	if err != nil {
		return nil, err
	}
	in.DefaultPage()
	list, err := uc.repo.List(ctx, from, to, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LedgerEntryResponse, 0, len(list))
	for _, e := range list {
		out = append(out, ToEntryResponse(e))
	}
	return out, nil
}

// ToEntryResponse mapea la entidad a DTO.
func ToEntryResponse(e *entity.LedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:          e.ID,
		Type:        e.Type,
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date,
		SaleID:      e.SaleID,
		EmployeeID:  e.EmployeeID,
		CreatedAt:   e.CreatedAt,
	}
}
