package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/ventas-pos/internal/application/dto"
	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

// MovementsUseCase consultas de solo lectura sobre el registro de movimientos.
type MovementsUseCase struct {
	movRepo repository.InventoryMovementRepository
}

// NewMovementsUseCase construye el caso de uso.
func NewMovementsUseCase(movRepo repository.InventoryMovementRepository) *MovementsUseCase {
	return &MovementsUseCase{movRepo: movRepo}
}

// List devuelve movimientos por venta o por producto (uno de los dos es obligatorio).
func (uc *MovementsUseCase) List(ctx context.Context, in dto.MovementListRequest) ([]dto.MovementResponse, error) {
	var (
		list []*entity.InventoryMovement
		err  error
	)
	switch {
	case in.SaleID != "":
		list, err = uc.movRepo.ListBySale(ctx, in.SaleID)
	case in.ProductID != "":
		from, to, perr := ParseDateRange(in.From, in.To)
		if perr != nil {
			return nil, perr
		}
		in.DefaultPage()
		list, err = uc.movRepo.ListByProduct(ctx, in.ProductID, from, to, in.Limit, in.Offset)
	default:
		return nil, domain.ErrInvalidInput
	}
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToMovementResponse(m))
	}
	return out, nil
}

// ToMovementResponse mapea la entidad a DTO.
func ToMovementResponse(m *entity.InventoryMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:          m.ID,
		ProductID:   m.ProductID,
		VariantID:   m.VariantID,
		SaleID:      m.SaleID,
		Type:        m.Type,
		Quantity:    m.Quantity,
		Reason:      m.Reason,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}

// ParseDateRange convierte fechas YYYY-MM-DD; "to" se extiende hasta el final del día.
func ParseDateRange(fromStr, toStr string) (from, to *time.Time, err error) {
	if fromStr != "" {
		t, perr := time.Parse(time.DateOnly, fromStr)
		if perr != nil {
			return nil, nil, domain.ErrInvalidInput
		}
		from = &t
	}
	if toStr != "" {
		t, perr := time.Parse(time.DateOnly, toStr)
		if perr != nil {
			return nil, nil, domain.ErrInvalidInput
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, domain.ErrInvalidInput
	}
	return from, to, nil
}
