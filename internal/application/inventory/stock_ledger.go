package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

// Motivos registrados en los movimientos generados por ventas.
const (
	ReasonSaleFormat     = "venta #%s"
	ReasonReversalFormat = "reverso de venta #%s"
)

// StockLedger aplica salidas y entradas de stock dentro de la unidad de trabajo del llamador.
// Cada cambio de contador queda emparejado con exactamente un movimiento.
type StockLedger struct{}

// NewStockLedger construye el servicio.
func NewStockLedger() *StockLedger {
	return &StockLedger{}
}

// DeductInTx descuenta qty del contador (talla o producto) leyendo el valor en vivo y registra
// un movimiento OUT que referencia la venta. Con stock insuficiente no modifica nada y devuelve
// *domain.StockError (errors.Is => domain.ErrInsufficientStock).
func (l *StockLedger) DeductInTx(
	ctx context.Context,
	stockRepo repository.StockRepository,
	movRepo repository.InventoryMovementRepository,
	key entity.StockKey,
	qty int,
	saleID, userID string,
	now time.Time,
) (*entity.InventoryMovement, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidInput
	}
	current, err := stockRepo.GetForUpdate(ctx, key)
	if err != nil {
		return nil, err
	}
	if current < qty {
		return nil, domain.NewStockError(domain.ErrInsufficientStock, key.ProductID, key.VariantID, qty, current)
	}
	after, err := stockRepo.Decrement(ctx, key, qty)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			// Otra sesión consumió el stock entre la lectura y el descuento.
			live, _ := stockRepo.Get(ctx, key)
			return nil, domain.NewStockError(domain.ErrInsufficientStock, key.ProductID, key.VariantID, qty, live)
		}
		return nil, err
	}
	mov := &entity.InventoryMovement{
		ProductID:   key.ProductID,
		VariantID:   key.VariantID,
		SaleID:      saleID,
		Type:        entity.MovementTypeOUT,
		Quantity:    qty,
		Reason:      fmt.Sprintf(ReasonSaleFormat, saleID),
		StockBefore: after + qty,
		StockAfter:  after,
		CreatedBy:   userID,
		CreatedAt:   now,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// RestoreInTx devuelve qty al contador en vivo (nunca a un valor guardado) y registra un
// movimiento IN "reverso de venta #id".
func (l *StockLedger) RestoreInTx(
	ctx context.Context,
	stockRepo repository.StockRepository,
	movRepo repository.InventoryMovementRepository,
	key entity.StockKey,
	qty int,
	saleID, userID string,
	now time.Time,
) (*entity.InventoryMovement, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if _, err := stockRepo.GetForUpdate(ctx, key); err != nil {
		return nil, err
	}
	after, err := stockRepo.Increment(ctx, key, qty)
	if err != nil {
		return nil, err
	}
	mov := &entity.InventoryMovement{
		ProductID:   key.ProductID,
		VariantID:   key.VariantID,
		SaleID:      saleID,
		Type:        entity.MovementTypeIN,
		Quantity:    qty,
		Reason:      fmt.Sprintf(ReasonReversalFormat, saleID),
		StockBefore: after - qty,
		StockAfter:  after,
		CreatedBy:   userID,
		CreatedAt:   now,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}
