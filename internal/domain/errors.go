package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// Carrito y stock.
	ErrVariantSelectionRequired = errors.New("el producto requiere seleccionar una talla")
	ErrOutOfStock               = errors.New("producto agotado")
	ErrInsufficientStock        = errors.New("stock insuficiente")
	ErrEmptyCart                = errors.New("el carrito está vacío")

	// Protocolos de venta.
	ErrCommitFailed       = errors.New("no se pudo registrar la venta")
	ErrReverseFailed      = errors.New("no se pudo revertir la venta original")
	ErrCompensationFailed = errors.New("la compensación falló: requiere conciliación manual")
)

// StockError detalla un faltante de stock para un producto (y talla, si aplica).
// Unwrap devuelve ErrOutOfStock o ErrInsufficientStock para usar errors.Is.
type StockError struct {
	Err       error
	ProductID string
	VariantID string
	Requested int
	Available int
}

// NewStockError construye el error; sentinel debe ser ErrOutOfStock o ErrInsufficientStock.
func NewStockError(sentinel error, productID, variantID string, requested, available int) *StockError {
	return &StockError{
		Err:       sentinel,
		ProductID: productID,
		VariantID: variantID,
		Requested: requested,
		Available: available,
	}
}

func (e *StockError) Error() string {
	if e.VariantID != "" {
		return fmt.Sprintf("%s: producto %s talla %s (solicitado %d, disponible %d)",
			e.Err, e.ProductID, e.VariantID, e.Requested, e.Available)
	}
	return fmt.Sprintf("%s: producto %s (solicitado %d, disponible %d)",
		e.Err, e.ProductID, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error { return e.Err }
