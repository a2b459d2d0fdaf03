package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ventas-pos/internal/application/dto"
	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/pkg/logger"
)

// respondError traduce errores de dominio a status y código. El orden importa:
// ErrNotFound envuelto en ErrReverseFailed sigue siendo 404.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	status, body := mapError(err)
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	}
	return c.Status(status).JSON(body)
}

func mapError(err error) (int, dto.ErrorResponse) {
	var stockErr *domain.StockError
	switch {
	case errors.Is(err, domain.ErrCompensationFailed):
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "RECONCILE", Message: "la operación falló y requiere conciliación manual"}
	case errors.As(err, &stockErr):
		code := "INSUFFICIENT_STOCK"
		if errors.Is(err, domain.ErrOutOfStock) {
			code = "OUT_OF_STOCK"
		}
		return fiber.StatusConflict, dto.ErrorResponse{
			Code:    code,
			Message: fmt.Sprintf("stock insuficiente: solicitado %d, disponible %d", stockErr.Requested, stockErr.Available),
		}
	case errors.Is(err, domain.ErrOutOfStock):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "OUT_OF_STOCK", Message: "sin stock"}
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"}
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"}
	case errors.Is(err, domain.ErrEmptyCart):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "EMPTY_CART", Message: "el carrito está vacío"}
	case errors.Is(err, domain.ErrVariantSelectionRequired):
		return fiber.StatusUnprocessableEntity, dto.ErrorResponse{Code: "VARIANT_REQUIRED", Message: "el producto requiere seleccionar talla"}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"}
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"}
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "EMAIL_EXISTS", Message: "el email ya está registrado"}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: "registro duplicado"}
	case errors.Is(err, domain.ErrReverseFailed):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "REVERSE_FAILED", Message: "no se pudo revertir la venta"}
	case errors.Is(err, domain.ErrCommitFailed):
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "COMMIT_FAILED", Message: "no se pudo registrar la venta"}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
	}
}
