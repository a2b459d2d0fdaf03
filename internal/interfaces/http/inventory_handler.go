package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ventas-pos/internal/application/dto"
	"github.com/jhoicas/ventas-pos/internal/application/inventory"
	"github.com/jhoicas/ventas-pos/pkg/logger"
)

// InventoryHandler consulta la auditoría de stock.
type InventoryHandler struct {
	uc  *inventory.MovementsUseCase
	log *logger.Logger
}

func NewInventoryHandler(uc *inventory.MovementsUseCase, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{uc: uc, log: log}
}

// ListMovements godoc
// @Summary      Movimientos de inventario por producto o por venta
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        product_id  query  string  false  "producto"
// @Param        sale_id     query  string  false  "venta"
// @Param        from        query  string  false  "YYYY-MM-DD"
// @Param        to          query  string  false  "YYYY-MM-DD"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var in dto.MovementListRequest
	if e := bindQuery(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
