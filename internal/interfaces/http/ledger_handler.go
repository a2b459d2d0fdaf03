package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ventas-pos/internal/application/dto"
	"github.com/jhoicas/ventas-pos/internal/application/ledger"
	"github.com/jhoicas/ventas-pos/pkg/logger"
)

// LedgerHandler consulta el libro financiero.
type LedgerHandler struct {
	uc  *ledger.LedgerUseCase
	log *logger.Logger
}

func NewLedgerHandler(uc *ledger.LedgerUseCase, log *logger.Logger) *LedgerHandler {
	return &LedgerHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Asientos del libro (comisiones)
// @Tags         ledger
// @Produce      json
// @Security     BearerAuth
// @Param        from  query  string  false  "YYYY-MM-DD"
// @Param        to    query  string  false  "YYYY-MM-DD"
// @Success      200  {array}  dto.LedgerEntryResponse
// @Router       /api/ledger [get]
func (h *LedgerHandler) List(c *fiber.Ctx) error {
	var in dto.LedgerListRequest
	if e := bindQuery(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
