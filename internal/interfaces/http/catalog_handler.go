package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ventas-pos/internal/application/catalog"
	"github.com/jhoicas/ventas-pos/pkg/logger"
)

// CatalogHandler foto del catálogo para el POS.
type CatalogHandler struct {
	uc  *catalog.CatalogUseCase
	log *logger.Logger
}

func NewCatalogHandler(uc *catalog.CatalogUseCase, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{uc: uc, log: log}
}

// Snapshot godoc
// @Summary      Catálogo activo (productos con tallas y servicios)
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.CatalogResponse
// @Router       /api/catalog [get]
func (h *CatalogHandler) Snapshot(c *fiber.Ctx) error {
	out, err := h.uc.Snapshot(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
