package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ventas-pos/internal/application/catalog"
	"github.com/jhoicas/ventas-pos/internal/application/dto"
	appsales "github.com/jhoicas/ventas-pos/internal/application/sales"
	"github.com/jhoicas/ventas-pos/pkg/logger"
)

// IdempotencyHeader alternativa al campo idempotency_key del body.
const IdempotencyHeader = "Idempotency-Key"

// SaleHandler ventas y cotizaciones.
type SaleHandler struct {
	coord   *appsales.Coordinator
	catalog *catalog.CatalogUseCase
	receipt *appsales.ReceiptUseCase
	log     *logger.Logger
}

func NewSaleHandler(coord *appsales.Coordinator, catalogUC *catalog.CatalogUseCase, receipt *appsales.ReceiptUseCase, log *logger.Logger) *SaleHandler {
	return &SaleHandler{coord: coord, catalog: catalogUC, receipt: receipt, log: log}
}

// Preview godoc
// @Summary      Resumen con precios del carrito (no persiste)
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.PreviewRequest  true  "carrito"
// @Success      200   {object}  dto.CartSummaryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/sales/preview [post]
func (h *SaleHandler) Preview(c *fiber.Ctx) error {
	var in dto.PreviewRequest
	if e := bindBody(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	ctx := c.UserContext()
	cart, err := h.catalog.BuildCart(ctx, in.CartRequest)
	if err != nil {
		return respondError(c, h.log, err)
	}
	employeeID := in.EmployeeID
	if employeeID == "" {
		employeeID = GetEmployeeID(c)
	}
	summary, commission, err := h.coord.Preview(ctx, cart, employeeID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(appsales.ToSummaryResponse(summary, commission))
}

// Create godoc
// @Summary      Registrar venta o cotización
// @Description  status=completed descuenta stock y registra la comisión; status=quote no tiene efectos.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header  string               false  "clave de idempotencia"
// @Param        body             body    dto.CheckoutRequest  true   "carrito y estado"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if e := bindBody(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	ctx := c.UserContext()
	cart, err := h.catalog.BuildCart(ctx, in.CartRequest)
	if err != nil {
		return respondError(c, h.log, err)
	}
	detail, err := h.coord.Checkout(ctx, cart, h.meta(c, in, true))
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.afterStockChange(ctx, detail)
	return c.Status(fiber.StatusCreated).JSON(appsales.ToSaleResponse(detail.Sale, detail.Items))
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        status  query  string  false  "quote | completed"
// @Param        from    query  string  false  "YYYY-MM-DD"
// @Param        to      query  string  false  "YYYY-MM-DD"
// @Param        limit   query  int     false  "máximo 100"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {array}   dto.SaleResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	var in dto.SaleListRequest
	if e := bindQuery(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	filter, err := appsales.FilterFromRequest(in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	list, err := h.coord.ListSales(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		out = append(out, appsales.ToSaleResponse(s, nil))
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Detalle de una venta
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "id de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) Get(c *fiber.Ctx) error {
	detail, err := h.coord.GetSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(appsales.ToSaleResponse(detail.Sale, detail.Items))
}

// Update godoc
// @Summary      Editar venta o cotización (reverso + nuevo registro en una sola unidad)
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string               true  "id de la venta"
// @Param        body  body  dto.CheckoutRequest  true  "nuevo carrito"
// @Success      200   {object}  dto.SaleResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [put]
func (h *SaleHandler) Update(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if e := bindBody(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	ctx := c.UserContext()
	cart, err := h.catalog.BuildCart(ctx, in.CartRequest)
	if err != nil {
		return respondError(c, h.log, err)
	}
	detail, err := h.coord.EditSale(ctx, c.Params("id"), cart, h.meta(c, in, false))
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.catalog.Invalidate(ctx)
	return c.JSON(appsales.ToSaleResponse(detail.Sale, detail.Items))
}

// Complete godoc
// @Summary      Convertir cotización en venta
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "id de la cotización"
// @Success      200  {object}  dto.SaleResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/complete [post]
func (h *SaleHandler) Complete(c *fiber.Ctx) error {
	ctx := c.UserContext()
	detail, err := h.coord.CompleteQuote(ctx, c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.afterStockChange(ctx, detail)
	return c.JSON(appsales.ToSaleResponse(detail.Sale, detail.Items))
}

// Delete godoc
// @Summary      Eliminar venta (restaura stock; la comisión se conserva)
// @Tags         sales
// @Security     BearerAuth
// @Param        id   path  string  true  "id de la venta"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [delete]
func (h *SaleHandler) Delete(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if err := h.coord.DeleteSale(ctx, c.Params("id"), GetUserID(c)); err != nil {
		return respondError(c, h.log, err)
	}
	h.catalog.Invalidate(ctx)
	return c.SendStatus(fiber.StatusNoContent)
}

// PDF godoc
// @Summary      Comprobante o cotización en PDF
// @Tags         sales
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  string  true  "id de la venta"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/pdf [get]
func (h *SaleHandler) PDF(c *fiber.Ctx) error {
	out, filename, err := h.receipt.Document(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(out)
}

// meta arma los datos de la venta. En ventas nuevas el vendedor por defecto es el empleado
// del token; en ediciones lo que no venga en el cuerpo se toma de la venta original.
func (h *SaleHandler) meta(c *fiber.Ctx, in dto.CheckoutRequest, sellerFromToken bool) appsales.CheckoutMeta {
	employeeID := in.EmployeeID
	if employeeID == "" && sellerFromToken {
		employeeID = GetEmployeeID(c)
	}
	key := in.IdempotencyKey
	if key == "" {
		key = c.Get(IdempotencyHeader)
	}
	return appsales.CheckoutMeta{
		TargetStatus:   in.Status,
		ClientID:       in.ClientID,
		EmployeeID:     employeeID,
		PaymentMethod:  in.PaymentMethod,
		OperatorID:     GetUserID(c),
		IdempotencyKey: key,
	}
}

func (h *SaleHandler) afterStockChange(ctx context.Context, detail *appsales.SaleDetail) {
	if detail.Sale.IsCompleted() {
		h.catalog.Invalidate(ctx)
	}
}
