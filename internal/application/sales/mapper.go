package sales

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pos/internal/application/dto"
	appinventory "github.com/jhoicas/ventas-pos/internal/application/inventory"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
	domsales "github.com/jhoicas/ventas-pos/internal/domain/sales"
)

// ToSaleResponse mapea la venta (y sus ítems, si vienen) a DTO.
func ToSaleResponse(sale *entity.Sale, items []*entity.SaleItem) dto.SaleResponse {
	out := dto.SaleResponse{
		ID:               sale.ID,
		Status:           sale.Status,
		ClientID:         sale.ClientID,
		EmployeeID:       sale.EmployeeID,
		PaymentMethod:    sale.PaymentMethod,
		DiscountType:     sale.DiscountType,
		DiscountValue:    sale.DiscountValue,
		Subtotal:         sale.Subtotal,
		Discount:         sale.Discount,
		TotalAmount:      sale.TotalAmount,
		CommissionAmount: sale.CommissionAmount,
		CreatedBy:        sale.CreatedBy,
		CreatedAt:        sale.CreatedAt,
	}
	if len(items) > 0 {
		out.Items = make([]dto.SaleItemResponse, 0, len(items))
		for _, it := range items {
			out.Items = append(out.Items, dto.SaleItemResponse{
				ID:        it.ID,
				ProductID: it.ProductID,
				ServiceID: it.ServiceID,
				VariantID: it.VariantID,
				Name:      it.Name,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
				Subtotal:  it.Subtotal,
			})
		}
	}
	return out
}

// ToSummaryResponse mapea el resumen del carrito con la comisión estimada.
func ToSummaryResponse(s domsales.Summary, commission decimal.Decimal) dto.CartSummaryResponse {
	lines := make([]dto.CartLineResponse, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, dto.CartLineResponse{
			LineID:    l.LineID,
			ItemID:    l.ItemID,
			Kind:      l.Kind,
			VariantID: l.VariantID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal(),
		})
	}
	return dto.CartSummaryResponse{
		Lines:      lines,
		Subtotal:   s.Subtotal,
		Discount:   s.Discount,
		Total:      s.Total,
		Commission: commission,
	}
}

// FilterFromRequest convierte los query params del listado en filtro de repositorio.
func FilterFromRequest(in dto.SaleListRequest) (repository.SaleFilter, error) {
	from, to, err := appinventory.ParseDateRange(in.From, in.To)
	if err != nil {
		return repository.SaleFilter{}, err
	}
	in.DefaultPage()
	return repository.SaleFilter{
		Status: in.Status,
		From:   from,
		To:     to,
		Limit:  in.Limit,
		Offset: in.Offset,
	}, nil
}
