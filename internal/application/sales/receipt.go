package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

// Títulos del documento según el estado de la venta.
const (
	TitleQuote   = "COTIZACIÓN"
	TitleReceipt = "COMPROBANTE DE VENTA"
)

// SaleDocument datos que necesita el generador de PDF.
type SaleDocument struct {
	StoreName string
	Title     string
	Sale      *entity.Sale
	Items     []*entity.SaleItem
	Customer  *entity.Customer // nil si la venta no tiene cliente
	Seller    *entity.Employee // nil si no hubo vendedor
}

// ReceiptUseCase genera el comprobante o la cotización en PDF.
type ReceiptUseCase struct {
	saleRepo     repository.SaleRepository
	customerRepo repository.CustomerRepository
	employeeRepo repository.EmployeeRepository
	generator    PDFGenerator
	storeName    string
}

// NewReceiptUseCase construye el caso de uso inyectando todas sus dependencias.
func NewReceiptUseCase(
	saleRepo repository.SaleRepository,
	customerRepo repository.CustomerRepository,
	employeeRepo repository.EmployeeRepository,
	generator PDFGenerator,
	storeName string,
) *ReceiptUseCase {
	return &ReceiptUseCase{
		saleRepo:     saleRepo,
		customerRepo: customerRepo,
		employeeRepo: employeeRepo,
		generator:    generator,
		storeName:    storeName,
	}
}

// Document recupera la venta y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil) si todo sale bien.
//   - domain.ErrNotFound        si la venta no existe.
func (uc *ReceiptUseCase) Document(ctx context.Context, saleID string) (pdfBytes []byte, filename string, err error) {
	sale, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener venta: %w", err)
	}
	items, err := uc.saleRepo.ListItems(ctx, saleID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener ítems: %w", err)
	}

	doc := SaleDocument{
		StoreName: uc.storeName,
		Title:     TitleReceipt,
		Sale:      sale,
		Items:     items,
	}
	prefix := "venta"
	if !sale.IsCompleted() {
		doc.Title = TitleQuote
		prefix = "cotizacion"
	}

	// Cliente y vendedor son opcionales; si fueron borrados el documento sale sin ellos.
	if sale.ClientID != "" {
		customer, cErr := uc.customerRepo.GetByID(ctx, sale.ClientID)
		if cErr != nil && !errors.Is(cErr, domain.ErrNotFound) {
			return nil, "", fmt.Errorf("pdf: obtener cliente: %w", cErr)
		}
		doc.Customer = customer
	}
	if sale.EmployeeID != "" {
		seller, sErr := uc.employeeRepo.GetByID(ctx, sale.EmployeeID)
		if sErr != nil && !errors.Is(sErr, domain.ErrNotFound) {
			return nil, "", fmt.Errorf("pdf: obtener vendedor: %w", sErr)
		}
		doc.Seller = seller
	}

	pdfBytes, err = uc.generator.GenerateSalePDF(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("%s_%s.pdf", prefix, shortID(sale.ID)), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
