package sales

import (
	"context"

	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

// TxRepos repositorios que escriben los protocolos de venta. Todos atados a la misma
// unidad de trabajo.
type TxRepos struct {
	Sales     repository.SaleRepository
	Stock     repository.StockRepository
	Movements repository.InventoryMovementRepository
	Ledger    repository.LedgerRepository
}

// TxRunner ejecuta fn como una sola unidad de trabajo: o se aplican todas sus escrituras
// o ninguna. Implementaciones: transacción PostgreSQL/SQLite, Store en memoria y
// CompensatingRunner para almacenamientos sin transacciones.
type TxRunner interface {
	RunSales(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error
}

// SaleLocker serializa editar/eliminar sobre una misma venta entre sesiones.
// unlock debe llamarse siempre que err sea nil.
type SaleLocker interface {
	Lock(ctx context.Context, saleID string) (unlock func(), err error)
}

// PDFGenerator genera el comprobante (venta) o la cotización en PDF.
type PDFGenerator interface {
	GenerateSalePDF(ctx context.Context, doc SaleDocument) ([]byte, error)
}
