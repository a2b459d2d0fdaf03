package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appinventory "github.com/jhoicas/ventas-pos/internal/application/inventory"
	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
	domsales "github.com/jhoicas/ventas-pos/internal/domain/sales"
	"github.com/jhoicas/ventas-pos/pkg/logger"
)

// Config parámetros del coordinador.
type Config struct {
	CommissionCategory   string // categoría del asiento de comisión
	DefaultPaymentMethod string
}

// CheckoutMeta datos de la venta que no están en el carrito.
type CheckoutMeta struct {
	TargetStatus   string // quote | completed
	ClientID       string
	EmployeeID     string // vendedor; vacío = sin comisión
	PaymentMethod  string
	OperatorID     string // usuario autenticado que confirma
	IdempotencyKey string // reintentos con la misma clave devuelven la venta ya creada
}

// SaleDetail venta con sus ítems.
type SaleDetail struct {
	Sale  *entity.Sale
	Items []*entity.SaleItem
}

// Coordinator orquesta carrito → venta + stock + libro financiero como una sola unidad.
// Es el único escritor de ventas, ítems, movimientos y asientos de comisión.
type Coordinator struct {
	tx           TxRunner
	saleRepo     repository.SaleRepository
	employeeRepo repository.EmployeeRepository
	customerRepo repository.CustomerRepository
	stockLedger  *appinventory.StockLedger
	locker       SaleLocker
	log          *logger.Logger
	cfg          Config
	now          func() time.Time
}

// NewCoordinator construye el coordinador. saleRepo se usa solo para lecturas fuera de la
// unidad de trabajo; si locker es nil se usa un LocalLocker.
func NewCoordinator(
	tx TxRunner,
	saleRepo repository.SaleRepository,
	employeeRepo repository.EmployeeRepository,
	customerRepo repository.CustomerRepository,
	locker SaleLocker,
	log *logger.Logger,
	cfg Config,
) *Coordinator {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if log == nil {
		log = logger.Nop()
	}
	if cfg.CommissionCategory == "" {
		cfg.CommissionCategory = "Commission"
	}
	if cfg.DefaultPaymentMethod == "" {
		cfg.DefaultPaymentMethod = "cash"
	}
	return &Coordinator{
		tx:           tx,
		saleRepo:     saleRepo,
		employeeRepo: employeeRepo,
		customerRepo: customerRepo,
		stockLedger:  appinventory.NewStockLedger(),
		locker:       locker,
		log:          log.Named("sales"),
		cfg:          cfg,
		now:          time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *Coordinator) WithClock(now func() time.Time) *Coordinator {
	uc.now = now
	return uc
}

// ── Commit ────────────────────────────────────────────────────────────────────

// Checkout confirma el carrito como cotización o venta completada.
//
// Retorna:
//   - domain.ErrEmptyCart si el carrito no tiene líneas.
//   - *domain.StockError (domain.ErrInsufficientStock) si el stock en vivo no alcanza.
//   - domain.ErrCommitFailed si el almacenamiento falla; nada queda escrito.
//   - domain.ErrCompensationFailed si además no se pudo deshacer (requiere conciliación).
//
// El carrito del llamador nunca se modifica.
func (uc *Coordinator) Checkout(ctx context.Context, cart *domsales.Cart, meta CheckoutMeta) (*SaleDetail, error) {
	if cart == nil || cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}
	if err := validateStatus(meta.TargetStatus); err != nil {
		return nil, err
	}
	if detail, ok, err := uc.existingByKey(ctx, meta.IdempotencyKey); err != nil || ok {
		return detail, err
	}
	seller, err := uc.prepare(ctx, meta)
	if err != nil {
		return nil, err
	}

	snapshot := cart.Clone()
	var detail *SaleDetail
	err = uc.tx.RunSales(ctx, func(ctx context.Context, repos TxRepos) error {
		d, err := uc.commitInTx(ctx, repos, snapshot, meta, seller)
		if err != nil {
			return err
		}
		detail = d
		return nil
	})
	if err != nil {
		if detail, ok := uc.duplicateKey(ctx, err, meta.IdempotencyKey); ok {
			return detail, nil
		}
		uc.log.Warn().Err(err).Str("status", meta.TargetStatus).Msg("commit de venta revertido")
		return nil, commitError(err)
	}

	uc.log.Info().
		Str("sale_id", detail.Sale.ID).
		Str("status", detail.Sale.Status).
		Str("total", detail.Sale.TotalAmount.StringFixed(2)).
		Str("commission", detail.Sale.CommissionAmount.StringFixed(2)).
		Msg("venta registrada")
	return detail, nil
}

// commitInTx crea cabecera, ítems y, si la venta queda completada, descuenta stock y
// registra la comisión. Siempre genera un ID nuevo.
func (uc *Coordinator) commitInTx(
	ctx context.Context,
	repos TxRepos,
	cart *domsales.Cart,
	meta CheckoutMeta,
	seller *entity.Employee,
) (*SaleDetail, error) {
	now := uc.now()
	summary := cart.Summary()
	discount := cart.Discount()

	sale := &entity.Sale{
		ID:               uuid.New().String(),
		Status:           meta.TargetStatus,
		ClientID:         meta.ClientID,
		PaymentMethod:    meta.PaymentMethod,
		DiscountType:     discount.Type,
		DiscountValue:    discount.Value,
		Subtotal:         summary.Subtotal,
		Discount:         summary.Discount,
		TotalAmount:      summary.Total,
		CommissionAmount: domsales.CommissionFor(seller, summary.Total),
		IdempotencyKey:   meta.IdempotencyKey,
		CreatedBy:        meta.OperatorID,
		CreatedAt:        now,
	}
	if seller != nil {
		sale.EmployeeID = seller.ID
	}
	if sale.PaymentMethod == "" {
		sale.PaymentMethod = uc.cfg.DefaultPaymentMethod
	}
	if err := repos.Sales.Create(ctx, sale); err != nil {
		return nil, err
	}

	items := make([]*entity.SaleItem, 0, len(summary.Lines))
	for _, line := range summary.Lines {
		item := &entity.SaleItem{
			ID:        uuid.New().String(),
			SaleID:    sale.ID,
			VariantID: line.VariantID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal(),
		}
		if line.IsProduct() {
			item.ProductID = line.ItemID
		} else {
			item.ServiceID = line.ItemID
		}
		if err := repos.Sales.CreateItem(ctx, item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if sale.IsCompleted() {
		for _, item := range productItemsInLockOrder(items) {
			if _, err := uc.stockLedger.DeductInTx(ctx, repos.Stock, repos.Movements,
				item.StockKey(), item.Quantity, sale.ID, meta.OperatorID, now); err != nil {
				return nil, err
			}
		}
		if err := uc.postCommission(ctx, repos.Ledger, sale, seller, now); err != nil {
			return nil, err
		}
	}
	return &SaleDetail{Sale: sale, Items: items}, nil
}

// postCommission registra el gasto de comisión una sola vez por venta.
func (uc *Coordinator) postCommission(
	ctx context.Context,
	ledger repository.LedgerRepository,
	sale *entity.Sale,
	seller *entity.Employee,
	now time.Time,
) error {
	if seller == nil || !sale.CommissionAmount.IsPositive() {
		return nil
	}
	exists, err := ledger.ExistsForSale(ctx, sale.ID, uc.cfg.CommissionCategory)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return ledger.Create(ctx, &entity.LedgerEntry{
		ID:          uuid.New().String(),
		Type:        entity.LedgerTypeExpense,
		Amount:      sale.CommissionAmount,
		Category:    uc.cfg.CommissionCategory,
		Description: fmt.Sprintf("Comisión %s - venta #%s", seller.Name, sale.ID),
		Date:        startOfDay(now),
		SaleID:      sale.ID,
		EmployeeID:  seller.ID,
		CreatedBy:   sale.CreatedBy,
		CreatedAt:   now,
	})
}

// ── Reverse / delete ──────────────────────────────────────────────────────────

// DeleteSale cancela la venta: si estaba completada devuelve el stock (movimientos IN) y
// elimina cabecera e ítems. La comisión ya registrada no se revierte.
func (uc *Coordinator) DeleteSale(ctx context.Context, saleID, operatorID string) error {
	unlock, err := uc.locker.Lock(ctx, saleID)
	if err != nil {
		return err
	}
	defer unlock()

	var deleted *SaleDetail
	err = uc.tx.RunSales(ctx, func(ctx context.Context, repos TxRepos) error {
		d, err := uc.reverseInTx(ctx, repos, saleID, operatorID)
		deleted = d
		return err
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("sale_id", saleID).Msg("eliminación de venta abortada")
		return reverseError(err)
	}
	uc.log.Info().Str("sale_id", saleID).Str("status", deleted.Sale.Status).Msg("venta eliminada")
	return nil
}

// reverseInTx deshace los efectos de una venta y la elimina (executeDelete).
func (uc *Coordinator) reverseInTx(ctx context.Context, repos TxRepos, saleID, operatorID string) (*SaleDetail, error) {
	sale, err := repos.Sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	items, err := repos.Sales.ListItems(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale.IsCompleted() {
		now := uc.now()
		for _, item := range productItemsInLockOrder(items) {
			if _, err := uc.stockLedger.RestoreInTx(ctx, repos.Stock, repos.Movements,
				item.StockKey(), item.Quantity, sale.ID, operatorID, now); err != nil {
				return nil, err
			}
		}
	}
	if err := repos.Sales.Delete(ctx, sale.ID); err != nil {
		return nil, err
	}
	return &SaleDetail{Sale: sale, Items: items}, nil
}

// ── Safe edit ─────────────────────────────────────────────────────────────────

// EditSale reemplaza una venta confirmada por el carrito nuevo: revierte la original y
// confirma la nueva (con otro ID) en la misma unidad de trabajo. Si cualquiera de las dos
// fases falla la venta original queda intacta.
//
// Cliente, vendedor y medio de pago vacíos en meta se heredan de la venta original.
//
// Retorna domain.ErrReverseFailed (envolviendo la causa, p. ej. domain.ErrNotFound) si falla
// la fase de reverso, y los mismos errores de Checkout si falla la fase de commit.
func (uc *Coordinator) EditSale(ctx context.Context, saleID string, cart *domsales.Cart, meta CheckoutMeta) (*SaleDetail, error) {
	if cart == nil || cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}
	if err := validateStatus(meta.TargetStatus); err != nil {
		return nil, err
	}
	// Reusar la clave de la venta original no es un reintento de esta edición.
	if detail, ok, err := uc.existingByKey(ctx, meta.IdempotencyKey); err != nil || (ok && detail.Sale.ID != saleID) {
		return detail, err
	}

	unlock, err := uc.locker.Lock(ctx, saleID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	original, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, reverseError(err)
	}
	meta = inheritMeta(meta, original)
	seller, err := uc.prepare(ctx, meta)
	if err != nil {
		return nil, err
	}

	snapshot := cart.Clone()
	var detail *SaleDetail
	err = uc.tx.RunSales(ctx, func(ctx context.Context, repos TxRepos) error {
		if _, err := uc.reverseInTx(ctx, repos, saleID, meta.OperatorID); err != nil {
			return &reversePhaseError{err: err}
		}
		d, err := uc.commitInTx(ctx, repos, snapshot, meta, seller)
		if err != nil {
			return err
		}
		detail = d
		return nil
	})
	if err != nil {
		if detail, ok := uc.duplicateKey(ctx, err, meta.IdempotencyKey); ok {
			return detail, nil
		}
		uc.log.Warn().Err(err).Str("sale_id", saleID).Msg("edición de venta revertida")
		var rp *reversePhaseError
		if errors.As(err, &rp) && !errors.Is(err, domain.ErrCompensationFailed) {
			return nil, reverseError(rp.err)
		}
		return nil, commitError(err)
	}

	uc.log.Info().
		Str("old_sale_id", saleID).
		Str("sale_id", detail.Sale.ID).
		Str("status", detail.Sale.Status).
		Msg("venta editada")
	return detail, nil
}

// CompleteQuote convierte una cotización en venta completada con sus mismos ítems,
// descuento, cliente y vendedor (protocolo de edición con estado completed).
func (uc *Coordinator) CompleteQuote(ctx context.Context, saleID, operatorID string) (*SaleDetail, error) {
	sale, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale.IsCompleted() {
		return nil, domain.ErrConflict
	}
	items, err := uc.saleRepo.ListItems(ctx, saleID)
	if err != nil {
		return nil, err
	}
	cart, err := CartFromSale(sale, items)
	if err != nil {
		return nil, err
	}
	return uc.EditSale(ctx, saleID, cart, CheckoutMeta{
		TargetStatus:  entity.SaleStatusCompleted,
		ClientID:      sale.ClientID,
		EmployeeID:    sale.EmployeeID,
		PaymentMethod: sale.PaymentMethod,
		OperatorID:    operatorID,
	})
}

// CartFromSale reconstruye el carrito de una venta guardada (precios capturados incluidos).
func CartFromSale(sale *entity.Sale, items []*entity.SaleItem) (*domsales.Cart, error) {
	cart := domsales.NewCart()
	for _, it := range items {
		line := domsales.CartLine{
			VariantID: it.VariantID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
		if it.IsProduct() {
			line.ItemID, line.Kind = it.ProductID, entity.ItemKindProduct
		} else {
			line.ItemID, line.Kind = it.ServiceID, entity.ItemKindService
		}
		if _, err := cart.AppendLine(line); err != nil {
			return nil, err
		}
	}
	if err := cart.SetDiscount(domsales.Discount{Type: sale.DiscountType, Value: sale.DiscountValue}); err != nil {
		return nil, err
	}
	return cart, nil
}

// ── Lecturas ──────────────────────────────────────────────────────────────────

// GetSale devuelve la venta con sus ítems.
func (uc *Coordinator) GetSale(ctx context.Context, saleID string) (*SaleDetail, error) {
	sale, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	items, err := uc.saleRepo.ListItems(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return &SaleDetail{Sale: sale, Items: items}, nil
}

// ListSales lista cabeceras según el filtro.
func (uc *Coordinator) ListSales(ctx context.Context, filter repository.SaleFilter) ([]*entity.Sale, error) {
	return uc.saleRepo.List(ctx, filter)
}

// Preview resumen con precios y comisión estimada, sin efectos.
func (uc *Coordinator) Preview(ctx context.Context, cart *domsales.Cart, employeeID string) (domsales.Summary, decimal.Decimal, error) {
	if cart == nil {
		return domsales.Summary{}, decimal.Zero, domain.ErrEmptyCart
	}
	summary := cart.Summary()
	if employeeID == "" {
		return summary, decimal.Zero, nil
	}
	seller, err := uc.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return domsales.Summary{}, decimal.Zero, err
	}
	return summary, domsales.CommissionFor(seller, summary.Total), nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

// prepare valida cliente y vendedor fuera de la unidad de trabajo (solo lectura).
func (uc *Coordinator) prepare(ctx context.Context, meta CheckoutMeta) (*entity.Employee, error) {
	if meta.ClientID != "" {
		if _, err := uc.customerRepo.GetByID(ctx, meta.ClientID); err != nil {
			return nil, err
		}
	}
	if meta.EmployeeID == "" {
		return nil, nil
	}
	return uc.employeeRepo.GetByID(ctx, meta.EmployeeID)
}

// inheritMeta completa lo que la edición no trae con los datos de la venta original.
func inheritMeta(meta CheckoutMeta, original *entity.Sale) CheckoutMeta {
	if meta.ClientID == "" {
		meta.ClientID = original.ClientID
	}
	if meta.EmployeeID == "" {
		meta.EmployeeID = original.EmployeeID
	}
	if meta.PaymentMethod == "" {
		meta.PaymentMethod = original.PaymentMethod
	}
	return meta
}

func (uc *Coordinator) existingByKey(ctx context.Context, key string) (*SaleDetail, bool, error) {
	if key == "" {
		return nil, false, nil
	}
	sale, err := uc.saleRepo.GetByIdempotencyKey(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	items, err := uc.saleRepo.ListItems(ctx, sale.ID)
	if err != nil {
		return nil, false, err
	}
	uc.log.Info().Str("sale_id", sale.ID).Str("idempotency_key", key).Msg("reintento: venta ya registrada")
	return &SaleDetail{Sale: sale, Items: items}, true, nil
}

// duplicateKey resuelve la carrera de dos reintentos con la misma clave: el perdedor
// devuelve la venta del ganador.
func (uc *Coordinator) duplicateKey(ctx context.Context, err error, key string) (*SaleDetail, bool) {
	if key == "" || !errors.Is(err, domain.ErrDuplicate) || errors.Is(err, domain.ErrCompensationFailed) {
		return nil, false
	}
	detail, ok, lookupErr := uc.existingByKey(ctx, key)
	if lookupErr != nil || !ok {
		return nil, false
	}
	return detail, true
}

type reversePhaseError struct{ err error }

func (e *reversePhaseError) Error() string { return "reverso: " + e.err.Error() }
func (e *reversePhaseError) Unwrap() error { return e.err }

func commitError(err error) error {
	if errors.Is(err, domain.ErrCompensationFailed) ||
		errors.Is(err, domain.ErrInsufficientStock) ||
		errors.Is(err, domain.ErrOutOfStock) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrCommitFailed, err)
}

func reverseError(err error) error {
	if errors.Is(err, domain.ErrCompensationFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrReverseFailed, err)
}

func validateStatus(status string) error {
	if status != entity.SaleStatusQuote && status != entity.SaleStatusCompleted {
		return domain.ErrInvalidInput
	}
	return nil
}

// productItemsInLockOrder ordena por contador para que dos commits concurrentes
// bloqueen filas en el mismo orden.
func productItemsInLockOrder(items []*entity.SaleItem) []*entity.SaleItem {
	out := make([]*entity.SaleItem, 0, len(items))
	for _, it := range items {
		if it.IsProduct() {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].VariantID < out[j].VariantID
	})
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
