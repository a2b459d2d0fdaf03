package sales

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
	"github.com/jhoicas/ventas-pos/pkg/logger"
)

// CompensationReasonPrefix antecede el motivo de los asientos y movimientos de anulación.
const CompensationReasonPrefix = "anulación: "

// CompensationCategory categoría del contra-asiento de un asiento de categoría cat. Es
// distinta de la original para no chocar con el índice único (sale_id, category).
func CompensationCategory(cat string) string { return cat + " (anulación)" }

var _ TxRunner = (*CompensatingRunner)(nil)

// CompensatingRunner unidad de trabajo para almacenamientos sin transacciones.
// Cada escritura exitosa deja en un diario su acción inversa; si fn falla se ejecutan en
// orden inverso. Movimientos y asientos son append-only, así que su inversa es un
// contra-registro "anulación: ...".
type CompensatingRunner struct {
	repos TxRepos
	log   *logger.Logger
	now   func() time.Time
}

// NewCompensatingRunner envuelve los repositorios del almacenamiento.
func NewCompensatingRunner(repos TxRepos, log *logger.Logger) *CompensatingRunner {
	if log == nil {
		log = logger.Nop()
	}
	return &CompensatingRunner{repos: repos, log: log.Named("compensation"), now: time.Now}
}

// WithClock reemplaza el reloj de los contra-registros (tests).
func (r *CompensatingRunner) WithClock(now func() time.Time) *CompensatingRunner {
	r.now = now
	return r
}

// RunSales ejecuta fn; si falla y alguna inversa también falla devuelve un error que
// satisface errors.Is(err, domain.ErrCompensationFailed) además de la causa original.
func (r *CompensatingRunner) RunSales(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error {
	j := &journal{}
	repos := TxRepos{
		Sales:     &journalSales{SaleRepository: r.repos.Sales, j: j},
		Stock:     &journalStock{StockRepository: r.repos.Stock, j: j},
		Movements: &journalMovements{InventoryMovementRepository: r.repos.Movements, j: j, now: r.now},
		Ledger:    &journalLedger{LedgerRepository: r.repos.Ledger, j: j, now: r.now},
	}
	err := fn(ctx, repos)
	if err == nil {
		return nil
	}

	// La compensación corre aunque el contexto del llamador ya esté cancelado.
	undoCtx := context.WithoutCancel(ctx)
	failures := j.rollback(undoCtx)
	if len(failures) == 0 {
		return err
	}
	for _, f := range failures {
		r.log.Error().
			Err(f.err).
			Str("sale_id", f.saleID).
			Str("step", f.step).
			Bool("reconcile", true).
			Msg("compensación fallida")
	}
	errs := make([]error, 0, len(failures))
	for _, f := range failures {
		errs = append(errs, fmt.Errorf("%s: %w", f.step, f.err))
	}
	return errors.Join(err, fmt.Errorf("%w: %w", domain.ErrCompensationFailed, errors.Join(errs...)))
}

type undo struct {
	step   string
	saleID string
	fn     func(ctx context.Context) error
}

type undoFailure struct {
	step   string
	saleID string
	err    error
}

type journal struct {
	mu    sync.Mutex
	undos []undo
}

func (j *journal) push(step, saleID string, fn func(ctx context.Context) error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.undos = append(j.undos, undo{step: step, saleID: saleID, fn: fn})
}

// rollback ejecuta todas las inversas (la última primero) aunque alguna falle.
func (j *journal) rollback(ctx context.Context) []undoFailure {
	j.mu.Lock()
	undos := j.undos
	j.undos = nil
	j.mu.Unlock()

	var failures []undoFailure
	for i := len(undos) - 1; i >= 0; i-- {
		u := undos[i]
		if err := u.fn(ctx); err != nil {
			failures = append(failures, undoFailure{step: u.step, saleID: u.saleID, err: err})
		}
	}
	return failures
}

// ── decoradores ───────────────────────────────────────────────────────────────

type journalSales struct {
	repository.SaleRepository
	j *journal
}

func (s *journalSales) Create(ctx context.Context, sale *entity.Sale) error {
	if err := s.SaleRepository.Create(ctx, sale); err != nil {
		return err
	}
	id := sale.ID
	s.j.push("sale.create", id, func(ctx context.Context) error {
		err := s.SaleRepository.Delete(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	})
	return nil
}

// CreateItem no registra inversa: borrar la cabecera elimina los ítems en cascada.
func (s *journalSales) CreateItem(ctx context.Context, item *entity.SaleItem) error {
	return s.SaleRepository.CreateItem(ctx, item)
}

func (s *journalSales) Delete(ctx context.Context, id string) error {
	sale, err := s.SaleRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	items, err := s.SaleRepository.ListItems(ctx, id)
	if err != nil {
		return err
	}
	if err := s.SaleRepository.Delete(ctx, id); err != nil {
		return err
	}
	s.j.push("sale.delete", id, func(ctx context.Context) error {
		if err := s.SaleRepository.Create(ctx, sale); err != nil {
			return err
		}
		for _, it := range items {
			if err := s.SaleRepository.CreateItem(ctx, it); err != nil {
				return err
			}
		}
		return nil
	})
	return nil
}

type journalStock struct {
	repository.StockRepository
	j *journal
}

func (s *journalStock) Decrement(ctx context.Context, key entity.StockKey, qty int) (int, error) {
	after, err := s.StockRepository.Decrement(ctx, key, qty)
	if err != nil {
		return after, err
	}
	s.j.push("stock.decrement", "", func(ctx context.Context) error {
		_, err := s.StockRepository.Increment(ctx, key, qty)
		return err
	})
	return after, nil
}

func (s *journalStock) Increment(ctx context.Context, key entity.StockKey, qty int) (int, error) {
	after, err := s.StockRepository.Increment(ctx, key, qty)
	if err != nil {
		return after, err
	}
	s.j.push("stock.increment", "", func(ctx context.Context) error {
		// Falla si otra sesión ya vendió las unidades devueltas.
		_, err := s.StockRepository.Decrement(ctx, key, qty)
		return err
	})
	return after, nil
}

type journalMovements struct {
	repository.InventoryMovementRepository
	j   *journal
	now func() time.Time
}

func (m *journalMovements) Create(ctx context.Context, mov *entity.InventoryMovement) error {
	if err := m.InventoryMovementRepository.Create(ctx, mov); err != nil {
		return err
	}
	orig := *mov
	m.j.push("movement.create", orig.SaleID, func(ctx context.Context) error {
		counter := &entity.InventoryMovement{
			ID:          uuid.New().String(),
			ProductID:   orig.ProductID,
			VariantID:   orig.VariantID,
			SaleID:      orig.SaleID,
			Type:        oppositeMovement(orig.Type),
			Quantity:    orig.Quantity,
			Reason:      CompensationReasonPrefix + orig.Reason,
			StockBefore: orig.StockAfter,
			StockAfter:  orig.StockBefore,
			CreatedBy:   orig.CreatedBy,
			CreatedAt:   m.now(),
		}
		return m.InventoryMovementRepository.Create(ctx, counter)
	})
	return nil
}

type journalLedger struct {
	repository.LedgerRepository
	j   *journal
	now func() time.Time
}

func (l *journalLedger) Create(ctx context.Context, entry *entity.LedgerEntry) error {
	if err := l.LedgerRepository.Create(ctx, entry); err != nil {
		return err
	}
	orig := *entry
	l.j.push("ledger.create", orig.SaleID, func(ctx context.Context) error {
		return l.LedgerRepository.Create(ctx, &entity.LedgerEntry{
			ID:          uuid.New().String(),
			Type:        oppositeLedger(orig.Type),
			Amount:      orig.Amount,
			Category:    CompensationCategory(orig.Category),
			Description: CompensationReasonPrefix + orig.Description,
			Date:        orig.Date,
			SaleID:      orig.SaleID,
			EmployeeID:  orig.EmployeeID,
			CreatedBy:   orig.CreatedBy,
			CreatedAt:   l.now(),
		})
	})
	return nil
}

func oppositeMovement(t string) string {
	if t == entity.MovementTypeOUT {
		return entity.MovementTypeIN
	}
	return entity.MovementTypeOUT
}

func oppositeLedger(t string) string {
	if t == entity.LedgerTypeExpense {
		return entity.LedgerTypeIncome
	}
	return entity.LedgerTypeExpense
}
