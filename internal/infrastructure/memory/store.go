// Package memory implementa los puertos de persistencia en memoria del proceso.
// Sirve para pruebas y para el modo demo (STORE_DRIVER=memory).
//
// RunSales serializa las unidades de trabajo y restaura una copia del estado si fn falla,
// equivalente a una transacción. Al revertir solo se restauran los contadores de stock de
// los productos, no sus datos de catálogo. La búsqueda por clave de idempotencia espera a
// que termine la unidad en curso; el resto de lecturas fuera de RunSales puede ver
// escrituras aún no confirmadas.
package memory

import (
	"context"
	"sync"

	appsales "github.com/jhoicas/ventas-pos/internal/application/sales"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
)

var _ appsales.TxRunner = (*Store)(nil)

// Store estado completo en memoria.
type Store struct {
	txMu sync.Mutex // serializa RunSales
	mu   sync.Mutex // protege los mapas

	products  map[string]*entity.Product
	services  map[string]*entity.Service
	employees map[string]*entity.Employee
	customers map[string]*entity.Customer
	users     map[string]*entity.User
	sales     map[string]*entity.Sale
	items     map[string][]*entity.SaleItem // por sale_id
	movements []*entity.InventoryMovement
	ledger    []*entity.LedgerEntry
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{
		products:  make(map[string]*entity.Product),
		services:  make(map[string]*entity.Service),
		employees: make(map[string]*entity.Employee),
		customers: make(map[string]*entity.Customer),
		users:     make(map[string]*entity.User),
		sales:     make(map[string]*entity.Sale),
		items:     make(map[string][]*entity.SaleItem),
	}
}

// TxRepos repositorios de la unidad de trabajo de ventas atados a este Store.
func (s *Store) TxRepos() appsales.TxRepos {
	return appsales.TxRepos{
		Sales:     &SaleRepo{s: s, inTx: true},
		Stock:     s.Stock(),
		Movements: s.Movements(),
		Ledger:    s.Ledger(),
	}
}

// RunSales ejecuta fn de forma exclusiva; si devuelve error el estado vuelve a como estaba.
func (s *Store) RunSales(ctx context.Context, fn func(ctx context.Context, repos appsales.TxRepos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(ctx, s.TxRepos()); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type state struct {
	stock     map[entity.StockKey]int
	sales     map[string]*entity.Sale
	items     map[string][]*entity.SaleItem
	movements []*entity.InventoryMovement
	ledger    []*entity.LedgerEntry
}

// snapshot copia lo que una unidad de trabajo de ventas puede modificar.
func (s *Store) snapshot() state {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := state{
		stock:     make(map[entity.StockKey]int, len(s.products)),
		sales:     make(map[string]*entity.Sale, len(s.sales)),
		items:     make(map[string][]*entity.SaleItem, len(s.items)),
		movements: append([]*entity.InventoryMovement(nil), s.movements...),
		ledger:    append([]*entity.LedgerEntry(nil), s.ledger...),
	}
	for id, p := range s.products {
		st.stock[entity.StockKey{ProductID: id}] = p.StockQuantity
		for _, v := range p.Variants {
			st.stock[entity.StockKey{ProductID: id, VariantID: v.ID}] = v.StockQuantity
		}
	}
	for id, sale := range s.sales {
		cp := *sale
		st.sales[id] = &cp
	}
	for id, list := range s.items {
		st.items[id] = cloneItems(list)
	}
	return st
}

func (s *Store) restore(st state) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.products {
		if n, ok := st.stock[entity.StockKey{ProductID: id}]; ok {
			p.StockQuantity = n
		}
		for i := range p.Variants {
			if n, ok := st.stock[entity.StockKey{ProductID: id, VariantID: p.Variants[i].ID}]; ok {
				p.Variants[i].StockQuantity = n
			}
		}
	}
	s.sales = st.sales
	s.items = st.items
	s.movements = st.movements
	s.ledger = st.ledger
}

func cloneProduct(p *entity.Product) *entity.Product {
	cp := *p
	cp.Variants = append([]entity.Variant(nil), p.Variants...)
	return &cp
}

func cloneItems(list []*entity.SaleItem) []*entity.SaleItem {
	out := make([]*entity.SaleItem, len(list))
	for i, it := range list {
		cp := *it
		out[i] = &cp
	}
	return out
}
