package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

var (
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.ServiceRepository  = (*ServiceRepo)(nil)
	_ repository.EmployeeRepository = (*EmployeeRepo)(nil)
	_ repository.CustomerRepository = (*CustomerRepo)(nil)
	_ repository.UserRepository     = (*UserRepo)(nil)
)

// ProductRepo productos y tallas.
type ProductRepo struct{ s *Store }

// Products repositorio de productos.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	for i := range p.Variants {
		if p.Variants[i].ID == "" {
			p.Variants[i].ID = uuid.New().String()
		}
		p.Variants[i].ProductID = p.ID
		if p.Variants[i].StockQuantity < 0 {
			return domain.ErrInvalidInput
		}
	}
	if p.StockQuantity < 0 {
		return domain.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneProduct(p), nil
}

func (r *ProductRepo) ListActive(_ context.Context) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if p.Active {
			out = append(out, cloneProduct(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ServiceRepo servicios vendibles.
type ServiceRepo struct{ s *Store }

// Services repositorio de servicios.
func (s *Store) Services() *ServiceRepo { return &ServiceRepo{s: s} }

func (r *ServiceRepo) Create(_ context.Context, svc *entity.Service) error {
	if svc.ID == "" {
		svc.ID = uuid.New().String()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.services[svc.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *svc
	r.s.services[svc.ID] = &cp
	return nil
}

func (r *ServiceRepo) GetByID(_ context.Context, id string) (*entity.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	svc, ok := r.s.services[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *svc
	return &cp, nil
}

func (r *ServiceRepo) ListActive(_ context.Context) ([]*entity.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Service, 0, len(r.s.services))
	for _, svc := range r.s.services {
		if svc.Active {
			cp := *svc
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// EmployeeRepo vendedores.
type EmployeeRepo struct{ s *Store }

// Employees repositorio de vendedores.
func (s *Store) Employees() *EmployeeRepo { return &EmployeeRepo{s: s} }

func (r *EmployeeRepo) Create(_ context.Context, e *entity.Employee) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.employees[e.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *e
	r.s.employees[e.ID] = &cp
	return nil
}

func (r *EmployeeRepo) GetByID(_ context.Context, id string) (*entity.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

// CustomerRepo clientes.
type CustomerRepo struct{ s *Store }

// Customers repositorio de clientes.
func (s *Store) Customers() *CustomerRepo { return &CustomerRepo{s: s} }

func (r *CustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.customers[c.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *c
	r.s.customers[c.ID] = &cp
	return nil
}

func (r *CustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// UserRepo operadores.
type UserRepo struct{ s *Store }

// Users repositorio de operadores.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}
