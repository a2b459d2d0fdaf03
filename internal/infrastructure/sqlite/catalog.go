package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

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

func stamp(created, updated *time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = *created
	}
}

// ── productos ────────────────────────────────────────────────────────────────

// ProductRepo productos y tallas.
type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// Create inserta producto y tallas en una transacción.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	stamp(&p.CreatedAt, &p.UpdatedAt)
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO products(id, sku, name, description, price, image_ref, stock_quantity, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.SKU, p.Name, p.Description, p.Price, p.ImageRef, p.StockQuantity, p.Active,
		ts(p.CreatedAt), ts(p.UpdatedAt))
	if err != nil {
		return mapWriteErr("insert product", err)
	}
	for i := range p.Variants {
		v := &p.Variants[i]
		if v.ID == "" {
			v.ID = uuid.New().String()
		}
		v.ProductID = p.ID
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO product_variants(id, product_id, size, stock_quantity) VALUES (?, ?, ?, ?)`,
			v.ID, v.ProductID, v.Size, v.StockQuantity); err != nil {
			return mapWriteErr("insert variant", err)
		}
	}
	return tx.Commit()
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var row productRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM products WHERE id = ?`, id); err != nil {
		return nil, mapReadErr("get product", err)
	}
	p := row.entity()
	variants, err := r.variants(ctx, []string{p.ID})
	if err != nil {
		return nil, err
	}
	p.Variants = variants[p.ID]
	return p, nil
}

func (r *ProductRepo) ListActive(ctx context.Context) ([]*entity.Product, error) {
	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM products WHERE active = 1 ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	variants, err := r.variants(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Product, len(rows))
	for i, row := range rows {
		out[i] = row.entity()
		out[i].Variants = variants[row.ID]
	}
	return out, nil
}

func (r *ProductRepo) variants(ctx context.Context, productIDs []string) (map[string][]entity.Variant, error) {
	query, args, err := sqlx.In(`
		SELECT id, product_id, size, stock_quantity FROM product_variants
		WHERE product_id IN (?) ORDER BY product_id, size`, productIDs)
	if err != nil {
		return nil, err
	}
	var rows []variantRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	out := make(map[string][]entity.Variant)
	for _, v := range rows {
		out[v.ProductID] = append(out[v.ProductID], entity.Variant{
			ID: v.ID, ProductID: v.ProductID, Size: v.Size, StockQuantity: v.StockQuantity,
		})
	}
	return out, nil
}

// ── servicios ────────────────────────────────────────────────────────────────

// ServiceRepo servicios vendibles.
type ServiceRepo struct{ db *sqlx.DB }

func NewServiceRepo(db *sqlx.DB) *ServiceRepo { return &ServiceRepo{db: db} }

func (r *ServiceRepo) Create(ctx context.Context, s *entity.Service) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	stamp(&s.CreatedAt, &s.UpdatedAt)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO services(id, name, description, price, image_ref, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.Description, s.Price, s.ImageRef, s.Active, ts(s.CreatedAt), ts(s.UpdatedAt))
	return mapWriteErr("insert service", err)
}

func (r *ServiceRepo) GetByID(ctx context.Context, id string) (*entity.Service, error) {
	var row serviceRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM services WHERE id = ?`, id); err != nil {
		return nil, mapReadErr("get service", err)
	}
	return row.entity(), nil
}

func (r *ServiceRepo) ListActive(ctx context.Context) ([]*entity.Service, error) {
	var rows []serviceRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM services WHERE active = 1 ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	out := make([]*entity.Service, len(rows))
	for i, row := range rows {
		out[i] = row.entity()
	}
	return out, nil
}

// ── vendedores, clientes, operadores ─────────────────────────────────────────

// EmployeeRepo vendedores.
type EmployeeRepo struct{ db *sqlx.DB }

func NewEmployeeRepo(db *sqlx.DB) *EmployeeRepo { return &EmployeeRepo{db: db} }

func (r *EmployeeRepo) Create(ctx context.Context, e *entity.Employee) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Status == "" {
		e.Status = "active"
	}
	stamp(&e.CreatedAt, &e.UpdatedAt)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO employees(id, name, commission_percent, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.CommissionPercent, e.Status, ts(e.CreatedAt), ts(e.UpdatedAt))
	return mapWriteErr("insert employee", err)
}

func (r *EmployeeRepo) GetByID(ctx context.Context, id string) (*entity.Employee, error) {
	var row employeeRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM employees WHERE id = ?`, id); err != nil {
		return nil, mapReadErr("get employee", err)
	}
	return &entity.Employee{
		ID: row.ID, Name: row.Name, CommissionPercent: row.CommissionPercent, Status: row.Status,
		CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt,
	}, nil
}

// CustomerRepo clientes.
type CustomerRepo struct{ db *sqlx.DB }

func NewCustomerRepo(db *sqlx.DB) *CustomerRepo { return &CustomerRepo{db: db} }

func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	stamp(&c.CreatedAt, &c.UpdatedAt)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO customers(id, name, tax_id, email, phone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.TaxID, c.Email, c.Phone, ts(c.CreatedAt), ts(c.UpdatedAt))
	return mapWriteErr("insert customer", err)
}

func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	var row customerRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM customers WHERE id = ?`, id); err != nil {
		return nil, mapReadErr("get customer", err)
	}
	return &entity.Customer{
		ID: row.ID, Name: row.Name, TaxID: row.TaxID, Email: row.Email, Phone: row.Phone,
		CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt,
	}, nil
}

// UserRepo operadores del POS.
type UserRepo struct{ db *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	stamp(&u.CreatedAt, &u.UpdatedAt)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users(id, employee_id, email, password_hash, name, role, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.EmployeeID, u.Email, u.PasswordHash, u.Name, u.Role, u.Status, ts(u.CreatedAt), ts(u.UpdatedAt))
	if err != nil && isUniqueViolation(err) {
		return domain.ErrEmailAlreadyExists
	}
	return mapWriteErr("insert user", err)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT * FROM users WHERE id = ?`, id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT * FROM users WHERE LOWER(email) = LOWER(?)`, email)
}

func (r *UserRepo) getOne(ctx context.Context, query, arg string) (*entity.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return row.entity(), nil
}

// ── errores ──────────────────────────────────────────────────────────────────

func mapReadErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func mapWriteErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return domain.ErrDuplicate
	case isCheckViolation(err):
		return domain.ErrInvalidInput
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
