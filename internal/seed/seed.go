// Package seed carga un catálogo inicial (vendedores, clientes, productos, servicios y
// operadores) desde un archivo JSON. Acepta UTF-8 o ISO-8859-1.
//
// Con STORE_DRIVER=postgres los id deben ser UUID; memory y sqlite aceptan cualquier texto.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/ventas-pos/internal/application/dto"
	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
	"github.com/jhoicas/ventas-pos/pkg/logger"
)

// Encodings admitidos.
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "iso-8859-1"
)

// File formato del archivo de seed.
type File struct {
	Employees []Employee `json:"employees" validate:"dive"`
	Customers []Customer `json:"customers" validate:"dive"`
	Products  []Product  `json:"products" validate:"dive"`
	Services  []Service  `json:"services" validate:"dive"`
	Users     []User     `json:"users" validate:"dive"`
}

type Employee struct {
	ID                string          `json:"id" validate:"required"`
	Name              string          `json:"name" validate:"required"`
	CommissionPercent decimal.Decimal `json:"commission_percent"`
	Status            string          `json:"status" validate:"omitempty,oneof=active inactive"`
}

type Customer struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name" validate:"required"`
	TaxID string `json:"tax_id"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

type Product struct {
	ID          string          `json:"id" validate:"required"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageRef    string          `json:"image_ref"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Inactive    bool            `json:"inactive"`
	Variants    []Variant       `json:"variants" validate:"dive"`
}

type Variant struct {
	ID    string `json:"id" validate:"required"`
	Size  string `json:"size" validate:"required"`
	Stock int    `json:"stock" validate:"gte=0"`
}

type Service struct {
	ID          string          `json:"id" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageRef    string          `json:"image_ref"`
	Inactive    bool            `json:"inactive"`
}

type User struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	Name       string `json:"name"`
	Role       string `json:"role" validate:"omitempty,oneof=admin vendedor"`
	EmployeeID string `json:"employee_id"`
}

// UserRegistrar alta de operadores; la implementa auth.AuthUseCase (hash bcrypt incluido).
type UserRegistrar interface {
	RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error)
}

// Targets repositorios destino del seed.
type Targets struct {
	Employees repository.EmployeeRepository
	Customers repository.CustomerRepository
	Products  repository.ProductRepository
	Services  repository.ServiceRepository
	Users     UserRegistrar
}

// Result conteo de registros creados y omitidos (ya existían).
type Result struct {
	Created int
	Skipped int
}

var validate = validator.New()

// Decode lee y valida un archivo de seed en el encoding indicado.
func Decode(r io.Reader, encoding string) (*File, error) {
	switch strings.ToLower(encoding) {
	case "", EncodingUTF8, "utf8":
	case EncodingLatin1, "latin1", "iso8859-1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	default:
		return nil, fmt.Errorf("%w: encoding %q no soportado", domain.ErrInvalidInput, encoding)
	}
	var f File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: seed: %v", domain.ErrInvalidInput, err)
	}
	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("%w: seed: %v", domain.ErrInvalidInput, err)
	}
	hundred := decimal.NewFromInt(100)
	for _, e := range f.Employees {
		if e.CommissionPercent.IsNegative() || e.CommissionPercent.GreaterThan(hundred) {
			return nil, fmt.Errorf("%w: comisión fuera de 0..100 para %s", domain.ErrInvalidInput, e.ID)
		}
	}
	for _, p := range f.Products {
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("%w: precio negativo en producto %s", domain.ErrInvalidInput, p.ID)
		}
	}
	for _, s := range f.Services {
		if s.Price.IsNegative() {
			return nil, fmt.Errorf("%w: precio negativo en servicio %s", domain.ErrInvalidInput, s.ID)
		}
	}
	return &f, nil
}

// LoadFile abre path y lo decodifica.
func LoadFile(path, encoding string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abrir seed: %w", err)
	}
	defer fh.Close()
	return Decode(fh, encoding)
}

// Apply crea los registros en orden de dependencia. Los ya existentes se omiten, así
// correr el seed dos veces no falla.
func Apply(ctx context.Context, f *File, t Targets, log *logger.Logger) (Result, error) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("seed")
	var res Result
	count := func(kind, id string, err error) error {
		switch {
		case err == nil:
			res.Created++
			return nil
		case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrEmailAlreadyExists):
			res.Skipped++
			log.Debug().Str("kind", kind).Str("id", id).Msg("ya existe, se omite")
			return nil
		default:
			return fmt.Errorf("seed %s %s: %w", kind, id, err)
		}
	}

	for _, e := range f.Employees {
		status := e.Status
		if status == "" {
			status = "active"
		}
		err := t.Employees.Create(ctx, &entity.Employee{
			ID: e.ID, Name: e.Name, CommissionPercent: e.CommissionPercent, Status: status,
		})
		if err := count("employee", e.ID, err); err != nil {
			return res, err
		}
	}
	for _, c := range f.Customers {
		err := t.Customers.Create(ctx, &entity.Customer{
			ID: c.ID, Name: c.Name, TaxID: c.TaxID, Email: c.Email, Phone: c.Phone,
		})
		if err := count("customer", c.ID, err); err != nil {
			return res, err
		}
	}
	for _, p := range f.Products {
		if err := count("product", p.ID, t.Products.Create(ctx, p.entity())); err != nil {
			return res, err
		}
	}
	for _, s := range f.Services {
		err := t.Services.Create(ctx, &entity.Service{
			ID: s.ID, Name: s.Name, Description: s.Description, Price: s.Price,
			ImageRef: s.ImageRef, Active: !s.Inactive,
		})
		if err := count("service", s.ID, err); err != nil {
			return res, err
		}
	}
	if t.Users != nil {
		for _, u := range f.Users {
			_, err := t.Users.RegisterUser(ctx, dto.RegisterRequest{
				Email: u.Email, Password: u.Password, Name: u.Name, Role: u.Role, EmployeeID: u.EmployeeID,
			})
			if err := count("user", u.Email, err); err != nil {
				return res, err
			}
		}
	}
	log.Info().Int("created", res.Created).Int("skipped", res.Skipped).Msg("seed aplicado")
	return res, nil
}

func (p Product) entity() *entity.Product {
	out := &entity.Product{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageRef:    p.ImageRef,
		Active:      !p.Inactive,
	}
	if len(p.Variants) == 0 {
		out.StockQuantity = p.Stock
		return out
	}
	for _, v := range p.Variants {
		out.Variants = append(out.Variants, entity.Variant{ID: v.ID, ProductID: p.ID, Size: v.Size, StockQuantity: v.Stock})
	}
	return out
}
