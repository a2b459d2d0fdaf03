package sqlite

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pos/internal/domain/entity"
)

// Filas con tags db para sqlx. decimal.Decimal implementa Scanner/Valuer y se guarda como TEXT.

type productRow struct {
	ID            string          `db:"id"`
	SKU           string          `db:"sku"`
	Name          string          `db:"name"`
	Description   string          `db:"description"`
	Price         decimal.Decimal `db:"price"`
	ImageRef      string          `db:"image_ref"`
	StockQuantity int             `db:"stock_quantity"`
	Active        bool            `db:"active"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

func (r productRow) entity() *entity.Product {
	return &entity.Product{
		ID: r.ID, SKU: r.SKU, Name: r.Name, Description: r.Description, Price: r.Price,
		ImageRef: r.ImageRef, StockQuantity: r.StockQuantity, Active: r.Active,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type variantRow struct {
	ID            string `db:"id"`
	ProductID     string `db:"product_id"`
	Size          string `db:"size"`
	StockQuantity int    `db:"stock_quantity"`
}

type serviceRow struct {
	ID          string          `db:"id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
	ImageRef    string          `db:"image_ref"`
	Active      bool            `db:"active"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (r serviceRow) entity() *entity.Service {
	return &entity.Service{
		ID: r.ID, Name: r.Name, Description: r.Description, Price: r.Price, ImageRef: r.ImageRef,
		Active: r.Active, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type saleRow struct {
	ID               string          `db:"id"`
	Status           string          `db:"status"`
	ClientID         string          `db:"client_id"`
	EmployeeID       string          `db:"employee_id"`
	PaymentMethod    string          `db:"payment_method"`
	DiscountType     string          `db:"discount_type"`
	DiscountValue    decimal.Decimal `db:"discount_value"`
	Subtotal         decimal.Decimal `db:"subtotal"`
	Discount         decimal.Decimal `db:"discount"`
	TotalAmount      decimal.Decimal `db:"total_amount"`
	CommissionAmount decimal.Decimal `db:"commission_amount"`
	IdempotencyKey   string          `db:"idempotency_key"`
	CreatedBy        string          `db:"created_by"`
	CreatedAt        time.Time       `db:"created_at"`
}

func (r saleRow) entity() *entity.Sale {
	return &entity.Sale{
		ID: r.ID, Status: r.Status, ClientID: r.ClientID, EmployeeID: r.EmployeeID,
		PaymentMethod: r.PaymentMethod, DiscountType: r.DiscountType, DiscountValue: r.DiscountValue,
		Subtotal: r.Subtotal, Discount: r.Discount, TotalAmount: r.TotalAmount,
		CommissionAmount: r.CommissionAmount, IdempotencyKey: r.IdempotencyKey,
		CreatedBy: r.CreatedBy, CreatedAt: r.CreatedAt,
	}
}

type saleItemRow struct {
	ID        string          `db:"id"`
	SaleID    string          `db:"sale_id"`
	ProductID string          `db:"product_id"`
	ServiceID string          `db:"service_id"`
	VariantID string          `db:"variant_id"`
	Name      string          `db:"name"`
	Quantity  int             `db:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price"`
	Subtotal  decimal.Decimal `db:"subtotal"`
}

func (r saleItemRow) entity() *entity.SaleItem {
	return &entity.SaleItem{
		ID: r.ID, SaleID: r.SaleID, ProductID: r.ProductID, ServiceID: r.ServiceID, VariantID: r.VariantID,
		Name: r.Name, Quantity: r.Quantity, UnitPrice: r.UnitPrice, Subtotal: r.Subtotal,
	}
}

type movementRow struct {
	ID          string    `db:"id"`
	ProductID   string    `db:"product_id"`
	VariantID   string    `db:"variant_id"`
	SaleID      string    `db:"sale_id"`
	Type        string    `db:"type"`
	Quantity    int       `db:"quantity"`
	Reason      string    `db:"reason"`
	StockBefore int       `db:"stock_before"`
	StockAfter  int       `db:"stock_after"`
	CreatedBy   string    `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r movementRow) entity() *entity.InventoryMovement {
	return &entity.InventoryMovement{
		ID: r.ID, ProductID: r.ProductID, VariantID: r.VariantID, SaleID: r.SaleID, Type: r.Type,
		Quantity: r.Quantity, Reason: r.Reason, StockBefore: r.StockBefore, StockAfter: r.StockAfter,
		CreatedBy: r.CreatedBy, CreatedAt: r.CreatedAt,
	}
}

type ledgerRow struct {
	ID          string          `db:"id"`
	Type        string          `db:"type"`
	Amount      decimal.Decimal `db:"amount"`
	Category    string          `db:"category"`
	Description string          `db:"description"`
	Date        time.Time       `db:"date"`
	SaleID      string          `db:"sale_id"`
	EmployeeID  string          `db:"employee_id"`
	CreatedBy   string          `db:"created_by"`
	CreatedAt   time.Time       `db:"created_at"`
}

func (r ledgerRow) entity() *entity.LedgerEntry {
	return &entity.LedgerEntry{
		ID: r.ID, Type: r.Type, Amount: r.Amount, Category: r.Category, Description: r.Description,
		Date: r.Date, SaleID: r.SaleID, EmployeeID: r.EmployeeID, CreatedBy: r.CreatedBy, CreatedAt: r.CreatedAt,
	}
}

type userRow struct {
	ID           string    `db:"id"`
	EmployeeID   string    `db:"employee_id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Name         string    `db:"name"`
	Role         string    `db:"role"`
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r userRow) entity() *entity.User {
	return &entity.User{
		ID: r.ID, EmployeeID: r.EmployeeID, Email: r.Email, PasswordHash: r.PasswordHash, Name: r.Name,
		Role: r.Role, Status: r.Status, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type employeeRow struct {
	ID                string          `db:"id"`
	Name              string          `db:"name"`
	CommissionPercent decimal.Decimal `db:"commission_percent"`
	Status            string          `db:"status"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

type customerRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	TaxID     string    `db:"tax_id"`
	Email     string    `db:"email"`
	Phone     string    `db:"phone"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
