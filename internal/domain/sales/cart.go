package sales

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/inventory"
)

// CartLine selección del carrito. UnitPrice se captura al agregar y no cambia después.
type CartLine struct {
	LineID    string
	ItemID    string
	Kind      string // product | service
	VariantID string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal = Quantity * UnitPrice.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// IsProduct indica si la línea mueve inventario al completarse.
func (l CartLine) IsProduct() bool { return l.Kind == entity.ItemKindProduct }

// StockKey contador que descuenta la línea (talla o producto).
func (l CartLine) StockKey() entity.StockKey {
	return entity.StockKey{ProductID: l.ItemID, VariantID: l.VariantID}
}

// Summary resumen con precios del carrito.
type Summary struct {
	Lines    []CartLine
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Cart carrito en memoria de una sesión de POS. No es seguro para uso concurrente:
// cada sesión tiene el suyo y el stock se revalida al confirmar.
type Cart struct {
	lines    []*CartLine
	discount Discount
}

// NewCart crea un carrito vacío.
func NewCart() *Cart {
	return &Cart{}
}

// AddLine agrega una unidad del ítem (y talla). Si la combinación ya está en el carrito al
// mismo precio incrementa la cantidad; el total de unidades del contador no supera el
// stock conocido.
func (c *Cart) AddLine(item entity.CatalogItem, variantID string) (CartLine, error) {
	key, available, tracked, err := inventory.Resolve(item, variantID)
	if err != nil {
		return CartLine{}, err
	}
	if tracked && available <= 0 {
		return CartLine{}, domain.NewStockError(domain.ErrOutOfStock, key.ProductID, key.VariantID, 1, available)
	}
	if want := c.quantityOf(item.ID, key.VariantID) + 1; tracked && want > available {
		return CartLine{}, domain.NewStockError(domain.ErrInsufficientStock, key.ProductID, key.VariantID, want, available)
	}
	price := RoundMoney(item.UnitPrice)
	if existing := c.find(item.ID, key.VariantID, price); existing != nil {
		existing.Quantity++
		return *existing, nil
	}
	line := &CartLine{
		LineID:    uuid.New().String(),
		ItemID:    item.ID,
		Kind:      item.Kind,
		VariantID: key.VariantID,
		Name:      item.Name,
		Quantity:  1,
		UnitPrice: price,
	}
	c.lines = append(c.lines, line)
	return *line, nil
}

// AppendLine restaura una línea ya capturada (p. ej. desde una petición o desde los ítems
// de una cotización). Solo se fusiona con una línea del mismo ítem y talla si el precio
// unitario coincide; con otro precio queda como línea aparte. No valida stock: el commit
// lo revalida en vivo.
func (c *Cart) AppendLine(line CartLine) (CartLine, error) {
	if line.ItemID == "" || line.Quantity < 1 || line.UnitPrice.IsNegative() {
		return CartLine{}, domain.ErrInvalidInput
	}
	if line.Kind != entity.ItemKindProduct && line.Kind != entity.ItemKindService {
		return CartLine{}, domain.ErrInvalidInput
	}
	if line.Kind == entity.ItemKindService && line.VariantID != "" {
		return CartLine{}, domain.ErrInvalidInput
	}
	line.UnitPrice = RoundMoney(line.UnitPrice)
	if existing := c.find(line.ItemID, line.VariantID, line.UnitPrice); existing != nil {
		existing.Quantity += line.Quantity
		return *existing, nil
	}
	if line.LineID == "" {
		line.LineID = uuid.New().String()
	}
	c.lines = append(c.lines, &line)
	return line, nil
}

// UpdateQuantity suma delta a la cantidad de la línea; nunca baja de 1.
func (c *Cart) UpdateQuantity(lineID string, delta int) (CartLine, error) {
	for _, l := range c.lines {
		if l.LineID == lineID {
			l.Quantity += delta
			if l.Quantity < 1 {
				l.Quantity = 1
			}
			return *l, nil
		}
	}
	return CartLine{}, domain.ErrNotFound
}

// RemoveLine quita la línea del carrito.
func (c *Cart) RemoveLine(lineID string) error {
	for i, l := range c.lines {
		if l.LineID == lineID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// SetDiscount reemplaza la regla de descuento.
func (c *Cart) SetDiscount(d Discount) error {
	if err := d.Validate(); err != nil {
		return err
	}
	c.discount = d
	return nil
}

// Discount regla de descuento vigente.
func (c *Cart) Discount() Discount { return c.discount }

// Subtotal suma de cantidad * precio unitario.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// AppliedDiscount descuento en dinero acotado a [0, subtotal].
func (c *Cart) AppliedDiscount() decimal.Decimal {
	return c.discount.Applied(c.Subtotal())
}

// Total = subtotal - descuento aplicado (nunca negativo).
func (c *Cart) Total() decimal.Decimal {
	return c.Subtotal().Sub(c.AppliedDiscount())
}

// Lines copia de las líneas en orden de inserción.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	for i, l := range c.lines {
		out[i] = *l
	}
	return out
}

// IsEmpty indica si no hay líneas.
func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Summary resumen con precios (sin efectos).
func (c *Cart) Summary() Summary {
	subtotal := c.Subtotal()
	applied := c.discount.Applied(subtotal)
	return Summary{
		Lines:    c.Lines(),
		Subtotal: subtotal,
		Discount: applied,
		Total:    subtotal.Sub(applied),
	}
}

// Clone copia independiente del carrito; el coordinador trabaja sobre la copia
// para que el carrito del llamador quede intacto si el commit falla.
func (c *Cart) Clone() *Cart {
	out := &Cart{discount: c.discount, lines: make([]*CartLine, len(c.lines))}
	for i, l := range c.lines {
		cp := *l
		out.lines[i] = &cp
	}
	return out
}

func (c *Cart) find(itemID, variantID string, price decimal.Decimal) *CartLine {
	for _, l := range c.lines {
		if l.ItemID == itemID && l.VariantID == variantID && l.UnitPrice.Equal(price) {
			return l
		}
	}
	return nil
}

// quantityOf unidades del ítem y talla en el carrito, sumando todas sus líneas.
func (c *Cart) quantityOf(itemID, variantID string) int {
	n := 0
	for _, l := range c.lines {
		if l.ItemID == itemID && l.VariantID == variantID {
			n += l.Quantity
		}
	}
	return n
}
