package entity

import (
	"math"
	"slices"

	"marketplace/internal/errors"

	"github.com/google/uuid"
)

// MaxLineQuantity caps the quantity of a single cart line.
const MaxLineQuantity int64 = 10_000

// ErrAmountOverflow is returned when a line amount or total does not fit in int64.
var ErrAmountOverflow = errors.New("amount exceeds the representable range")

// CartLine is a single catalog item held in a cart, priced when it was last added.
type CartLine struct {
	CatalogItemID uuid.UUID
	Name          string
	Quantity      int64
	UnitPrice     int64
}

// Amount returns UnitPrice × Quantity. Callers that persist money use CheckedAmount.
func (l CartLine) Amount() int64 {
	return l.UnitPrice * l.Quantity
}

// CheckedAmount returns UnitPrice × Quantity or ErrAmountOverflow.
func (l CartLine) CheckedAmount() (int64, error) {
	return mulAmount(l.UnitPrice, l.Quantity)
}

// Cart is the per-account mutable list of lines. Its total is always derived from the lines.
type Cart struct {
	AccountID uuid.UUID
	Lines     []CartLine
}

// NewCart returns an empty cart for the account.
func NewCart(accountID uuid.UUID) *Cart {
	return &Cart{AccountID: accountID}
}

// Total returns Σ(unit price × quantity).
func (c *Cart) Total() int64 {
	var total int64
	for _, line := range c.Lines {
		total += line.Amount()
	}

	return total
}

// CheckedTotal returns Σ(unit price × quantity) or ErrAmountOverflow.
func (c *Cart) CheckedTotal() (int64, error) {
	var total int64
	for _, line := range c.Lines {
		amount, err := line.CheckedAmount()
		if err != nil {
			return 0, err
		}
		if total, err = addAmount(total, amount); err != nil {
			return 0, err
		}
	}

	return total, nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Upsert replaces the line for the same catalog item, or appends a new one.
func (c *Cart) Upsert(line CartLine) {
	if i := c.indexOf(line.CatalogItemID); i >= 0 {
		c.Lines[i] = line

		return
	}
	c.Lines = append(c.Lines, line)
}

// Remove drops the line for the catalog item and reports whether it existed.
func (c *Cart) Remove(itemID uuid.UUID) bool {
	i := c.indexOf(itemID)
	if i < 0 {
		return false
	}
	c.Lines = slices.Delete(c.Lines, i, i+1)

	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = nil
}

// Line returns the line for the catalog item.
func (c *Cart) Line(itemID uuid.UUID) (CartLine, bool) {
	i := c.indexOf(itemID)
	if i < 0 {
		return CartLine{}, false
	}

	return c.Lines[i], true
}

func (c *Cart) indexOf(itemID uuid.UUID) int {
	return slices.IndexFunc(c.Lines, func(l CartLine) bool {
		return l.CatalogItemID == itemID
	})
}

func mulAmount(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, ErrAmountOverflow
	}
	p := a * b
	if p/b != a {
		return 0, ErrAmountOverflow
	}

	return p, nil
}

func addAmount(a, b int64) (int64, error) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, ErrAmountOverflow
	}

	return s, nil
}
