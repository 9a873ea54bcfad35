// Package pos holds the point-of-sale checkout core: the in-progress cart
// with its derived totals, and the submitter that turns a cart into a
// persisted sale.
//
// All currency amounts are integer cents. Percent amounts (discount, tax)
// are rounded half-up to whole cents when applied.
package pos

import (
	"math"
	"sync/atomic"

	"enterprise-pos/internal/domain"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// LineItem is one product line in the active cart. UnitPriceCents and
// AvailableStock are snapshots taken when the product was first added;
// AvailableStock is advisory only, stock is enforced by the sale store.
type LineItem struct {
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
	AvailableStock int    `json:"availableStock"`
}

// Cart is the in-progress sale for one POS session. It owns its line items
// and recomputes every derived amount on demand; nothing derived is stored.
// A cart is not safe for concurrent mutation, matching the single-operator
// session model; only the submit guard is atomic.
type Cart struct {
	lines             []LineItem
	discountPercent   float64
	taxPercent        float64
	defaultTaxPercent float64
	paymentMethod     PaymentMethod
	tenderedCents     int64
	customerID        *string

	submitting atomic.Bool
}

// NewCart returns an empty cart using defaultTaxPercent as the tax rate,
// which Clear also restores.
func NewCart(defaultTaxPercent float64) *Cart {
	return &Cart{
		taxPercent:        defaultTaxPercent,
		defaultTaxPercent: defaultTaxPercent,
		paymentMethod:     PaymentCash,
	}
}

// AddItem increments the quantity of an existing line for the product, or
// appends a new line with quantity 1, snapshotting price and stock from the
// product. No stock check happens here; stock is validated at checkout.
func (c *Cart) AddItem(p domain.Product) {
	for i := range c.lines {
		if c.lines[i].ProductID == p.ID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, LineItem{
		ProductID:      p.ID,
		Name:           p.Name,
		UnitPriceCents: p.PriceCents,
		Quantity:       1,
		AvailableStock: p.StockQuantity,
	})
}

// SetQuantity sets the quantity of the product's line, removing the line
// when quantity drops to zero or below. Unknown products are a no-op.
func (c *Cart) SetQuantity(productID string, quantity int) {
	for i := range c.lines {
		if c.lines[i].ProductID != productID {
			continue
		}
		if quantity <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		} else {
			c.lines[i].Quantity = quantity
		}
		return
	}
}

// RemoveItem removes the product's line if present.
func (c *Cart) RemoveItem(productID string) {
	c.SetQuantity(productID, 0)
}

// SetDiscountPercent clamps v into [0, 100] before storing. Out-of-range
// input comes from live typing in the discount field, so it is corrected
// rather than rejected.
func (c *Cart) SetDiscountPercent(v float64) {
	c.discountPercent = math.Min(100, math.Max(0, v))
}

func (c *Cart) SetTaxPercent(v float64)          { c.taxPercent = v }
func (c *Cart) SetPaymentMethod(m PaymentMethod) { c.paymentMethod = m }
func (c *Cart) SetAmountTendered(cents int64)    { c.tenderedCents = cents }
func (c *Cart) SetCustomer(customerID *string)   { c.customerID = customerID }

// Clear resets the cart to its session defaults: no lines, no discount, the
// configured default tax rate, cash payment, nothing tendered, no customer.
func (c *Cart) Clear() {
	c.lines = nil
	c.discountPercent = 0
	c.taxPercent = c.defaultTaxPercent
	c.paymentMethod = PaymentCash
	c.tenderedCents = 0
	c.customerID = nil
}

// Lines returns a copy of the line items in insertion order.
func (c *Cart) Lines() []LineItem {
	out := make([]LineItem, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

func (c *Cart) DiscountPercent() float64      { return c.discountPercent }
func (c *Cart) TaxPercent() float64           { return c.taxPercent }
func (c *Cart) PaymentMethod() PaymentMethod  { return c.paymentMethod }
func (c *Cart) AmountTenderedCents() int64    { return c.tenderedCents }
func (c *Cart) CustomerID() *string           { return c.customerID }

func (c *Cart) SubtotalCents() int64 {
	var sum int64
	for _, l := range c.lines {
		sum += l.UnitPriceCents * int64(l.Quantity)
	}
	return sum
}

func (c *Cart) DiscountCents() int64 {
	return percentOf(c.SubtotalCents(), c.discountPercent)
}

// TaxableBaseCents is the subtotal after discount. Tax applies to this base,
// not to the raw subtotal.
func (c *Cart) TaxableBaseCents() int64 {
	return c.SubtotalCents() - c.DiscountCents()
}

func (c *Cart) TaxCents() int64 {
	return percentOf(c.TaxableBaseCents(), c.taxPercent)
}

func (c *Cart) TotalCents() int64 {
	return c.TaxableBaseCents() + c.TaxCents()
}

// ChangeDueCents is max(0, tendered - total) for cash sales and zero for
// card sales.
func (c *Cart) ChangeDueCents() int64 {
	if c.paymentMethod != PaymentCash {
		return 0
	}
	if change := c.tenderedCents - c.TotalCents(); change > 0 {
		return change
	}
	return 0
}

func (c *Cart) beginSubmit() bool { return c.submitting.CompareAndSwap(false, true) }
func (c *Cart) endSubmit()        { c.submitting.Store(false) }

// percentOf applies pct to an amount of cents, rounding half-up.
func percentOf(cents int64, pct float64) int64 {
	return int64(math.Floor(float64(cents)*pct/100 + 0.5))
}
