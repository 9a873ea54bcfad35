package pos

import (
	"context"
	"io"
	"log"
)

// SaleLine is one line of a sale request snapshot.
type SaleLine struct {
	ProductID      string
	Quantity       int
	UnitPriceCents int64
}

// SaleRequest is the immutable snapshot of a cart sent to the sale store.
// The store owns the persisted status; this core always submits completed
// sales.
type SaleRequest struct {
	Lines           []SaleLine
	CustomerID      *string
	SubtotalCents   int64
	DiscountPercent float64
	DiscountCents   int64
	TaxPercent      float64
	TaxCents        int64
	TotalCents      int64
	PaymentMethod   PaymentMethod
	TenderedCents   int64
	Status          string
}

// SaleResult is the store's acknowledgement of a persisted sale.
type SaleResult struct {
	SaleID        string
	ReceiptNumber string
}

// SaleStore persists a sale and atomically decrements stock for every line.
// It fails with *OutOfStockError, *ValidationError or ErrServiceUnavailable
// (wrapped) and is the sole authority on stock; the cart's per-line stock
// snapshots are never consulted here.
type SaleStore interface {
	CreateSale(ctx context.Context, req SaleRequest) (*SaleResult, error)
}

// Checkout validates a cart and commits it as a sale through the store.
type Checkout struct {
	store  SaleStore
	logger *log.Logger
}

func NewCheckout(store SaleStore, logger *log.Logger) *Checkout {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Checkout{store: store, logger: logger}
}

// Result is returned to the caller for display and receipt printing.
type Result struct {
	SaleID         string
	ReceiptNumber  string
	ChangeDueCents int64
}

// Submit validates the cart, sends one SaleRequest to the store and, on
// success, clears the cart. Any failure leaves the cart untouched so the
// operator can correct and retry; nothing is retried automatically. At most
// one submission may be in flight per cart: a concurrent second call fails
// with ErrSubmissionInProgress.
func (c *Checkout) Submit(ctx context.Context, cart *Cart) (*Result, error) {
	if !cart.beginSubmit() {
		return nil, ErrSubmissionInProgress
	}
	defer cart.endSubmit()

	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	total := cart.TotalCents()
	if cart.PaymentMethod() == PaymentCash && cart.AmountTenderedCents() < total {
		return nil, &InsufficientPaymentError{ShortfallCents: total - cart.AmountTenderedCents()}
	}

	change := cart.ChangeDueCents()
	req := snapshotCart(cart)

	res, err := c.store.CreateSale(ctx, req)
	if err != nil {
		c.logger.Printf("checkout: create sale failed total_cents=%d lines=%d error=%v", total, len(req.Lines), err)
		return nil, err
	}

	cart.Clear()
	c.logger.Printf("checkout: sale committed sale_id=%s receipt=%s total_cents=%d", res.SaleID, res.ReceiptNumber, total)

	return &Result{
		SaleID:         res.SaleID,
		ReceiptNumber:  res.ReceiptNumber,
		ChangeDueCents: change,
	}, nil
}

func snapshotCart(cart *Cart) SaleRequest {
	lines := cart.Lines()
	saleLines := make([]SaleLine, 0, len(lines))
	for _, l := range lines {
		saleLines = append(saleLines, SaleLine{
			ProductID:      l.ProductID,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
		})
	}
	return SaleRequest{
		Lines:           saleLines,
		CustomerID:      cart.CustomerID(),
		SubtotalCents:   cart.SubtotalCents(),
		DiscountPercent: cart.DiscountPercent(),
		DiscountCents:   cart.DiscountCents(),
		TaxPercent:      cart.TaxPercent(),
		TaxCents:        cart.TaxCents(),
		TotalCents:      cart.TotalCents(),
		PaymentMethod:   cart.PaymentMethod(),
		TenderedCents:   cart.AmountTenderedCents(),
		Status:          "completed",
	}
}
