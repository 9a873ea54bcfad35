// Package hold keeps transactions parked by the operator so another
// customer can be served first. Held carts have no stock effect; stock is
// only touched when the resumed cart goes through checkout.
package hold

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"enterprise-pos/internal/pos"
)

// HeldCart is a parked cart snapshot.
type HeldCart struct {
	Reference       string            `json:"reference"`
	Lines           []pos.LineItem    `json:"lines"`
	DiscountPercent float64           `json:"discountPercent"`
	TaxPercent      float64           `json:"taxPercent"`
	PaymentMethod   pos.PaymentMethod `json:"paymentMethod"`
	CustomerID      *string           `json:"customerId,omitempty"`
	Note            string            `json:"note,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
}

// Store is an in-memory hold registry. Holds do not survive a restart,
// which matches how a POS terminal treats parked transactions.
type Store struct {
	mu   sync.Mutex
	held map[string]HeldCart
}

func NewStore() *Store {
	return &Store{held: make(map[string]HeldCart)}
}

// Hold registers the snapshot and returns it with an assigned reference.
func (s *Store) Hold(h HeldCart) HeldCart {
	h.Reference = "HLD-" + uuid.NewString()
	h.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	s.held[h.Reference] = h
	s.mu.Unlock()
	return h
}

// List returns all held carts, oldest first.
func (s *Store) List() []HeldCart {
	s.mu.Lock()
	out := make([]HeldCart, 0, len(s.held))
	for _, h := range s.held {
		out = append(out, h)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Resume removes and returns the held cart for the reference.
func (s *Store) Resume(reference string) (HeldCart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.held[reference]
	if ok {
		delete(s.held, reference)
	}
	return h, ok
}
