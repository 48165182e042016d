// Package cart holds the client-side shopping cart: an ordered set of line
// items keyed by product id, persisted as one snapshot on every mutation.
package cart

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/Chichimokers/storefront/pkg/storesdk"
	"github.com/shopspring/decimal"
)

// Snapshot is the durable blob the cart persists itself into. The cart
// defines the interface; localstore provides the implementation.
type Snapshot interface {
	Load() ([]byte, bool)
	Save([]byte) error
	Clear() error
}

// Line is one product entry with its quantity and the price snapshot taken
// when the product was added. Quantity always sits in [1, MaxQuantity].
type Line struct {
	ProductID   int64           `json:"product_id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	ImageRef    string          `json:"image_ref,omitempty"`
	MaxQuantity int             `json:"max_quantity"`
}

// Store is the cart. Lines keep insertion order. Safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	lines []Line
	snap  Snapshot
	log   *slog.Logger
}

// New creates a cart backed by snap, rehydrating any persisted lines. A
// corrupt snapshot is dropped and the cart starts empty; the next mutation
// overwrites it.
func New(snap Snapshot, log *slog.Logger) *Store {
	s := &Store{snap: snap, log: log}

	raw, ok := snap.Load()
	if !ok {
		return s
	}

	var lines []Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		log.Warn("persisted cart is corrupt, starting empty", "error", err)
		return s
	}
	// Discard lines that violate the quantity invariant rather than
	// carrying them forward.
	for _, line := range lines {
		if line.Quantity >= 1 && line.Quantity <= line.MaxQuantity {
			s.lines = append(s.lines, line)
		}
	}
	return s
}

// Add merges item into the cart. An existing line for the same product
// keeps its stored name and price and gains item.Quantity (default 1),
// clamped to the line's MaxQuantity. A new line is appended with its
// quantity clamped the same way. An item with no available stock
// (MaxQuantity <= 0) is rejected: no line could satisfy the quantity
// bounds.
func (s *Store) Add(item Line) {
	if item.MaxQuantity <= 0 {
		s.log.Warn("rejecting cart add with no available stock",
			"product_id", item.ProductID)
		return
	}

	qty := item.Quantity
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID == item.ProductID {
			s.lines[i].Quantity = clamp(s.lines[i].Quantity+qty, s.lines[i].MaxQuantity)
			s.persistLocked()
			return
		}
	}

	item.Quantity = clamp(qty, item.MaxQuantity)
	s.lines = append(s.lines, item)
	s.persistLocked()
}

// SetQuantity sets a line's quantity, clamped to its MaxQuantity. A
// quantity of zero or less removes the line. Unknown product ids are a
// no-op.
func (s *Store) SetQuantity(productID int64, qty int) {
	if qty <= 0 {
		s.Remove(productID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity = clamp(qty, s.lines[i].MaxQuantity)
			s.persistLocked()
			return
		}
	}
}

// Remove deletes the line for productID. Absence is a no-op.
func (s *Store) Remove(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			s.persistLocked()
			return
		}
	}
}

// Clear empties the cart. Called on checkout success or explicitly.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.persistLocked()
}

// Lines returns a copy of the cart in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Total is the sum of unit price times quantity across all lines,
// recomputed on every call.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, line := range s.lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// ItemCount is the sum of quantities across all lines.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

// CheckoutItems converts the cart to the product/quantity list the
// checkout endpoint expects.
func (s *Store) CheckoutItems() []storesdk.CheckoutItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]storesdk.CheckoutItem, 0, len(s.lines))
	for _, line := range s.lines {
		items = append(items, storesdk.CheckoutItem{ID: line.ProductID, Quantity: line.Quantity})
	}
	return items
}

func (s *Store) persistLocked() {
	raw, err := json.Marshal(s.lines)
	if err != nil {
		s.log.Error("failed to encode cart snapshot", "error", err)
		return
	}
	if err := s.snap.Save(raw); err != nil {
		s.log.Error("failed to persist cart snapshot", "error", err)
	}
}

func clamp(qty, maxQty int) int {
	if maxQty > 0 && qty > maxQty {
		return maxQty
	}
	if qty < 1 {
		return 1
	}
	return qty
}
