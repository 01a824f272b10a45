// Package cart is the client-side cart state store. It never trusts
// its own optimistic state: every mutation that succeeds is followed
// by a full re-fetch of the server's cart, trading an extra round trip
// for zero drift.
package cart

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/mangoshop/shopctl/internal/api"
	"github.com/mangoshop/shopctl/internal/metrics"
	"github.com/mangoshop/shopctl/internal/models"
)

// Store holds the authenticated user's cart lines.
type Store struct {
	client *api.Client

	mu    sync.RWMutex
	items []models.CartItem
}

// NewStore builds a store bound to one API client/session.
func NewStore(client *api.Client) *Store {
	return &Store{client: client}
}

// Refresh replaces local state with the server's cart.
func (s *Store) Refresh() error {
	items, err := s.client.ListCartItems()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// Items returns the current lines in server order.
func (s *Store) Items() []models.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// Empty reports whether the cart has no lines.
func (s *Store) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items) == 0
}

// Add puts quantity units of a product in the cart and re-fetches.
func (s *Store) Add(productID, quantity int) error {
	if quantity < 1 {
		return &api.ValidationError{Field: "quantity", Message: "Quantity cannot be less than 1"}
	}

	if err := s.client.AddToCart(productID, quantity); err != nil {
		metrics.CartMutations.WithLabelValues("add", "error").Inc()
		return err
	}
	metrics.CartMutations.WithLabelValues("add", "ok").Inc()

	log.WithFields(log.Fields{
		"mango_id": productID,
		"quantity": quantity,
	}).Info("Added to cart")

	return s.Refresh()
}

// SetQuantity moves one line to newQuantity. Out-of-range values are
// rejected locally before any request: below 1, or above the line's
// current stock limit.
func (s *Store) SetQuantity(cartItemID, newQuantity, stockLimit int) error {
	if newQuantity < 1 {
		return &api.ValidationError{Field: "quantity", Message: "Quantity cannot be less than 1"}
	}
	if newQuantity > stockLimit {
		return &api.ValidationError{
			Field:   "quantity",
			Message: fmt.Sprintf("Cannot exceed available stock (%d kg)", stockLimit),
		}
	}

	if err := s.client.UpdateCartItem(cartItemID, newQuantity); err != nil {
		metrics.CartMutations.WithLabelValues("update", "error").Inc()
		return err
	}
	metrics.CartMutations.WithLabelValues("update", "ok").Inc()

	log.WithFields(log.Fields{
		"cart_item_id": cartItemID,
		"quantity":     newQuantity,
	}).Info("Quantity updated")

	return s.Refresh()
}

// Remove deletes one line and re-fetches. On failure the prior state
// stays untouched.
func (s *Store) Remove(cartItemID int) error {
	if err := s.client.RemoveCartItem(cartItemID); err != nil {
		metrics.CartMutations.WithLabelValues("remove", "error").Inc()
		return err
	}
	metrics.CartMutations.WithLabelValues("remove", "ok").Inc()

	log.WithField("cart_item_id", cartItemID).Info("Item removed from cart")

	return s.Refresh()
}

// Total sums price × quantity across all lines.
func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// TotalPrice renders the total with two decimal places, display only.
func (s *Store) TotalPrice() string {
	return s.Total().StringFixed(2)
}
