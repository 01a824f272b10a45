package admin

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/mangoshop/shopctl/internal/api"
	"github.com/mangoshop/shopctl/internal/models"
)

// PaymentManager drives the payments screen. Uniquely among the admin
// screens it merges optimistically: a successful status PATCH updates
// the local row in place instead of re-fetching, and a failed one
// leaves the row at its last known-good value. A set of in-flight
// payment IDs disables just the row being updated.
type PaymentManager struct {
	client *api.Client

	mu       sync.RWMutex
	payments []models.Payment
	inflight map[int]struct{}
}

// NewPaymentManager binds the screen to the admin's API client.
func NewPaymentManager(client *api.Client) *PaymentManager {
	return &PaymentManager{
		client:   client,
		inflight: make(map[int]struct{}),
	}
}

// Refresh replaces local rows with the server's payment list.
func (m *PaymentManager) Refresh() error {
	payments, err := m.client.ListPayments()
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.payments = payments
	m.mu.Unlock()
	return nil
}

// Payments returns the current rows.
func (m *PaymentManager) Payments() []models.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Payment, len(m.payments))
	copy(out, m.payments)
	return out
}

// Updating reports whether a row has a status change in flight, so the
// UI can disable just that row's control.
func (m *PaymentManager) Updating(paymentID int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.inflight[paymentID]
	return ok
}

// SetStatus PATCHes one payment's status and applies it to the local
// row on success. On failure the row keeps its displayed value.
func (m *PaymentManager) SetStatus(paymentID int, status models.PaymentStatus) error {
	m.mu.Lock()
	m.inflight[paymentID] = struct{}{}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.inflight, paymentID)
		m.mu.Unlock()
	}()

	if err := m.client.UpdatePaymentStatus(paymentID, status); err != nil {
		return err
	}

	m.mu.Lock()
	for i := range m.payments {
		if m.payments[i].ID == paymentID {
			m.payments[i].PaymentStatus = status
			break
		}
	}
	m.mu.Unlock()

	log.WithFields(log.Fields{
		"payment_id": paymentID,
		"status":     status,
	}).Info("Payment status updated")

	return nil
}
