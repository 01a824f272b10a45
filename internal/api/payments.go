package api

import (
	"fmt"
	"net/http"

	"github.com/mangoshop/shopctl/internal/models"
)

// ListPayments fetches every payment row for the back office.
func (c *Client) ListPayments() ([]models.Payment, error) {
	var payments []models.Payment
	err := c.doJSON(http.MethodGet, "/payments/", true, nil, &payments, "Failed to load payments")
	return payments, err
}

// UpdatePaymentStatus patches one payment's status.
func (c *Client) UpdatePaymentStatus(paymentID int, status models.PaymentStatus) error {
	path := fmt.Sprintf("/payments/%d/", paymentID)
	body := map[string]models.PaymentStatus{"payment_status": status}
	return c.doJSON(http.MethodPatch, path, true, body, nil, "Failed to update payment status")
}
