package api

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/mangoshop/shopctl/internal/models"
)

// OrderRequest is the checkout submission. The cart contents are
// server-side state; only contact, addresses and payment method travel.
type OrderRequest struct {
	PhoneNumber     string               `json:"phone_number"`
	AdditionalPhone string               `json:"additional_phone"`
	BillingAddress  string               `json:"billing_address"`
	ShippingAddress string               `json:"shipping_address"`
	PaymentMethod   models.PaymentMethod `json:"payment_method"`
}

// OrderCreated is the create-order acknowledgement. TotalAmount is the
// server-computed authoritative total; client-side estimates are for
// display only and never reconciled against it.
type OrderCreated struct {
	OrderID     int             `json:"order_id"`
	Message     string          `json:"message"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// CreateOrder places the order from the current server-side cart.
func (c *Client) CreateOrder(req OrderRequest) (OrderCreated, error) {
	var created OrderCreated
	err := c.doJSON(http.MethodPost, "/create-order/", true, req, &created, "Failed to place order")
	return created, err
}

// ListOrders fetches the current user's orders with embedded items.
func (c *Client) ListOrders() ([]models.Order, error) {
	var orders []models.Order
	err := c.doJSON(http.MethodGet, "/user-orders-with-items/", true, nil, &orders, "Failed to fetch orders")
	return orders, err
}

// AdminListOrders fetches every order with items and per-item feedback
// for the back-office screen.
func (c *Client) AdminListOrders() ([]models.Order, error) {
	var orders []models.Order
	err := c.doJSON(http.MethodGet, "/admin-orders-details/", true, nil, &orders, "Failed to load orders")
	return orders, err
}

// UpdateOrderStatus patches one order's status.
func (c *Client) UpdateOrderStatus(orderID int, status models.OrderStatus) error {
	path := fmt.Sprintf("/orders/%d/", orderID)
	body := map[string]models.OrderStatus{"status": status}
	return c.doJSON(http.MethodPatch, path, true, body, nil, "Failed to update order status")
}

// UpdateOrderPaymentMethod patches one order's payment method.
func (c *Client) UpdateOrderPaymentMethod(orderID int, method models.PaymentMethod) error {
	path := fmt.Sprintf("/orders/%d/", orderID)
	body := map[string]models.PaymentMethod{"payment_method": method}
	return c.doJSON(http.MethodPatch, path, true, body, nil, "Failed to update payment method")
}
