package admin

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/mangoshop/shopctl/internal/api"
	"github.com/mangoshop/shopctl/internal/models"
)

// OrderManager drives the order management screen: every order with
// items and feedback, constrained status transitions, an explicit
// cancel action and payment method edits.
type OrderManager struct {
	client *api.Client
	orders []models.Order
}

// NewOrderManager binds the screen to the admin's API client.
func NewOrderManager(client *api.Client) *OrderManager {
	return &OrderManager{client: client}
}

// Refresh re-fetches all orders with details.
func (m *OrderManager) Refresh() error {
	orders, err := m.client.AdminListOrders()
	if err != nil {
		return err
	}
	m.orders = orders
	return nil
}

// Orders returns the fetched list.
func (m *OrderManager) Orders() []models.Order {
	return m.orders
}

// Get returns one fetched order by id.
func (m *OrderManager) Get(orderID int) (models.Order, bool) {
	for _, o := range m.orders {
		if o.ID == orderID {
			return o, true
		}
	}
	return models.Order{}, false
}

// ManualStatusTargets lists the statuses the dropdown offers from the
// current one. Cancellation is never a manual target (it has its own
// action) and terminal orders offer no transition at all.
func ManualStatusTargets(current models.OrderStatus) []models.OrderStatus {
	if current.IsTerminal() {
		return nil
	}
	targets := make([]models.OrderStatus, 0, len(models.OrderStatuses)-1)
	for _, s := range models.OrderStatuses {
		if s == models.OrderStatusCancelled {
			continue
		}
		targets = append(targets, s)
	}
	return targets
}

// SetStatus transitions an order through the dropdown. Rejected
// locally when the order is terminal or the target is cancelled; on
// success the list is re-fetched.
func (m *OrderManager) SetStatus(orderID int, status models.OrderStatus) error {
	order, ok := m.Get(orderID)
	if !ok {
		return &api.ValidationError{Field: "order", Message: "Order not found"}
	}
	if order.Status.IsTerminal() {
		return &api.ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("Order is already %s", order.Status.Label()),
		}
	}
	if status == models.OrderStatusCancelled {
		return &api.ValidationError{Field: "status", Message: "Use the cancel action to cancel an order"}
	}

	if err := m.client.UpdateOrderStatus(orderID, status); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"order_id": orderID,
		"status":   status,
	}).Info("Order status updated")

	return m.Refresh()
}

// Cancel is the explicit cancellation action. The caller confirms with
// the user before invoking it.
func (m *OrderManager) Cancel(orderID int) error {
	order, ok := m.Get(orderID)
	if !ok {
		return &api.ValidationError{Field: "order", Message: "Order not found"}
	}
	if order.Status.IsTerminal() {
		return &api.ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("Order is already %s", order.Status.Label()),
		}
	}

	if err := m.client.UpdateOrderStatus(orderID, models.OrderStatusCancelled); err != nil {
		return err
	}

	log.WithField("order_id", orderID).Info("Order cancelled")

	return m.Refresh()
}

// CanEditPaymentMethod reports whether the payment method dropdown
// renders for an order. Cancelled orders are frozen.
func CanEditPaymentMethod(o models.Order) bool {
	return o.Status != models.OrderStatusCancelled
}

// SetPaymentMethod changes how an order is paid; rejected locally for
// cancelled orders.
func (m *OrderManager) SetPaymentMethod(orderID int, method models.PaymentMethod) error {
	order, ok := m.Get(orderID)
	if !ok {
		return &api.ValidationError{Field: "order", Message: "Order not found"}
	}
	if !CanEditPaymentMethod(order) {
		return &api.ValidationError{Field: "payment_method", Message: "Cancelled orders cannot be edited"}
	}

	if err := m.client.UpdateOrderPaymentMethod(orderID, method); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"order_id":       orderID,
		"payment_method": method,
	}).Info("Payment method updated")

	return m.Refresh()
}
