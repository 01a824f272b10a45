// Package orders is the order history and feedback flow. Orders arrive
// with their items embedded, so expanding a detail view is a purely
// local selection; only feedback submission goes back to the server.
package orders

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/mangoshop/shopctl/internal/api"
	"github.com/mangoshop/shopctl/internal/models"
)

// Flow holds the fetched order list and the locally selected order.
type Flow struct {
	client *api.Client

	orders     []models.Order
	selectedID int
}

// NewFlow binds the history view to the session's API client.
func NewFlow(client *api.Client) *Flow {
	return &Flow{client: client}
}

// Refresh re-fetches the user's orders with embedded items. A prior
// selection survives the refresh when the order still exists.
func (f *Flow) Refresh() error {
	orders, err := f.client.ListOrders()
	if err != nil {
		return err
	}
	f.orders = orders
	return nil
}

// Orders returns the fetched list in server order.
func (f *Flow) Orders() []models.Order {
	return f.orders
}

// SummaryRow is one line of the history table.
type SummaryRow struct {
	ID            int
	Date          string
	Status        models.OrderStatus
	StatusLabel   string
	Total         string
	PaymentMethod string
	ItemCount     int
	ItemSummary   string
}

// Summaries maps each order to its display row: id, formatted date,
// status, total, payment method label, item count and the first two
// item names.
func (f *Flow) Summaries() []SummaryRow {
	rows := make([]SummaryRow, 0, len(f.orders))
	for _, o := range f.orders {
		names := make([]string, 0, 2)
		for _, item := range o.Items {
			if len(names) == 2 {
				break
			}
			names = append(names, item.MangoName)
		}
		summary := strings.Join(names, ", ")
		if len(o.Items) > 2 {
			summary += ", …"
		}

		rows = append(rows, SummaryRow{
			ID:            o.ID,
			Date:          o.OrderDate.Format("January 2, 2006 03:04 PM"),
			Status:        o.Status,
			StatusLabel:   o.Status.Label(),
			Total:         o.TotalAmount.StringFixed(2),
			PaymentMethod: o.PaymentMethod.Label(),
			ItemCount:     len(o.Items),
			ItemSummary:   summary,
		})
	}
	return rows
}

// Select expands an already-fetched order into the detail view. Local
// state only, no network call.
func (f *Flow) Select(orderID int) (models.Order, bool) {
	for _, o := range f.orders {
		if o.ID == orderID {
			f.selectedID = orderID
			return o, true
		}
	}
	return models.Order{}, false
}

// Selected returns the currently expanded order, refreshed from the
// latest fetch.
func (f *Flow) Selected() (models.Order, bool) {
	if f.selectedID == 0 {
		return models.Order{}, false
	}
	for _, o := range f.orders {
		if o.ID == f.selectedID {
			return o, true
		}
	}
	return models.Order{}, false
}

// ClearSelection collapses the detail view.
func (f *Flow) ClearSelection() {
	f.selectedID = 0
}

// CanReview reports whether the feedback affordance renders for an
// order. Only delivered orders accept feedback.
func CanReview(o models.Order) bool {
	return o.Status == models.OrderStatusDelivered
}

// SubmitFeedback rates one order item: POST when the item has no
// feedback yet, PUT to edit the existing one (idempotent). A zero or
// out-of-range rating is rejected locally with no request, and the
// order list is re-fetched on success so the embedded feedback
// reflects server state.
func (f *Flow) SubmitFeedback(orderItemID, rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return &api.ValidationError{Field: "rating", Message: "Please select a rating"}
	}

	order, item := f.findItem(orderItemID)
	if item == nil {
		return &api.ValidationError{Field: "item", Message: "Order item not found"}
	}
	if !CanReview(*order) {
		return &api.ValidationError{Field: "status", Message: "Feedback is only available for delivered orders"}
	}

	var err error
	if item.Feedback != nil {
		err = f.client.UpdateFeedback(orderItemID, rating, comment)
	} else {
		err = f.client.SubmitFeedback(orderItemID, rating, comment)
	}
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"order_item_id": orderItemID,
		"rating":        rating,
		"updated":       item.Feedback != nil,
	}).Info("Feedback submitted")

	return f.Refresh()
}

func (f *Flow) findItem(orderItemID int) (*models.Order, *models.OrderItem) {
	for i := range f.orders {
		for j := range f.orders[i].Items {
			if f.orders[i].Items[j].ID == orderItemID {
				return &f.orders[i], &f.orders[i].Items[j]
			}
		}
	}
	return nil, nil
}
