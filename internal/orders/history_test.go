package orders

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mangoshop/shopctl/internal/api"
	"github.com/mangoshop/shopctl/internal/models"
	"github.com/mangoshop/shopctl/internal/session"
)

type ordersBackend struct {
	orders          []models.Order
	listCalls       int32
	feedbackMethods []string
}

func (b *ordersBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/user-orders-with-items/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.listCalls, 1)
		json.NewEncoder(w).Encode(b.orders)
	})
	mux.HandleFunc("/api/order-item/", func(w http.ResponseWriter, r *http.Request) {
		b.feedbackMethods = append(b.feedbackMethods, r.Method)
		w.Write([]byte(`{"message": "Feedback submitted successfully!"}`))
	})
	return mux
}

func newTestFlow(t *testing.T, backend *ordersBackend) *Flow {
	t.Helper()
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	sess := session.New()
	sess.Set("test-token")
	return NewFlow(api.New(server.URL, sess))
}

func sampleOrders() []models.Order {
	date := time.Date(2025, time.June, 10, 14, 30, 0, 0, time.UTC)
	return []models.Order{
		{
			ID:            7,
			TotalAmount:   decimal.RequireFromString("650.00"),
			OrderDate:     date,
			Status:        models.OrderStatusDelivered,
			PaymentMethod: models.PaymentMethodCashOnDelivery,
			Items: []models.OrderItem{
				{ID: 71, MangoName: "Himsagar", Quantity: 2, Price: decimal.RequireFromString("250.00"), Subtotal: decimal.RequireFromString("500.00")},
				{ID: 72, MangoName: "Langra", Quantity: 1, Price: decimal.RequireFromString("150.00"), Subtotal: decimal.RequireFromString("150.00"),
					Feedback: &models.Feedback{Rating: 4, Comment: "Very good"}},
				{ID: 73, MangoName: "Amrapali", Quantity: 1, Price: decimal.RequireFromString("180.00"), Subtotal: decimal.RequireFromString("180.00")},
			},
		},
		{
			ID:            8,
			TotalAmount:   decimal.RequireFromString("250.00"),
			OrderDate:     date.AddDate(0, 0, 1),
			Status:        models.OrderStatusCancelled,
			PaymentMethod: models.PaymentMethodCard,
			Items: []models.OrderItem{
				{ID: 81, MangoName: "Himsagar", Quantity: 1, Price: decimal.RequireFromString("250.00"), Subtotal: decimal.RequireFromString("250.00")},
			},
		},
	}
}

func TestSummariesMapOrdersToDisplayRows(t *testing.T) {
	backend := &ordersBackend{orders: sampleOrders()}
	flow := newTestFlow(t, backend)
	require.NoError(t, flow.Refresh())

	rows := flow.Summaries()
	require.Len(t, rows, 2)

	assert.Equal(t, 7, rows[0].ID)
	assert.Equal(t, "June 10, 2025 02:30 PM", rows[0].Date)
	assert.Equal(t, "Delivered", rows[0].StatusLabel)
	assert.Equal(t, "650.00", rows[0].Total)
	assert.Equal(t, "Cash on Delivery", rows[0].PaymentMethod)
	assert.Equal(t, 3, rows[0].ItemCount)
	assert.Equal(t, "Himsagar, Langra, …", rows[0].ItemSummary)

	assert.Equal(t, "Cancelled", rows[1].StatusLabel)
	assert.Equal(t, "Himsagar", rows[1].ItemSummary)
}

func TestSelectIsLocalOnly(t *testing.T) {
	backend := &ordersBackend{orders: sampleOrders()}
	flow := newTestFlow(t, backend)
	require.NoError(t, flow.Refresh())
	require.Equal(t, int32(1), atomic.LoadInt32(&backend.listCalls))

	order, ok := flow.Select(7)
	require.True(t, ok)
	assert.Equal(t, 7, order.ID)
	assert.Equal(t, int32(1), atomic.LoadInt32(&backend.listCalls), "detail expansion must not re-fetch")

	_, ok = flow.Select(999)
	assert.False(t, ok)
}

func TestSelectionSurvivesRefresh(t *testing.T) {
	backend := &ordersBackend{orders: sampleOrders()}
	flow := newTestFlow(t, backend)
	require.NoError(t, flow.Refresh())

	_, ok := flow.Select(7)
	require.True(t, ok)
	require.NoError(t, flow.Refresh())

	selected, ok := flow.Selected()
	require.True(t, ok)
	assert.Equal(t, 7, selected.ID)
}

func TestCanReviewOnlyDeliveredOrders(t *testing.T) {
	orders := sampleOrders()
	assert.True(t, CanReview(orders[0]))
	assert.False(t, CanReview(orders[1]), "cancelled orders expose no feedback affordance")
	assert.False(t, CanReview(models.Order{Status: models.OrderStatusPending}))
	assert.False(t, CanReview(models.Order{Status: models.OrderStatusOutForDelivery}))
}

func TestSubmitFeedbackRejectsMissingRatingWithoutRequest(t *testing.T) {
	backend := &ordersBackend{orders: sampleOrders()}
	flow := newTestFlow(t, backend)
	require.NoError(t, flow.Refresh())

	err := flow.SubmitFeedback(71, 0, "nice")
	var validationErr *api.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Please select a rating", validationErr.Message)
	assert.Empty(t, backend.feedbackMethods)

	err = flow.SubmitFeedback(71, 6, "nice")
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, backend.feedbackMethods)
}

func TestSubmitFeedbackRejectsUndeliveredOrders(t *testing.T) {
	backend := &ordersBackend{orders: sampleOrders()}
	flow := newTestFlow(t, backend)
	require.NoError(t, flow.Refresh())

	err := flow.SubmitFeedback(81, 5, "")
	var validationErr *api.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, backend.feedbackMethods)
}

func TestSubmitFeedbackPostsWhenNoneExists(t *testing.T) {
	backend := &ordersBackend{orders: sampleOrders()}
	flow := newTestFlow(t, backend)
	require.NoError(t, flow.Refresh())

	require.NoError(t, flow.SubmitFeedback(71, 5, "Excellent"))
	require.Equal(t, []string{http.MethodPost}, backend.feedbackMethods)
	assert.Equal(t, int32(2), atomic.LoadInt32(&backend.listCalls), "successful submit re-fetches the order list")
}

func TestSubmitFeedbackPutsWhenEditing(t *testing.T) {
	backend := &ordersBackend{orders: sampleOrders()}
	flow := newTestFlow(t, backend)
	require.NoError(t, flow.Refresh())

	// Item 72 already carries feedback; resubmitting goes through PUT
	// and is idempotent server-side.
	require.NoError(t, flow.SubmitFeedback(72, 4, "Very good"))
	require.NoError(t, flow.SubmitFeedback(72, 4, "Very good"))
	assert.Equal(t, []string{http.MethodPut, http.MethodPut}, backend.feedbackMethods)
}
