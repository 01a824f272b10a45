package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
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

func newClient(t *testing.T, handler http.Handler) *api.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sess := session.New()
	sess.Set("admin-token")
	return api.New(server.URL, sess)
}

// --- gate ---

func TestGateAdmitsStaff(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.ProfileResponse{
			User:    models.User{Username: "admin", IsStaff: true},
			IsStaff: true,
		})
	}))

	profile, err := Gate(client)
	require.NoError(t, err)
	assert.Equal(t, "admin", profile.User.Username)
}

func TestGateBouncesNonStaffToLogin(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.ProfileResponse{
			User: models.User{Username: "shopper"},
		})
	}))

	_, err := Gate(client)
	var authErr *api.AuthError
	require.ErrorAs(t, err, &authErr)
}

// --- order management ---

func TestManualStatusTargetsExcludeCancelled(t *testing.T) {
	targets := ManualStatusTargets(models.OrderStatusPending)
	require.Len(t, targets, 5)
	assert.NotContains(t, targets, models.OrderStatusCancelled)
	assert.Contains(t, targets, models.OrderStatusDelivered)
}

func TestManualStatusTargetsHiddenForTerminalStates(t *testing.T) {
	assert.Nil(t, ManualStatusTargets(models.OrderStatusDelivered))
	assert.Nil(t, ManualStatusTargets(models.OrderStatusCancelled))
}

type orderAdminBackend struct {
	orders  []models.Order
	patches int32
	lists   int32
}

func (b *orderAdminBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin-orders-details/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.lists, 1)
		json.NewEncoder(w).Encode(b.orders)
	})
	mux.HandleFunc("/api/orders/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.patches, 1)
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		for i := range b.orders {
			if s, ok := body["status"]; ok {
				b.orders[i].Status = models.OrderStatus(s)
			}
			if m, ok := body["payment_method"]; ok {
				b.orders[i].PaymentMethod = models.PaymentMethod(m)
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func adminOrders(status models.OrderStatus) []models.Order {
	return []models.Order{{
		ID:            7,
		UserName:      "shopper",
		Status:        status,
		PaymentMethod: models.PaymentMethodCashOnDelivery,
		TotalAmount:   decimal.RequireFromString("650.00"),
	}}
}

func TestSetStatusTransitionsAndRefetches(t *testing.T) {
	backend := &orderAdminBackend{orders: adminOrders(models.OrderStatusPending)}
	mgr := NewOrderManager(newClient(t, backend.handler()))
	require.NoError(t, mgr.Refresh())

	require.NoError(t, mgr.SetStatus(7, models.OrderStatusConfirmed))
	assert.Equal(t, int32(1), atomic.LoadInt32(&backend.patches))
	assert.Equal(t, int32(2), atomic.LoadInt32(&backend.lists))

	order, ok := mgr.Get(7)
	require.True(t, ok)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
}

func TestSetStatusRejectsTerminalOrdersWithoutRequest(t *testing.T) {
	backend := &orderAdminBackend{orders: adminOrders(models.OrderStatusDelivered)}
	mgr := NewOrderManager(newClient(t, backend.handler()))
	require.NoError(t, mgr.Refresh())

	err := mgr.SetStatus(7, models.OrderStatusConfirmed)
	var validationErr *api.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Order is already Delivered", validationErr.Message)
	assert.Equal(t, int32(0), atomic.LoadInt32(&backend.patches))
}

func TestSetStatusRejectsCancelledAsManualTarget(t *testing.T) {
	backend := &orderAdminBackend{orders: adminOrders(models.OrderStatusPending)}
	mgr := NewOrderManager(newClient(t, backend.handler()))
	require.NoError(t, mgr.Refresh())

	err := mgr.SetStatus(7, models.OrderStatusCancelled)
	var validationErr *api.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, int32(0), atomic.LoadInt32(&backend.patches))
}

func TestCancelIsExplicitAndPatchesCancelled(t *testing.T) {
	backend := &orderAdminBackend{orders: adminOrders(models.OrderStatusConfirmed)}
	mgr := NewOrderManager(newClient(t, backend.handler()))
	require.NoError(t, mgr.Refresh())

	require.NoError(t, mgr.Cancel(7))
	order, ok := mgr.Get(7)
	require.True(t, ok)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)

	// Cancelling again is rejected locally.
	err := mgr.Cancel(7)
	var validationErr *api.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestPaymentMethodFrozenOnCancelledOrders(t *testing.T) {
	backend := &orderAdminBackend{orders: adminOrders(models.OrderStatusCancelled)}
	mgr := NewOrderManager(newClient(t, backend.handler()))
	require.NoError(t, mgr.Refresh())

	assert.False(t, CanEditPaymentMethod(backend.orders[0]))
	err := mgr.SetPaymentMethod(7, models.PaymentMethodCard)
	var validationErr *api.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, int32(0), atomic.LoadInt32(&backend.patches))
}

func TestSetPaymentMethodOnActiveOrder(t *testing.T) {
	backend := &orderAdminBackend{orders: adminOrders(models.OrderStatusPending)}
	mgr := NewOrderManager(newClient(t, backend.handler()))
	require.NoError(t, mgr.Refresh())

	require.NoError(t, mgr.SetPaymentMethod(7, models.PaymentMethodMobileBanking))
	order, _ := mgr.Get(7)
	assert.Equal(t, models.PaymentMethodMobileBanking, order.PaymentMethod)
}

// --- payment management ---

type paymentAdminBackend struct {
	payments []models.Payment
	lists    int32
	patches  int32
	fail     bool
	block    chan struct{} // when set, PATCH waits for a signal
}

func (b *paymentAdminBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/payments/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			if b.block != nil {
				<-b.block
			}
			atomic.AddInt32(&b.patches, 1)
			if b.fail {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusOK)
			return
		}
		atomic.AddInt32(&b.lists, 1)
		json.NewEncoder(w).Encode(b.payments)
	})
	return mux
}

func samplePayments() []models.Payment {
	return []models.Payment{
		{ID: 1, OrderID: 7, PaymentMethod: models.PaymentMethodCashOnDelivery,
			Amount: decimal.RequireFromString("650.00"), PaymentStatus: models.PaymentStatusPending},
		{ID: 2, OrderID: 8, PaymentMethod: models.PaymentMethodCard,
			Amount: decimal.RequireFromString("250.00"), PaymentStatus: models.PaymentStatusPaid},
	}
}

func TestPaymentStatusUpdatesOptimisticallyWithoutRefetch(t *testing.T) {
	backend := &paymentAdminBackend{payments: samplePayments()}
	mgr := NewPaymentManager(newClient(t, backend.handler()))
	require.NoError(t, mgr.Refresh())

	require.NoError(t, mgr.SetStatus(1, models.PaymentStatusPaid))
	assert.Equal(t, int32(1), atomic.LoadInt32(&backend.lists), "payments screen merges optimistically, no re-fetch")

	rows := mgr.Payments()
	assert.Equal(t, models.PaymentStatusPaid, rows[0].PaymentStatus)
	assert.Equal(t, models.PaymentStatusPaid, rows[1].PaymentStatus)
}

func TestPaymentStatusFailureKeepsLastKnownGoodRow(t *testing.T) {
	backend := &paymentAdminBackend{payments: samplePayments(), fail: true}
	mgr := NewPaymentManager(newClient(t, backend.handler()))
	require.NoError(t, mgr.Refresh())

	err := mgr.SetStatus(1, models.PaymentStatusRefunded)
	var serverErr *api.ServerError
	require.ErrorAs(t, err, &serverErr)

	rows := mgr.Payments()
	assert.Equal(t, models.PaymentStatusPending, rows[0].PaymentStatus)
	assert.False(t, mgr.Updating(1))
}

func TestUpdatingTracksOnlyTheRowInFlight(t *testing.T) {
	backend := &paymentAdminBackend{payments: samplePayments(), block: make(chan struct{})}
	mgr := NewPaymentManager(newClient(t, backend.handler()))
	require.NoError(t, mgr.Refresh())

	done := make(chan error, 1)
	go func() {
		done <- mgr.SetStatus(1, models.PaymentStatusPaid)
	}()

	require.Eventually(t, func() bool { return mgr.Updating(1) }, time.Second, 5*time.Millisecond)
	assert.False(t, mgr.Updating(2), "only the updating row is disabled")

	close(backend.block)
	require.NoError(t, <-done)
	assert.False(t, mgr.Updating(1))
}

// --- product management ---

type productAdminBackend struct {
	products []models.Product
	nextID   int
}

func (b *productAdminBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/mangoes/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(b.products)
		case http.MethodPost:
			r.ParseMultipartForm(1 << 20)
			price, _ := decimal.NewFromString(r.FormValue("price"))
			stock, _ := strconv.Atoi(r.FormValue("stock_quantity"))
			b.nextID++
			p := models.Product{
				ID:            b.nextID,
				Name:          r.FormValue("name"),
				Description:   r.FormValue("description"),
				Price:         price,
				StockQuantity: stock,
			}
			b.products = append(b.products, p)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(p)
		}
	})
	return mux
}

func TestProductCreateRoundTripsThroughCatalog(t *testing.T) {
	backend := &productAdminBackend{}
	mgr := NewProductManager(newClient(t, backend.handler()))

	created, err := mgr.Create(api.ProductForm{
		Name:          "Gopalbhog",
		Description:   "Early season, honey sweet",
		Price:         decimal.RequireFromString("220.00"),
		StockQuantity: 40,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	// The catalog list must reflect exactly what the form submitted.
	require.Len(t, mgr.Products(), 1)
	got := mgr.Products()[0]
	assert.Equal(t, "Gopalbhog", got.Name)
	assert.Equal(t, "Early season, honey sweet", got.Description)
	assert.Equal(t, "220.00", got.Price.StringFixed(2))
	assert.Equal(t, 40, got.StockQuantity)
}

func TestProductFormValidatesLocally(t *testing.T) {
	backend := &productAdminBackend{}
	mgr := NewProductManager(newClient(t, backend.handler()))

	_, err := mgr.Create(api.ProductForm{Price: decimal.NewFromInt(10)})
	var validationErr *api.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "name", validationErr.Field)
	assert.Empty(t, backend.products)
}
