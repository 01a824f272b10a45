package cart

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mangoshop/shopctl/internal/api"
	"github.com/mangoshop/shopctl/internal/models"
	"github.com/mangoshop/shopctl/internal/session"
)

type cartBackend struct {
	items   []models.CartItem
	gets    int32
	patches int32
	deletes int32
	fail    bool
}

func (b *cartBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/cart/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.gets, 1)
		json.NewEncoder(w).Encode(b.items)
	})
	mux.HandleFunc("/api/cart-items/", func(w http.ResponseWriter, r *http.Request) {
		if b.fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		switch r.Method {
		case http.MethodPatch:
			atomic.AddInt32(&b.patches, 1)
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			atomic.AddInt32(&b.deletes, 1)
			b.items = nil
			w.WriteHeader(http.StatusNoContent)
		}
	})
	return mux
}

func newTestStore(t *testing.T, backend *cartBackend) *Store {
	t.Helper()
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	sess := session.New()
	sess.Set("test-token")
	return NewStore(api.New(server.URL, sess))
}

func oneItem(price string, quantity, stock int) []models.CartItem {
	return []models.CartItem{{
		ID: 1,
		Product: models.Product{
			ID:            10,
			Name:          "Himsagar",
			Price:         decimal.RequireFromString(price),
			StockQuantity: stock,
		},
		Quantity: quantity,
	}}
}

func TestSetQuantityRejectsBelowOneWithoutRequest(t *testing.T) {
	backend := &cartBackend{items: oneItem("250.00", 2, 10)}
	store := newTestStore(t, backend)
	require.NoError(t, store.Refresh())

	err := store.SetQuantity(1, 0, 10)
	var validationErr *api.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Quantity cannot be less than 1", validationErr.Message)
	assert.Equal(t, int32(0), atomic.LoadInt32(&backend.patches))
}

func TestSetQuantityRejectsAboveStockWithoutRequest(t *testing.T) {
	backend := &cartBackend{items: oneItem("250.00", 2, 10)}
	store := newTestStore(t, backend)
	require.NoError(t, store.Refresh())

	err := store.SetQuantity(1, 11, 10)
	var validationErr *api.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Cannot exceed available stock (10 kg)", validationErr.Message)
	assert.Equal(t, int32(0), atomic.LoadInt32(&backend.patches))
}

func TestSetQuantityPatchesThenRefetches(t *testing.T) {
	backend := &cartBackend{items: oneItem("250.00", 2, 10)}
	store := newTestStore(t, backend)
	require.NoError(t, store.Refresh())
	require.Equal(t, int32(1), atomic.LoadInt32(&backend.gets))

	require.NoError(t, store.SetQuantity(1, 3, 10))
	assert.Equal(t, int32(1), atomic.LoadInt32(&backend.patches))
	assert.Equal(t, int32(2), atomic.LoadInt32(&backend.gets), "mutation must trigger a full re-fetch")
}

func TestRemoveRefetchesOnSuccess(t *testing.T) {
	backend := &cartBackend{items: oneItem("250.00", 2, 10)}
	store := newTestStore(t, backend)
	require.NoError(t, store.Refresh())

	require.NoError(t, store.Remove(1))
	assert.Equal(t, int32(1), atomic.LoadInt32(&backend.deletes))
	assert.Equal(t, int32(2), atomic.LoadInt32(&backend.gets))
	assert.True(t, store.Empty())
}

func TestRemoveFailureLeavesStateUntouched(t *testing.T) {
	backend := &cartBackend{items: oneItem("250.00", 2, 10)}
	store := newTestStore(t, backend)
	require.NoError(t, store.Refresh())

	backend.fail = true
	err := store.Remove(1)
	var serverErr *api.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Len(t, store.Items(), 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&backend.gets), "failed mutation must not re-fetch")
}

func TestTotalPriceRoundsToTwoPlaces(t *testing.T) {
	backend := &cartBackend{items: oneItem("200", 3, 10)}
	store := newTestStore(t, backend)
	require.NoError(t, store.Refresh())

	assert.Equal(t, "600.00", store.TotalPrice())
}

func TestTotalPriceSumsAcrossLines(t *testing.T) {
	items := oneItem("199.99", 2, 10)
	items = append(items, models.CartItem{
		ID:       2,
		Product:  models.Product{ID: 11, Name: "Langra", Price: decimal.RequireFromString("150.50"), StockQuantity: 5},
		Quantity: 1,
	})
	backend := &cartBackend{items: items}
	store := newTestStore(t, backend)
	require.NoError(t, store.Refresh())

	assert.Equal(t, "550.48", store.TotalPrice())
}

func TestAddRejectsNonPositiveQuantityLocally(t *testing.T) {
	backend := &cartBackend{}
	store := newTestStore(t, backend)

	err := store.Add(10, 0)
	var validationErr *api.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, int32(0), atomic.LoadInt32(&backend.gets))
}
