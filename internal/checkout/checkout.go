// Package checkout is the order placement flow: load cart and profile,
// prefill the contact form, estimate totals, place the order. All
// totals computed here are display-only estimates; the server's
// total_amount is authoritative.
package checkout

import (
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/mangoshop/shopctl/internal/api"
	"github.com/mangoshop/shopctl/internal/cart"
	"github.com/mangoshop/shopctl/internal/metrics"
	"github.com/mangoshop/shopctl/internal/models"
)

// Orders at or above the threshold ship free, everything below pays
// the flat rate.
var (
	freeShippingThreshold = decimal.NewFromInt(1000)
	flatShippingRate      = decimal.NewFromInt(50)
)

// Flow drives one checkout. Not safe for concurrent use by multiple
// goroutines; the UI is single-threaded.
type Flow struct {
	client *api.Client
	cart   *cart.Store

	mu      sync.Mutex
	form    api.OrderRequest
	profile models.ProfileResponse
}

// NewFlow binds a checkout to the session's API client and cart store.
func NewFlow(client *api.Client, cartStore *cart.Store) *Flow {
	return &Flow{
		client: client,
		cart:   cartStore,
		form:   api.OrderRequest{PaymentMethod: models.PaymentMethodCashOnDelivery},
	}
}

// Load fetches the cart and the profile concurrently and prefills the
// form's contact/address fields from the profile. Already-edited form
// fields are overwritten; Load is the flow's entry point.
func (f *Flow) Load() error {
	var (
		wg         sync.WaitGroup
		cartErr    error
		profile    models.ProfileResponse
		profileErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		cartErr = f.cart.Refresh()
	}()
	go func() {
		defer wg.Done()
		profile, profileErr = f.client.Profile()
	}()
	wg.Wait()

	if cartErr != nil {
		return cartErr
	}
	if profileErr != nil {
		return profileErr
	}

	f.mu.Lock()
	f.profile = profile
	f.form.PhoneNumber = profile.Profile.PhoneNumber
	f.form.AdditionalPhone = profile.Profile.AdditionalPhone
	f.form.BillingAddress = profile.Profile.BillingAddress
	f.form.ShippingAddress = profile.Profile.ShippingAddress
	f.mu.Unlock()
	return nil
}

// Profile returns the loaded account info for the welcome header.
func (f *Flow) Profile() models.ProfileResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profile
}

// Form returns the current form values.
func (f *Flow) Form() api.OrderRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

// SetForm replaces the editable form fields. Only cash on delivery is
// accepted as a payment method; the others are visible but disabled.
func (f *Flow) SetForm(form api.OrderRequest) error {
	if form.PaymentMethod != "" && form.PaymentMethod != models.PaymentMethodCashOnDelivery {
		return &api.ValidationError{
			Field:   "payment_method",
			Message: "This payment method is not available yet",
		}
	}
	if form.PaymentMethod == "" {
		form.PaymentMethod = models.PaymentMethodCashOnDelivery
	}

	f.mu.Lock()
	f.form = form
	f.mu.Unlock()
	return nil
}

// Empty reports whether there is nothing to check out. An empty cart
// never gets a submittable form, only a pointer back to the catalog.
func (f *Flow) Empty() bool {
	return f.cart.Empty()
}

// Subtotal is the client-side estimate: sum of price × quantity.
func (f *Flow) Subtotal() decimal.Decimal {
	return f.cart.Total()
}

// ShippingCost applies the flat-rate rule to a subtotal: free at or
// above the threshold (inclusive), flat 50 below it.
func ShippingCost(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(freeShippingThreshold) {
		return decimal.Zero
	}
	return flatShippingRate
}

// ShippingCost is the rule applied to the current cart.
func (f *Flow) ShippingCost() decimal.Decimal {
	return ShippingCost(f.Subtotal())
}

// FinalTotal is subtotal plus shipping, display only.
func (f *Flow) FinalTotal() decimal.Decimal {
	return f.Subtotal().Add(f.ShippingCost())
}

// Validate applies the pre-flight checks. The first failing field is
// reported; nothing is sent to the server on failure.
func (f *Flow) Validate() error {
	f.mu.Lock()
	form := f.form
	f.mu.Unlock()

	switch {
	case form.PhoneNumber == "":
		return &api.ValidationError{Field: "phone_number", Message: "Phone number is required"}
	case form.BillingAddress == "":
		return &api.ValidationError{Field: "billing_address", Message: "Billing address is required"}
	case form.ShippingAddress == "":
		return &api.ValidationError{Field: "shipping_address", Message: "Shipping address is required"}
	}
	return nil
}

// PlaceOrder submits the order. Guards: non-empty cart, valid form.
// On success the cart is re-fetched (the backend empties it) so the
// local view clears, and the caller should move on to order history.
func (f *Flow) PlaceOrder() (api.OrderCreated, error) {
	if f.Empty() {
		return api.OrderCreated{}, &api.ValidationError{Field: "cart", Message: "Your cart is empty"}
	}
	if err := f.Validate(); err != nil {
		return api.OrderCreated{}, err
	}

	f.mu.Lock()
	form := f.form
	f.mu.Unlock()

	created, err := f.client.CreateOrder(form)
	if err != nil {
		metrics.OrdersPlaced.WithLabelValues("error").Inc()
		return api.OrderCreated{}, err
	}
	metrics.OrdersPlaced.WithLabelValues("ok").Inc()

	log.WithFields(log.Fields{
		"order_id": created.OrderID,
		"estimate": f.FinalTotal().StringFixed(2),
	}).Info("Order placed")

	// Authoritative state now lives with the order; the cart re-fetch
	// clears the local view.
	if err := f.cart.Refresh(); err != nil {
		log.Warn("Cart refresh after order failed: ", err)
	}

	return created, nil
}
