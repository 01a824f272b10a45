package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a mango variety in the catalog. Prices arrive as decimal
// strings on the wire, so every money field is decimal.Decimal.
type Product struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	Image         string          `json:"image"`
	AverageRating float64         `json:"average_rating"`
	TotalRatings  int             `json:"total_ratings"`
}

// CartItem is one line of the authenticated user's cart. The product
// snapshot is embedded under the API's "mango_category" key.
type CartItem struct {
	ID       int     `json:"id"`
	Product  Product `json:"mango_category"`
	Quantity int     `json:"quantity"`
}

// LineTotal is the display subtotal for the line (price × quantity).
func (ci CartItem) LineTotal() decimal.Decimal {
	return ci.Product.Price.Mul(decimal.NewFromInt(int64(ci.Quantity)))
}

// Feedback is one rating+comment attached to an order item, unique per
// item. The public product feedback listing reuses the same shape with
// the reviewer fields populated.
type Feedback struct {
	ID        int       `json:"id,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	UserName  string    `json:"user_name,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// OrderItem is a line of a placed order with the product details
// snapshotted at order time.
type OrderItem struct {
	ID          int             `json:"id"`
	MangoName   string          `json:"mango_name"`
	MangoImage  string          `json:"mango_image"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Feedback    *Feedback       `json:"feedback,omitempty"`
}

// Order as returned by the with-items endpoints.
type Order struct {
	ID              int             `json:"id"`
	UserName        string          `json:"user_name"`
	UserEmail       string          `json:"user_email"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	OrderDate       time.Time       `json:"order_date"`
	Status          OrderStatus     `json:"status"`
	BillingAddress  string          `json:"billing_address"`
	ShippingAddress string          `json:"shipping_address"`
	PhoneNumber     string          `json:"phone_number"`
	AdditionalPhone string          `json:"additional_phone"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	Items           []OrderItem     `json:"items"`
}

// Payment row as listed on the admin payments screen.
type Payment struct {
	ID            int             `json:"id"`
	OrderID       int             `json:"order"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	PaymentDate   time.Time       `json:"payment_date"`
}

// User is the account half of the profile response.
type User struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

// Profile holds the contact/address fields prefilled into checkout.
type Profile struct {
	ImageURL        string `json:"image_url"`
	PhoneNumber     string `json:"phone_number"`
	AdditionalPhone string `json:"additional_phone"`
	BillingAddress  string `json:"billing_address"`
	ShippingAddress string `json:"shipping_address"`
}

// ProfileResponse mirrors GET /profile/: account fields nested under
// "user", editable contact fields under "profile", and the staff flags
// duplicated at the top level for the admin gate.
type ProfileResponse struct {
	User        User    `json:"user"`
	Profile     Profile `json:"profile"`
	IsStaff     bool    `json:"is_staff"`
	IsSuperuser bool    `json:"is_superuser"`
}

// IsAdmin reports whether the server granted back-office access. The
// backend enforces authorization independently; this only gates the UI.
func (p ProfileResponse) IsAdmin() bool {
	return p.IsStaff || p.IsSuperuser || p.User.IsStaff || p.User.IsSuperuser
}
