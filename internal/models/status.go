package models

// OrderStatus is the order lifecycle enumeration. "cancelled" and
// "delivered" are terminal.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusInTransit      OrderStatus = "in_transit"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusInTransit,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPending:        "Pending",
	OrderStatusConfirmed:      "Confirmed",
	OrderStatusInTransit:      "In Transit",
	OrderStatusOutForDelivery: "Out for Delivery",
	OrderStatusDelivered:      "Delivered",
	OrderStatusCancelled:      "Cancelled",
}

// Label returns the display name, falling back to the raw value for
// statuses this client does not know about.
func (s OrderStatus) Label() string {
	if l, ok := orderStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// IsTerminal reports whether no further manual transition is offered.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusDelivered
}

// PaymentMethod enumerates how an order is paid.
type PaymentMethod string

const (
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentMethodMobileBanking  PaymentMethod = "mobile_banking"
	PaymentMethodBankTransfer   PaymentMethod = "bank_transfer"
	PaymentMethodCard           PaymentMethod = "card"
)

// PaymentMethods lists the methods the admin dropdown offers.
var PaymentMethods = []PaymentMethod{
	PaymentMethodCashOnDelivery,
	PaymentMethodMobileBanking,
	PaymentMethodBankTransfer,
	PaymentMethodCard,
}

var paymentMethodLabels = map[PaymentMethod]string{
	PaymentMethodCashOnDelivery: "Cash on Delivery",
	PaymentMethodMobileBanking:  "Mobile Banking",
	PaymentMethodBankTransfer:   "Bank Transfer",
	PaymentMethodCard:           "Card Payment",
}

// Label returns the display name. An empty method reads as the default
// "Cash on Delivery", matching how the storefront renders old orders.
func (m PaymentMethod) Label() string {
	if l, ok := paymentMethodLabels[m]; ok {
		return l
	}
	if m == "" {
		return paymentMethodLabels[PaymentMethodCashOnDelivery]
	}
	return string(m)
}

// PaymentStatus enumerates the admin-managed payment states.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// PaymentStatuses lists the states offered by the payments dropdown.
var PaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusPaid,
	PaymentStatusFailed,
	PaymentStatusRefunded,
}
