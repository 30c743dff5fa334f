package domain

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderFailed    OrderStatus = "failed"
	OrderCancelled OrderStatus = "cancelled"
)

type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
)

// ParseShippingMethod validates a wire value.
func ParseShippingMethod(v string) (ShippingMethod, error) {
	switch ShippingMethod(v) {
	case ShippingStandard, ShippingExpress:
		return ShippingMethod(v), nil
	}
	return "", fmt.Errorf("unknown shipping method %q", v)
}

// Address holds one postal address, used for both shipping and billing.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
	Country    string `json:"country"`
}

// Order is immutable once placed except for the single pending -> paid or
// pending -> failed status transition. All money fields are minor currency
// units and TotalCents = SubtotalCents + ShippingCents always holds.
type Order struct {
	ID              int64          `json:"id"`
	UserID          *int64         `json:"userId,omitempty"`
	FullName        string         `json:"fullName"`
	Email           string         `json:"email"`
	Phone           string         `json:"phone,omitempty"`
	ShippingAddress Address        `json:"shippingAddress"`
	BillingAddress  Address        `json:"billingAddress"`
	Method          ShippingMethod `json:"shippingMethod"`
	Currency        string         `json:"currency"`
	SubtotalCents   int64          `json:"subtotalCents"`
	ShippingCents   int64          `json:"shippingCents"`
	TotalCents      int64          `json:"totalCents"`
	PaymentIntentID string         `json:"-"`
	ReceiptURL      string         `json:"receiptUrl,omitempty"`
	Status          OrderStatus    `json:"status"`
	CreatedAt       time.Time      `json:"createdAt"`
	Items           []OrderItem    `json:"items,omitempty"`
}

// OrderItem is a frozen snapshot of one purchased line. Name and price are
// captured at order creation and never recomputed from the catalog.
// ProductID is a weak reference that may dangle after catalog deletions.
type OrderItem struct {
	ID             int64  `json:"id"`
	OrderID        int64  `json:"-"`
	ProductID      *int64 `json:"productId,omitempty"`
	ProductName    string `json:"productName"`
	Size           string `json:"size,omitempty"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	LineTotalCents int64  `json:"lineTotalCents"`
}

// OrderNumberWidth is the zero-padding applied to the numeric order id when
// deriving the display number.
const OrderNumberWidth = 8

// FormatOrderNumber derives the display order number from the numeric id.
func FormatOrderNumber(prefix string, id int64) string {
	return fmt.Sprintf("%s%0*d", prefix, OrderNumberWidth, id)
}

// ParseOrderNumber recovers the numeric id from a display order number.
func ParseOrderNumber(prefix, number string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(number, prefix+"%d", &id); err != nil || id <= 0 {
		return 0, fmt.Errorf("malformed order number %q", number)
	}
	return id, nil
}

// Number returns the order's display number for the given prefix.
func (o Order) Number(prefix string) string {
	return FormatOrderNumber(prefix, o.ID)
}
