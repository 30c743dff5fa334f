package order

import (
	"context"

	"fempowered-storefront/internal/domain"
)

// ItemInput is one frozen line to persist alongside a new order.
type ItemInput struct {
	ProductID      *int64
	ProductName    string
	Size           string
	Quantity       int
	UnitPriceCents int64
}

// CreateInput carries everything needed to persist a pending order
// atomically with its items.
type CreateInput struct {
	UserID          *int64
	FullName        string
	Email           string
	Phone           string
	ShippingAddress domain.Address
	BillingAddress  domain.Address
	Method          domain.ShippingMethod
	Currency        string
	SubtotalCents   int64
	ShippingCents   int64
	TotalCents      int64
	Items           []ItemInput
}

type Repository interface {
	// Create writes the order and all items in one transaction.
	Create(ctx context.Context, in CreateInput) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByPaymentIntent(ctx context.Context, paymentIntentID string) (*domain.Order, error)
	SetPaymentIntent(ctx context.Context, id int64, paymentIntentID string) error
	// MarkPaid transitions pending -> paid and records the receipt URL.
	// Marking an already-paid order again is a no-op so provider retries are
	// safe; any other starting status is ErrInvalidTransition.
	MarkPaid(ctx context.Context, id int64, receiptURL string) error
	// MarkFailed transitions pending -> failed. A failure event arriving
	// after the order was paid is a no-op, never a downgrade.
	MarkFailed(ctx context.Context, id int64) error
	// Cancel transitions pending -> cancelled.
	Cancel(ctx context.Context, id int64) error
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	// ClaimGuestOrders links unowned orders with a matching email to the
	// user and reports how many were claimed.
	ClaimGuestOrders(ctx context.Context, userID int64, email string) (int64, error)
}
