package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"fempowered-storefront/internal/config"
	"fempowered-storefront/internal/domain"
	"fempowered-storefront/internal/payment"
	orderrepo "fempowered-storefront/internal/repository/order"
)

// Cart is the slice of the cart store order assembly needs: the resolved
// snapshot and the ability to empty it after a successful order.
type Cart interface {
	Lines(ctx context.Context) ([]domain.CartLine, error)
	Clear()
}

type orderStore interface {
	Create(ctx context.Context, in orderrepo.CreateInput) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByPaymentIntent(ctx context.Context, paymentIntentID string) (*domain.Order, error)
	SetPaymentIntent(ctx context.Context, id int64, paymentIntentID string) error
	MarkPaid(ctx context.Context, id int64, receiptURL string) error
	MarkFailed(ctx context.Context, id int64) error
}

type addressStore interface {
	UpsertAddress(ctx context.Context, a domain.UserAddress) error
}

type catalogStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetByName(ctx context.Context, name string) (*domain.Product, error)
}

// Service implements order assembly and the payment confirmation guard.
type Service struct {
	orders   orderStore
	users    addressStore
	catalog  catalogStore
	payments payment.Client
	currency string
	prefix   string
	rates    config.ShippingRates
	logger   *log.Logger
}

func New(orders orderStore, users addressStore, catalog catalogStore, payments payment.Client, cfg config.Config, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		orders:   orders,
		users:    users,
		catalog:  catalog,
		payments: payments,
		currency: cfg.Currency,
		prefix:   cfg.OrderPrefix,
		rates:    cfg.Shipping,
		logger:   logger,
	}
}

// Input is the validated contact/address/shipping payload for checkout.
type Input struct {
	FullName              string
	Email                 string
	Phone                 string
	Shipping              domain.Address
	Method                domain.ShippingMethod
	BillingSameAsShipping bool
	Billing               domain.Address
}

// PlaceOrder snapshots the cart into a persisted pending order with frozen
// line items. The cart must be non-empty with a positive subtotal, otherwise
// domain.ErrEmptyCart and nothing is written. On success the cart is cleared
// and, for authenticated users, the saved address profile is upserted.
func (s *Service) PlaceOrder(ctx context.Context, in Input, cart Cart, userID *int64) (*domain.Order, error) {
	lines, err := cart.Lines(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot cart: %w", err)
	}
	subtotal := Subtotal(lines)
	if len(lines) == 0 || subtotal <= 0 {
		return nil, domain.ErrEmptyCart
	}
	shipping := ShippingCost(in.Method, subtotal, s.rates)
	total := GrandTotal(subtotal, shipping)

	billing := in.Billing
	if in.BillingSameAsShipping {
		billing = in.Shipping
	}

	items := make([]orderrepo.ItemInput, 0, len(lines))
	for _, line := range lines {
		items = append(items, orderrepo.ItemInput{
			ProductID:      s.resolveProductRef(ctx, line),
			ProductName:    line.Name,
			Size:           line.Size,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
		})
	}

	order, err := s.orders.Create(ctx, orderrepo.CreateInput{
		UserID:          userID,
		FullName:        in.FullName,
		Email:           in.Email,
		Phone:           in.Phone,
		ShippingAddress: in.Shipping,
		BillingAddress:  billing,
		Method:          in.Method,
		Currency:        s.currency,
		SubtotalCents:   subtotal,
		ShippingCents:   shipping,
		TotalCents:      total,
		Items:           items,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	cart.Clear()

	if userID != nil {
		profile := domain.UserAddress{
			UserID:                *userID,
			FullName:              in.FullName,
			Email:                 in.Email,
			Phone:                 in.Phone,
			Shipping:              in.Shipping,
			BillingSameAsShipping: in.BillingSameAsShipping,
			Billing:               billing,
		}
		if err := s.users.UpsertAddress(ctx, profile); err != nil {
			// The order is placed; a profile write failure must not undo it.
			s.logger.Printf("checkout: address upsert for user=%d failed: %v", *userID, err)
		}
	}

	s.logger.Printf("checkout: order %s placed, subtotal=%d shipping=%d total=%d",
		order.Number(s.prefix), subtotal, shipping, total)
	return order, nil
}

// StartPayment creates the provider-side payment intent for the order's
// grand total and records the intent id on the order. Returns the client
// secret the frontend needs. Reopening the payment step reuses the recorded
// intent, so a client secret handed out earlier keeps working and its
// provider events still address this order.
func (s *Service) StartPayment(ctx context.Context, order *domain.Order) (string, error) {
	if order.PaymentIntentID != "" {
		intent, err := s.payments.GetIntent(ctx, order.PaymentIntentID)
		if err != nil {
			return "", fmt.Errorf("retrieve payment intent: %w", err)
		}
		return intent.ClientSecret, nil
	}

	intent, err := s.payments.CreateIntent(ctx, order.TotalCents, s.currency, map[string]string{
		"order_id":     fmt.Sprintf("%d", order.ID),
		"order_number": order.Number(s.prefix),
	})
	if err != nil {
		return "", err
	}
	if err := s.orders.SetPaymentIntent(ctx, order.ID, intent.ID); err != nil {
		return "", fmt.Errorf("record payment intent: %w", err)
	}
	return intent.ClientSecret, nil
}

// GetOrder fetches an order by its display number.
func (s *Service) GetOrder(ctx context.Context, number string) (*domain.Order, error) {
	id, err := domain.ParseOrderNumber(s.prefix, number)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return s.orders.GetByID(ctx, id)
}

// OrderPrefix exposes the configured display-number prefix.
func (s *Service) OrderPrefix() string { return s.prefix }

// resolveProductRef finds the live product an order item should reference,
// by id first and then by exact name as a logged fallback. A nil result is
// tolerated; the item keeps its frozen name and price.
func (s *Service) resolveProductRef(ctx context.Context, line domain.CartLine) *int64 {
	p, err := s.catalog.GetByID(ctx, line.ProductID)
	if err == nil {
		return &p.ID
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.logger.Printf("checkout: product lookup id=%d failed: %v", line.ProductID, err)
		return nil
	}
	p, err = s.catalog.GetByName(ctx, line.Name)
	if err != nil {
		s.logger.Printf("checkout: product %d (%q) unresolvable, order item keeps frozen snapshot only", line.ProductID, line.Name)
		return nil
	}
	// Name matching can pair differently priced products that share a name,
	// so it is never silent.
	s.logger.Printf("checkout: product id=%d missing, matched %q to product id=%d by name", line.ProductID, line.Name, p.ID)
	return &p.ID
}
