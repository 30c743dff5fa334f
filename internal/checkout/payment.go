package checkout

import (
	"context"
	"errors"
	"fmt"

	"fempowered-storefront/internal/domain"
	"fempowered-storefront/internal/payment"
)

// Confirm reconciles a client-reported payment confirmation against the
// stored order. The provider is always re-queried for the authoritative
// status; the client-supplied id is only trusted to address the order, never
// to prove payment. Confirming the same payment twice is a no-op.
func (s *Service) Confirm(ctx context.Context, orderID int64, providerPaymentID string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentIntentID == "" || providerPaymentID != order.PaymentIntentID {
		s.logger.Printf("checkout: SECURITY payment reference mismatch on order=%d, got %q want %q",
			orderID, providerPaymentID, order.PaymentIntentID)
		return nil, domain.ErrPaymentMismatch
	}

	intent, err := s.payments.GetIntent(ctx, order.PaymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("verify payment status: %w", err)
	}
	if intent.Status != payment.StatusSucceeded {
		// Confirmation attempted before the provider finished; the order
		// stays pending and the client may retry.
		return nil, domain.ErrPaymentIncomplete
	}

	receiptURL := s.receiptURL(ctx, intent)
	if err := s.orders.MarkPaid(ctx, order.ID, receiptURL); err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, order.ID)
}

// HandleProviderEvent applies an asynchronous provider notification to the
// order it references. The payload signature is verified before anything
// else; replays and out-of-order deliveries converge on the same end state.
func (s *Service) HandleProviderEvent(ctx context.Context, payload []byte, signature string) error {
	event, err := s.payments.VerifyEvent(payload, signature)
	if err != nil {
		s.logger.Printf("checkout: SECURITY rejected provider event: %v", err)
		return err
	}

	switch event.Type {
	case payment.EventPaymentSucceeded:
		order, err := s.orders.GetByPaymentIntent(ctx, event.PaymentIntentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// The order row is written by checkout; an event racing ahead
				// of it will be retried by the provider.
				s.logger.Printf("checkout: event %s references unknown intent %s", event.ID, event.PaymentIntentID)
				return nil
			}
			return err
		}
		var receiptURL string
		if intent, err := s.payments.GetIntent(ctx, event.PaymentIntentID); err == nil {
			receiptURL = s.receiptURL(ctx, intent)
		} else {
			s.logger.Printf("checkout: receipt lookup for intent %s failed: %v", event.PaymentIntentID, err)
		}
		if err := s.orders.MarkPaid(ctx, order.ID, receiptURL); err != nil {
			if errors.Is(err, domain.ErrInvalidTransition) {
				// Out-of-order delivery after the order already settled in
				// another state. Acknowledge so the provider stops retrying.
				s.logger.Printf("checkout: event %s cannot pay order %d in status %s, dropped", event.ID, order.ID, order.Status)
				return nil
			}
			return err
		}
		return nil

	case payment.EventPaymentFailed:
		order, err := s.orders.GetByPaymentIntent(ctx, event.PaymentIntentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return err
		}
		return s.orders.MarkFailed(ctx, order.ID)
	}

	s.logger.Printf("checkout: ignoring provider event type %s", event.Type)
	return nil
}

func (s *Service) receiptURL(ctx context.Context, intent *payment.Intent) string {
	if intent.LatestChargeID == "" {
		return ""
	}
	charge, err := s.payments.GetCharge(ctx, intent.LatestChargeID)
	if err != nil {
		s.logger.Printf("checkout: charge lookup %s failed: %v", intent.LatestChargeID, err)
		return ""
	}
	return charge.ReceiptURL
}
