package checkout

import (
	"context"
	"errors"
	"testing"

	"fempowered-storefront/internal/domain"
	"fempowered-storefront/internal/payment"
)

func placePendingOrder(t *testing.T, orders *stubOrders, payments *stubPayments) *domain.Order {
	t.Helper()
	cart := &stubCart{lines: testLines()}
	svc := newTestService(orders, &stubUsers{}, nil, payments)
	order, err := svc.PlaceOrder(context.Background(), testInput(), cart, nil)
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if _, err := svc.StartPayment(context.Background(), order); err != nil {
		t.Fatalf("StartPayment: %v", err)
	}
	return order
}

func TestConfirm_HappyPath(t *testing.T) {
	orders := newStubOrders()
	payments := &stubPayments{
		intent: &payment.Intent{ID: "pi_123", ClientSecret: "pi_123_secret_x", Status: payment.StatusSucceeded, LatestChargeID: "ch_1"},
		charge: &payment.Charge{ID: "ch_1", ReceiptURL: "https://pay.example/receipt/ch_1"},
	}
	order := placePendingOrder(t, orders, payments)
	svc := newTestService(orders, &stubUsers{}, nil, payments)

	got, err := svc.Confirm(context.Background(), order.ID, "pi_123")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if got.Status != domain.OrderPaid {
		t.Fatalf("expected paid, got %s", got.Status)
	}
	if got.ReceiptURL != "https://pay.example/receipt/ch_1" {
		t.Fatalf("receipt url not recorded: %q", got.ReceiptURL)
	}
}

func TestConfirm_ReferenceMismatch(t *testing.T) {
	orders := newStubOrders()
	payments := &stubPayments{
		intent: &payment.Intent{ID: "pi_123", ClientSecret: "s", Status: payment.StatusSucceeded},
	}
	order := placePendingOrder(t, orders, payments)
	svc := newTestService(orders, &stubUsers{}, nil, payments)

	_, err := svc.Confirm(context.Background(), order.ID, "pi_somebody_elses")
	if !errors.Is(err, domain.ErrPaymentMismatch) {
		t.Fatalf("expected ErrPaymentMismatch, got %v", err)
	}
	stored, _ := orders.GetByID(context.Background(), order.ID)
	if stored.Status != domain.OrderPending {
		t.Fatalf("mismatch must not mutate the order, got %s", stored.Status)
	}
}

func TestConfirm_ProviderNotSucceeded(t *testing.T) {
	orders := newStubOrders()
	payments := &stubPayments{
		intent: &payment.Intent{ID: "pi_123", ClientSecret: "s", Status: "requires_payment_method"},
	}
	order := placePendingOrder(t, orders, payments)
	svc := newTestService(orders, &stubUsers{}, nil, payments)

	_, err := svc.Confirm(context.Background(), order.ID, "pi_123")
	if !errors.Is(err, domain.ErrPaymentIncomplete) {
		t.Fatalf("expected ErrPaymentIncomplete, got %v", err)
	}
	stored, _ := orders.GetByID(context.Background(), order.ID)
	if stored.Status != domain.OrderPending {
		t.Fatalf("premature confirmation must leave the order pending, got %s", stored.Status)
	}
}

func TestConfirm_Idempotent(t *testing.T) {
	orders := newStubOrders()
	payments := &stubPayments{
		intent: &payment.Intent{ID: "pi_123", ClientSecret: "s", Status: payment.StatusSucceeded, LatestChargeID: "ch_1"},
		charge: &payment.Charge{ID: "ch_1", ReceiptURL: "https://pay.example/receipt/ch_1"},
	}
	order := placePendingOrder(t, orders, payments)
	svc := newTestService(orders, &stubUsers{}, nil, payments)

	first, err := svc.Confirm(context.Background(), order.ID, "pi_123")
	if err != nil {
		t.Fatalf("first Confirm: %v", err)
	}
	second, err := svc.Confirm(context.Background(), order.ID, "pi_123")
	if err != nil {
		t.Fatalf("second Confirm: %v", err)
	}
	if first.Status != domain.OrderPaid || second.Status != domain.OrderPaid {
		t.Fatalf("both confirms must end paid")
	}
	if second.ReceiptURL != first.ReceiptURL {
		t.Fatalf("replayed confirm must not rewrite the receipt")
	}
}

func TestHandleProviderEvent_SucceededThenReplay(t *testing.T) {
	orders := newStubOrders()
	payments := &stubPayments{
		intent: &payment.Intent{ID: "pi_123", ClientSecret: "s", Status: payment.StatusSucceeded, LatestChargeID: "ch_1"},
		charge: &payment.Charge{ID: "ch_1", ReceiptURL: "https://pay.example/receipt/ch_1"},
		event:  &payment.Event{ID: "evt_1", Type: payment.EventPaymentSucceeded, PaymentIntentID: "pi_123"},
	}
	order := placePendingOrder(t, orders, payments)
	svc := newTestService(orders, &stubUsers{}, nil, payments)

	if err := svc.HandleProviderEvent(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("HandleProviderEvent: %v", err)
	}
	stored, _ := orders.GetByID(context.Background(), order.ID)
	if stored.Status != domain.OrderPaid {
		t.Fatalf("expected paid after event, got %s", stored.Status)
	}
	if stored.ReceiptURL == "" {
		t.Fatalf("receipt url must be recorded from the event path")
	}

	// Replay: same event again converges on the same state.
	if err := svc.HandleProviderEvent(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("replayed event: %v", err)
	}
	replayed, _ := orders.GetByID(context.Background(), order.ID)
	if replayed.Status != domain.OrderPaid || replayed.ReceiptURL != stored.ReceiptURL {
		t.Fatalf("replay changed state: %+v", replayed)
	}
}

func TestHandleProviderEvent_LateFailureAfterPaidIsNoop(t *testing.T) {
	orders := newStubOrders()
	payments := &stubPayments{
		intent: &payment.Intent{ID: "pi_123", ClientSecret: "s", Status: payment.StatusSucceeded, LatestChargeID: "ch_1"},
		charge: &payment.Charge{ID: "ch_1", ReceiptURL: "https://pay.example/r"},
		event:  &payment.Event{ID: "evt_1", Type: payment.EventPaymentSucceeded, PaymentIntentID: "pi_123"},
	}
	order := placePendingOrder(t, orders, payments)
	svc := newTestService(orders, &stubUsers{}, nil, payments)

	if err := svc.HandleProviderEvent(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("success event: %v", err)
	}

	payments.event = &payment.Event{ID: "evt_2", Type: payment.EventPaymentFailed, PaymentIntentID: "pi_123"}
	if err := svc.HandleProviderEvent(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("late failure event must be a no-op, got %v", err)
	}
	stored, _ := orders.GetByID(context.Background(), order.ID)
	if stored.Status != domain.OrderPaid {
		t.Fatalf("paid order was downgraded to %s", stored.Status)
	}
}

func TestHandleProviderEvent_SucceededAfterFailedIsAcknowledged(t *testing.T) {
	orders := newStubOrders()
	payments := &stubPayments{
		intent: &payment.Intent{ID: "pi_123", ClientSecret: "s", Status: payment.StatusSucceeded, LatestChargeID: "ch_1"},
		charge: &payment.Charge{ID: "ch_1", ReceiptURL: "https://pay.example/r"},
		event:  &payment.Event{ID: "evt_1", Type: payment.EventPaymentFailed, PaymentIntentID: "pi_123"},
	}
	order := placePendingOrder(t, orders, payments)
	svc := newTestService(orders, &stubUsers{}, nil, payments)

	if err := svc.HandleProviderEvent(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("failure event: %v", err)
	}

	// A success event delivered out of order must be swallowed, not surfaced
	// as an error the provider would retry forever.
	payments.event = &payment.Event{ID: "evt_2", Type: payment.EventPaymentSucceeded, PaymentIntentID: "pi_123"}
	if err := svc.HandleProviderEvent(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("out-of-order success event must be acknowledged, got %v", err)
	}
	stored, _ := orders.GetByID(context.Background(), order.ID)
	if stored.Status != domain.OrderFailed {
		t.Fatalf("settled order must keep its state, got %s", stored.Status)
	}
}

func TestHandleProviderEvent_FailedMarksPendingOrder(t *testing.T) {
	orders := newStubOrders()
	payments := &stubPayments{
		intent: &payment.Intent{ID: "pi_123", ClientSecret: "s"},
		event:  &payment.Event{ID: "evt_1", Type: payment.EventPaymentFailed, PaymentIntentID: "pi_123"},
	}
	order := placePendingOrder(t, orders, payments)
	svc := newTestService(orders, &stubUsers{}, nil, payments)

	if err := svc.HandleProviderEvent(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("HandleProviderEvent: %v", err)
	}
	stored, _ := orders.GetByID(context.Background(), order.ID)
	if stored.Status != domain.OrderFailed {
		t.Fatalf("expected failed, got %s", stored.Status)
	}
}

func TestHandleProviderEvent_BadSignature(t *testing.T) {
	orders := newStubOrders()
	payments := &stubPayments{
		intent:    &payment.Intent{ID: "pi_123", ClientSecret: "s"},
		verifyErr: domain.ErrInvalidSignature,
	}
	order := placePendingOrder(t, orders, payments)
	svc := newTestService(orders, &stubUsers{}, nil, payments)

	err := svc.HandleProviderEvent(context.Background(), []byte(`{}`), "bad")
	if !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	stored, _ := orders.GetByID(context.Background(), order.ID)
	if stored.Status != domain.OrderPending {
		t.Fatalf("unverified event must not mutate state, got %s", stored.Status)
	}
}

func TestHandleProviderEvent_UnknownIntentIsTolerated(t *testing.T) {
	orders := newStubOrders()
	payments := &stubPayments{
		event: &payment.Event{ID: "evt_1", Type: payment.EventPaymentSucceeded, PaymentIntentID: "pi_unseen"},
	}
	svc := newTestService(orders, &stubUsers{}, nil, payments)

	if err := svc.HandleProviderEvent(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("event ahead of checkout must not error, got %v", err)
	}
}
