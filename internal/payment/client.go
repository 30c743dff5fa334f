package payment

import "context"

// StatusSucceeded is the provider status that allows an order to be marked
// paid.
const StatusSucceeded = "succeeded"

// Intent mirrors the provider-side payment attempt.
type Intent struct {
	ID             string
	ClientSecret   string
	Status         string
	LatestChargeID string
}

// Charge carries the receipt metadata recorded on a paid order.
type Charge struct {
	ID         string
	ReceiptURL string
}

type EventType string

const (
	EventPaymentSucceeded EventType = "payment_intent.succeeded"
	EventPaymentFailed    EventType = "payment_intent.payment_failed"
)

// Event is a verified provider notification.
type Event struct {
	ID              string
	Type            EventType
	PaymentIntentID string
}

// Client is the outbound payment-provider boundary. Implementations perform
// synchronous network calls and must honor ctx for timeouts.
type Client interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
	GetCharge(ctx context.Context, id string) (*Charge, error)
	// VerifyEvent checks the webhook signature before anything else looks at
	// the payload. Unverifiable payloads yield domain.ErrInvalidSignature.
	VerifyEvent(payload []byte, signature string) (*Event, error)
}
