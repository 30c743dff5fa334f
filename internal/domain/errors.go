package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness conflict on insert.
	ErrAlreadyExists = errors.New("already exists")
	// ErrEmptyCart is the business precondition failure for checkout on an
	// empty cart or a zero subtotal. It is user-facing, not a server fault.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrPaymentMismatch is returned when a confirmation references a payment
	// intent that does not belong to the order. Security relevant.
	ErrPaymentMismatch = errors.New("payment reference mismatch")
	// ErrPaymentIncomplete is returned when the provider does not report the
	// payment as succeeded. The order stays pending.
	ErrPaymentIncomplete = errors.New("payment not completed")
	// ErrInvalidSignature indicates a provider event whose signature could
	// not be verified. Security relevant.
	ErrInvalidSignature = errors.New("invalid event signature")
	// ErrInvalidTransition indicates a disallowed order status change.
	ErrInvalidTransition = errors.New("invalid status transition")
)
