// Package domain holds the error taxonomy and shared contracts of the
// donation core. Concrete entities live in the subpackages donation and
// subscription.
package domain

import "errors"

var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists is returned when a unique constraint is violated.
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidAmount is returned when a donation amount is non-positive
	// or below the configured minimum.
	ErrInvalidAmount = errors.New("invalid donation amount")

	// ErrInvalidTarget is returned when the donation target is inactive,
	// unverified, or missing.
	ErrInvalidTarget = errors.New("target is not accepting donations")

	// ErrInvalidTransition is returned when a requested status change is
	// not an edge of the donation state machine.
	ErrInvalidTransition = errors.New("invalid donation status transition")

	// ErrUnknownReference is returned when no donation matches an external
	// payment reference. Webhook callers treat this as a non-fatal no-op.
	ErrUnknownReference = errors.New("unknown payment reference")

	// ErrGatewayUnavailable is returned when the payment gateway call
	// fails or times out. Transient; callers may retry.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrSignatureVerification is returned when a webhook payload fails
	// signature verification. Non-retryable; the caller must reject.
	ErrSignatureVerification = errors.New("webhook signature verification failed")

	// ErrConcurrencyConflict signals a lost optimistic-concurrency race on
	// a donation row. Internal; the transition function retries it and it
	// never surfaces to external callers.
	ErrConcurrencyConflict = errors.New("concurrent modification conflict")
)
