package service

import "errors"

// Workflow error taxonomy. Handlers map these onto HTTP status codes; callers
// never see raw store or processor errors.
var (
	// ErrInvalidInput covers missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrForbidden rejects identities the eligibility gate does not permit.
	ErrForbidden = errors.New("not permitted to register")
	// ErrNotFound covers absent users and camps.
	ErrNotFound = errors.New("not found")
	// ErrConflict signals an existing registration for the same (camp, participant).
	ErrConflict = errors.New("already registered for this camp")
	// ErrPaymentNotCompleted rejects settlement when the processor does not
	// report the intent as succeeded.
	ErrPaymentNotCompleted = errors.New("payment not completed")
	// ErrUpstreamUnavailable signals a failed call to the payment processor.
	// No local retry; the caller re-presents the same intent id.
	ErrUpstreamUnavailable = errors.New("payment processor unavailable")
)
