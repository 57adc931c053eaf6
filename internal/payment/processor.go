// Package payment is the boundary to the external payment processor. The
// settlement rule lives in its contract: callers create an intent, the payer
// completes it out-of-band, and settlement re-fetches the intent from the
// processor — a caller-supplied "it succeeded" is never trusted.
package payment

import (
	"context"
	"errors"
)

// Intent statuses this system distinguishes. Anything other than succeeded
// blocks settlement.
const (
	StatusRequiresPayment = "requires_payment_method"
	StatusSucceeded       = "succeeded"
)

// ErrInvalidAmount rejects intent creation for non-positive charges.
var ErrInvalidAmount = errors.New("payment amount must be positive")

// Intent is the processor-side view of a card charge. Amount is in minor
// units (cents). Once retrieved it is read-only truth.
type Intent struct {
	ID           string // Processor intent id
	ClientSecret string // Client-side handle for completing payment
	Status       string // Processor-reported lifecycle status
	Amount       int64  // Amount in minor units as known to the processor
}

// Metadata attached to an intent for audit traceability at the processor side.
type Metadata struct {
	CampName        string
	RegistrantName  string
	RegistrantEmail string
	OrganizerEmail  string
}

// Processor creates and retrieves payment intents.
type Processor interface {
	// CreateIntent registers a charge of amountMinor (minor units) with the
	// processor and returns the handle the client uses to pay.
	CreateIntent(ctx context.Context, amountMinor int64, currency string, meta Metadata) (*Intent, error)
	// RetrieveIntent fetches the intent's current state from the processor.
	RetrieveIntent(ctx context.Context, id string) (*Intent, error)
}
