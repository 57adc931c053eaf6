package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrIntentNotFound is returned by the memory processor for unknown intent ids.
var ErrIntentNotFound = errors.New("payment intent not found")

// MemoryProcessor is an in-memory Processor for tests. Created intents start
// in StatusRequiresPayment; tests mark them succeeded to simulate the payer
// completing the charge out-of-band.
type MemoryProcessor struct {
	mu      sync.Mutex
	intents map[string]Intent
	nextID  int

	createErr   error
	retrieveErr error
}

// NewMemoryProcessor returns an empty in-memory processor.
func NewMemoryProcessor() *MemoryProcessor {
	return &MemoryProcessor{intents: make(map[string]Intent), nextID: 1}
}

// FailWith makes subsequent calls return the given errors, simulating an
// unreachable processor. Pass nils to clear.
func (m *MemoryProcessor) FailWith(createErr, retrieveErr error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createErr = createErr
	m.retrieveErr = retrieveErr
}

// CompletePayment transitions an intent to succeeded, as the payer would.
func (m *MemoryProcessor) CompletePayment(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.intents[id]
	if !ok {
		return ErrIntentNotFound
	}
	in.Status = StatusSucceeded
	m.intents[id] = in
	return nil
}

func (m *MemoryProcessor) CreateIntent(ctx context.Context, amountMinor int64, currency string, meta Metadata) (*Intent, error) {
	if amountMinor <= 0 {
		return nil, ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	in := Intent{
		ID:           fmt.Sprintf("pi_mem_%d", m.nextID),
		ClientSecret: fmt.Sprintf("pi_mem_%d_secret", m.nextID),
		Status:       StatusRequiresPayment,
		Amount:       amountMinor,
	}
	m.nextID++
	m.intents[in.ID] = in
	return &in, nil
}

func (m *MemoryProcessor) RetrieveIntent(ctx context.Context, id string) (*Intent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.retrieveErr != nil {
		return nil, m.retrieveErr
	}
	in, ok := m.intents[id]
	if !ok {
		return nil, ErrIntentNotFound
	}
	return &in, nil
}
