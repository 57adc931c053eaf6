// Package service holds the registration workflow: eligibility, camp
// resolution, duplicate protection, payment settlement, and the atomic
// registration-plus-count write. Handlers stay thin; everything with an
// invariant to protect lives here.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"medicamp/internal/domain"
	"medicamp/internal/payment"
	"medicamp/internal/repository"
)

// Identity is the verified tuple decoded from the bearer token.
type Identity struct {
	UserID uint
	Email  string
	Role   string
}

// RegistrationInput carries the registrant's contact and medical fields.
type RegistrationInput struct {
	CampID           uint
	ParticipantName  string
	Phone            string
	Age              uint
	Gender           string
	EmergencyContact string
	PaymentMethod    string // cash or card; empty defaults to cash
}

// RegistrationService coordinates the registration workflow against the store
// and the payment processor.
type RegistrationService struct {
	store     repository.Store
	processor payment.Processor
	currency  string
}

// NewRegistrationService wires the workflow to its collaborators.
func NewRegistrationService(store repository.Store, processor payment.Processor, currency string) *RegistrationService {
	return &RegistrationService{store: store, processor: processor, currency: currency}
}

// CanRegister is the eligibility gate: organizers may not register as
// participants, everyone else may. Role is the only signal consulted.
func CanRegister(u *domain.User) bool {
	return u.Role != domain.RoleOrganizer
}

// Register handles the cash entry point (and direct card-method records that
// carry no processor settlement). On success the registration and the camp's
// participant count are committed together.
func (s *RegistrationService) Register(ctx context.Context, identity Identity, input RegistrationInput) (*domain.Registration, error) {
	if _, err := s.admit(ctx, identity, input); err != nil {
		return nil, err
	}

	method := input.PaymentMethod
	if method == "" {
		method = domain.PaymentMethodCash
	}
	if method != domain.PaymentMethodCash && method != domain.PaymentMethodCard {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, input.PaymentMethod)
	}
	status := domain.PaymentStatusPaid
	if method == domain.PaymentMethodCash {
		status = domain.PaymentStatusPending
	}

	reg := s.newRegistration(identity, input, method, status)
	if err := s.commit(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// CreatePaymentIntent obtains a client handle for paying a camp's fee. The
// charge amount comes from the camp record, never the client, and the intent
// carries audit metadata for the processor side.
func (s *RegistrationService) CreatePaymentIntent(ctx context.Context, identity Identity, campID uint, registrantName string) (*payment.Intent, error) {
	if registrantName == "" || identity.Email == "" {
		return nil, fmt.Errorf("%w: registrant name and email are required", ErrInvalidInput)
	}
	camp, err := s.store.CampByID(ctx, campID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown camp %d", ErrInvalidInput, campID)
		}
		return nil, err
	}

	amountMinor := int64(math.Round(camp.Fees * 100))
	if amountMinor <= 0 {
		return nil, fmt.Errorf("%w: camp fee must be positive", ErrInvalidInput)
	}

	intent, err := s.processor.CreateIntent(ctx, amountMinor, s.currency, payment.Metadata{
		CampName:        camp.Name,
		RegistrantName:  registrantName,
		RegistrantEmail: identity.Email,
		OrganizerEmail:  camp.OrganizerEmail,
	})
	if err != nil {
		if errors.Is(err, payment.ErrInvalidAmount) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return intent, nil
}

// ConfirmCardPayment settles a card registration. Payment truth is re-derived
// from the processor on every call: the claimed intent is fetched, only a
// succeeded status admits settlement, and the recorded amount is the intent's
// settled amount — client-supplied status or amount is never read.
func (s *RegistrationService) ConfirmCardPayment(ctx context.Context, identity Identity, intentID string, input RegistrationInput) (*domain.Registration, error) {
	if intentID == "" {
		return nil, fmt.Errorf("%w: payment intent id is required", ErrInvalidInput)
	}
	if _, err := s.admit(ctx, identity, input); err != nil {
		return nil, err
	}

	intent, err := s.processor.RetrieveIntent(ctx, intentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	if intent.Status != payment.StatusSucceeded {
		return nil, fmt.Errorf("%w: intent %s is %s", ErrPaymentNotCompleted, intent.ID, intent.Status)
	}

	reg := s.newRegistration(identity, input, domain.PaymentMethodCard, domain.PaymentStatusPaid)
	reg.PaymentIntentID = intent.ID
	reg.AmountPaid = float64(intent.Amount) / 100

	if err := s.commit(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// ListForParticipant returns the caller's own registrations.
func (s *RegistrationService) ListForParticipant(ctx context.Context, identity Identity) ([]domain.Registration, error) {
	return s.store.RegistrationsByParticipant(ctx, identity.Email)
}

// ListForOrganizerCamps returns registrations across all camps owned by the
// caller: first resolve the owned camps, then fetch registrations in that set.
func (s *RegistrationService) ListForOrganizerCamps(ctx context.Context, identity Identity) ([]domain.Registration, error) {
	camps, err := s.store.CampsByOrganizer(ctx, identity.Email)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(camps))
	for i, c := range camps {
		ids[i] = c.ID
	}
	return s.store.RegistrationsByCampIDs(ctx, ids)
}

// admit runs the checks shared by both entry points: resolve the user, gate
// eligibility, validate fields, resolve the camp. Any failure rejects the
// request before anything is written.
func (s *RegistrationService) admit(ctx context.Context, identity Identity, input RegistrationInput) (*domain.Camp, error) {
	user, err := s.store.UserByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, identity.UserID)
		}
		return nil, err
	}
	if !CanRegister(user) {
		return nil, fmt.Errorf("%w: organizers may not register", ErrForbidden)
	}
	if err := validate(identity, input); err != nil {
		return nil, err
	}
	camp, err := s.store.CampByID(ctx, input.CampID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: camp %d", ErrNotFound, input.CampID)
		}
		return nil, err
	}
	return camp, nil
}

func validate(identity Identity, input RegistrationInput) error {
	switch {
	case input.ParticipantName == "":
		return fmt.Errorf("%w: participant name is required", ErrInvalidInput)
	case identity.Email == "":
		return fmt.Errorf("%w: participant email is required", ErrInvalidInput)
	case input.Phone == "":
		return fmt.Errorf("%w: phone is required", ErrInvalidInput)
	case input.Age == 0:
		return fmt.Errorf("%w: age is required", ErrInvalidInput)
	case input.Gender == "":
		return fmt.Errorf("%w: gender is required", ErrInvalidInput)
	case input.EmergencyContact == "":
		return fmt.Errorf("%w: emergency contact is required", ErrInvalidInput)
	}
	return nil
}

func (s *RegistrationService) newRegistration(identity Identity, input RegistrationInput, method, status string) *domain.Registration {
	return &domain.Registration{
		CampID:           input.CampID,
		ParticipantID:    identity.UserID,
		ParticipantEmail: identity.Email,
		ParticipantName:  input.ParticipantName,
		Phone:            input.Phone,
		Age:              input.Age,
		Gender:           input.Gender,
		EmergencyContact: input.EmergencyContact,
		PaymentMethod:    method,
		Status:           domain.StatusConfirmed,
		PaymentStatus:    status,
	}
}

// commit inserts the registration and increments the camp's participant count
// in one store transaction. Duplicate protection is the store's unique index
// on (camp, participant); its violation becomes the Conflict path. There is no
// preceding existence check — the insert itself is the check.
func (s *RegistrationService) commit(ctx context.Context, reg *domain.Registration) error {
	return s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.CreateRegistration(ctx, reg); err != nil {
			if errors.Is(err, repository.ErrDuplicateRegistration) {
				return fmt.Errorf("%w: camp %d", ErrConflict, reg.CampID)
			}
			return err
		}
		return tx.IncrementParticipantCount(ctx, reg.CampID)
	})
}
