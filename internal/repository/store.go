// Package repository defines the persistence boundary for the registration
// workflow. The workflow coordinator depends only on the Store interface; the
// GORM implementation backs production and the memory implementation backs tests.
package repository

import (
	"context"
	"errors"

	"medicamp/internal/domain"
)

// Sentinel errors surfaced by Store implementations.
var (
	// ErrNotFound indicates the requested user or camp does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateRegistration indicates the store's uniqueness constraint on
	// (camp, participant) rejected an insert. This is the only duplicate
	// signal the workflow consumes; there is no preceding existence check.
	ErrDuplicateRegistration = errors.New("registration already exists")
)

// Store is the persistence contract consumed by the registration workflow.
// Every method takes a context because each call is an I/O boundary.
type Store interface {
	// UserByID resolves a user record, ErrNotFound if absent.
	UserByID(ctx context.Context, id uint) (*domain.User, error)

	// CampByID resolves a camp record, ErrNotFound if absent.
	CampByID(ctx context.Context, id uint) (*domain.Camp, error)
	// CampsByOrganizer lists camps owned by the given organizer email.
	CampsByOrganizer(ctx context.Context, email string) ([]domain.Camp, error)
	// IncrementParticipantCount adds 1 to the camp's participant count as a
	// store-native atomic update. Never read-modify-write.
	IncrementParticipantCount(ctx context.Context, campID uint) error

	// CreateRegistration inserts a registration, returning
	// ErrDuplicateRegistration when the (camp, participant) pair already exists.
	CreateRegistration(ctx context.Context, reg *domain.Registration) error
	// RegistrationsByParticipant lists a participant's registrations, newest first.
	RegistrationsByParticipant(ctx context.Context, email string) ([]domain.Registration, error)
	// RegistrationsByCampIDs lists registrations belonging to any of the given camps.
	RegistrationsByCampIDs(ctx context.Context, campIDs []uint) ([]domain.Registration, error)

	// InTx runs fn against a transactional view of the store. If fn returns an
	// error nothing fn wrote is visible afterwards.
	InTx(ctx context.Context, fn func(Store) error) error
}
