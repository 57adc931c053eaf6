package repository

import (
	"context"
	"errors"

	"medicamp/internal/domain"

	"gorm.io/gorm"
)

// GormStore implements Store on a GORM connection. The *gorm.DB must be opened
// with TranslateError enabled so unique-index violations surface as
// gorm.ErrDuplicatedKey regardless of driver.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps a GORM connection in the Store interface.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) UserByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) CampByID(ctx context.Context, id uint) (*domain.Camp, error) {
	var camp domain.Camp
	if err := s.db.WithContext(ctx).First(&camp, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &camp, nil
}

func (s *GormStore) CampsByOrganizer(ctx context.Context, email string) ([]domain.Camp, error) {
	var camps []domain.Camp
	if err := s.db.WithContext(ctx).Where("organizer_email = ?", email).Find(&camps).Error; err != nil {
		return nil, err
	}
	return camps, nil
}

// IncrementParticipantCount issues a single UPDATE with a SQL expression so the
// increment is atomic at the store; concurrent registrations never lose updates.
func (s *GormStore) IncrementParticipantCount(ctx context.Context, campID uint) error {
	res := s.db.WithContext(ctx).Model(&domain.Camp{}).
		Where("id = ?", campID).
		UpdateColumn("participant_count", gorm.Expr("participant_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateRegistration relies on the unique index idx_camp_participant; a
// duplicate key error from the insert is the Conflict signal.
func (s *GormStore) CreateRegistration(ctx context.Context, reg *domain.Registration) error {
	if err := s.db.WithContext(ctx).Create(reg).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateRegistration
		}
		return err
	}
	return nil
}

func (s *GormStore) RegistrationsByParticipant(ctx context.Context, email string) ([]domain.Registration, error) {
	var regs []domain.Registration
	if err := s.db.WithContext(ctx).
		Where("participant_email = ?", email).
		Order("created_at desc").
		Find(&regs).Error; err != nil {
		return nil, err
	}
	return regs, nil
}

func (s *GormStore) RegistrationsByCampIDs(ctx context.Context, campIDs []uint) ([]domain.Registration, error) {
	if len(campIDs) == 0 {
		return nil, nil
	}
	var regs []domain.Registration
	if err := s.db.WithContext(ctx).
		Where("camp_id IN ?", campIDs).
		Order("created_at desc").
		Find(&regs).Error; err != nil {
		return nil, err
	}
	return regs, nil
}

// InTx delegates to the database transaction, handing fn a store bound to the
// transaction handle so the registration insert and the count increment commit
// or roll back together.
func (s *GormStore) InTx(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
