package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"medicamp/internal/domain"
)

// MemoryStore is an in-memory Store used by tests. It enforces the same
// semantics the GORM store gets from the database: a uniqueness constraint on
// (camp, participant), an atomic participant counter, and transactional
// rollback of partial writes.
type MemoryStore struct {
	mu            sync.Mutex
	users         map[uint]domain.User
	camps         map[uint]domain.Camp
	registrations map[string]domain.Registration
	nextRegID     uint

	incrementErr error
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[uint]domain.User),
		camps:         make(map[uint]domain.Camp),
		registrations: make(map[string]domain.Registration),
		nextRegID:     1,
	}
}

// AddUser seeds a user record.
func (m *MemoryStore) AddUser(u domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

// AddCamp seeds a camp record.
func (m *MemoryStore) AddCamp(c domain.Camp) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.camps[c.ID] = c
}

// FailIncrementWith makes every subsequent IncrementParticipantCount return
// err, for exercising rollback paths. Pass nil to clear.
func (m *MemoryStore) FailIncrementWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.incrementErr = err
}

func regKey(campID uint, email string) string {
	return fmt.Sprintf("%d/%s", campID, email)
}

func (m *MemoryStore) UserByID(ctx context.Context, id uint) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userByID(id)
}

func (m *MemoryStore) CampByID(ctx context.Context, id uint) (*domain.Camp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.campByID(id)
}

func (m *MemoryStore) CampsByOrganizer(ctx context.Context, email string) ([]domain.Camp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.campsByOrganizer(email)
}

func (m *MemoryStore) IncrementParticipantCount(ctx context.Context, campID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.incrementParticipantCount(campID)
}

func (m *MemoryStore) CreateRegistration(ctx context.Context, reg *domain.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createRegistration(reg)
}

func (m *MemoryStore) RegistrationsByParticipant(ctx context.Context, email string) ([]domain.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var regs []domain.Registration
	for _, r := range m.registrations {
		if r.ParticipantEmail == email {
			regs = append(regs, r)
		}
	}
	sortByIDDesc(regs)
	return regs, nil
}

func (m *MemoryStore) RegistrationsByCampIDs(ctx context.Context, campIDs []uint) ([]domain.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := make(map[uint]bool, len(campIDs))
	for _, id := range campIDs {
		wanted[id] = true
	}
	var regs []domain.Registration
	for _, r := range m.registrations {
		if wanted[r.CampID] {
			regs = append(regs, r)
		}
	}
	sortByIDDesc(regs)
	return regs, nil
}

// InTx holds the store lock for the duration of fn and restores the previous
// registration and camp state if fn fails, mirroring a database rollback.
func (m *MemoryStore) InTx(ctx context.Context, fn func(Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	savedRegs := make(map[string]domain.Registration, len(m.registrations))
	for k, v := range m.registrations {
		savedRegs[k] = v
	}
	savedCamps := make(map[uint]domain.Camp, len(m.camps))
	for k, v := range m.camps {
		savedCamps[k] = v
	}
	savedNext := m.nextRegID

	if err := fn(&memTx{s: m}); err != nil {
		m.registrations = savedRegs
		m.camps = savedCamps
		m.nextRegID = savedNext
		return err
	}
	return nil
}

// memTx is the view handed to InTx callbacks; the caller already holds the lock.
type memTx struct {
	s *MemoryStore
}

func (t *memTx) UserByID(ctx context.Context, id uint) (*domain.User, error) {
	return t.s.userByID(id)
}

func (t *memTx) CampByID(ctx context.Context, id uint) (*domain.Camp, error) {
	return t.s.campByID(id)
}

func (t *memTx) CampsByOrganizer(ctx context.Context, email string) ([]domain.Camp, error) {
	return t.s.campsByOrganizer(email)
}

func (t *memTx) IncrementParticipantCount(ctx context.Context, campID uint) error {
	return t.s.incrementParticipantCount(campID)
}

func (t *memTx) CreateRegistration(ctx context.Context, reg *domain.Registration) error {
	return t.s.createRegistration(reg)
}

func (t *memTx) RegistrationsByParticipant(ctx context.Context, email string) ([]domain.Registration, error) {
	var regs []domain.Registration
	for _, r := range t.s.registrations {
		if r.ParticipantEmail == email {
			regs = append(regs, r)
		}
	}
	sortByIDDesc(regs)
	return regs, nil
}

func (t *memTx) RegistrationsByCampIDs(ctx context.Context, campIDs []uint) ([]domain.Registration, error) {
	wanted := make(map[uint]bool, len(campIDs))
	for _, id := range campIDs {
		wanted[id] = true
	}
	var regs []domain.Registration
	for _, r := range t.s.registrations {
		if wanted[r.CampID] {
			regs = append(regs, r)
		}
	}
	sortByIDDesc(regs)
	return regs, nil
}

func (t *memTx) InTx(ctx context.Context, fn func(Store) error) error {
	return fn(t)
}

// Unlocked internals shared by the store and its transaction view.

func (m *MemoryStore) userByID(id uint) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) campByID(id uint) (*domain.Camp, error) {
	c, ok := m.camps[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *MemoryStore) campsByOrganizer(email string) ([]domain.Camp, error) {
	var camps []domain.Camp
	for _, c := range m.camps {
		if c.OrganizerEmail == email {
			camps = append(camps, c)
		}
	}
	sort.Slice(camps, func(i, j int) bool { return camps[i].ID < camps[j].ID })
	return camps, nil
}

func (m *MemoryStore) incrementParticipantCount(campID uint) error {
	if m.incrementErr != nil {
		return m.incrementErr
	}
	c, ok := m.camps[campID]
	if !ok {
		return ErrNotFound
	}
	c.ParticipantCount++
	m.camps[campID] = c
	return nil
}

func (m *MemoryStore) createRegistration(reg *domain.Registration) error {
	key := regKey(reg.CampID, reg.ParticipantEmail)
	if _, exists := m.registrations[key]; exists {
		return ErrDuplicateRegistration
	}
	reg.ID = m.nextRegID
	m.nextRegID++
	m.registrations[key] = *reg
	return nil
}

func sortByIDDesc(regs []domain.Registration) {
	sort.Slice(regs, func(i, j int) bool { return regs[i].ID > regs[j].ID })
}
