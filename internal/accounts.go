package internal

import (
	"context"
	"sync"

	"github.com/DrGermanius/Glonni/internal/model"
)

// MemoryAccounts keeps users and profiles in process memory. It backs the
// identity provider when no database is configured.
type MemoryAccounts struct {
	mu       sync.RWMutex
	users    map[string]model.User
	profiles map[string]model.Profile
}

func NewMemoryAccounts() *MemoryAccounts {
	return &MemoryAccounts{
		users:    make(map[string]model.User),
		profiles: make(map[string]model.Profile),
	}
}

func (m *MemoryAccounts) Register(_ context.Context, login, password string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[login]; ok {
		return 0, ErrLoginIsAlreadyTaken
	}

	u := model.User{ID: len(m.users) + 1, Login: login, Password: password}
	m.users[login] = u
	return u.ID, nil
}

func (m *MemoryAccounts) IsUserExist(_ context.Context, login string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.users[login]
	return ok, nil
}

func (m *MemoryAccounts) GetCredentials(_ context.Context, login string) (int, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[login]
	if !ok {
		return 0, "", ErrInvalidCredentials
	}
	return u.ID, u.Password, nil
}

func (m *MemoryAccounts) GetProfile(_ context.Context, id string) (model.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[id]
	if !ok {
		return model.Profile{}, ErrNoRecords
	}
	return p, nil
}

func (m *MemoryAccounts) CreateProfile(_ context.Context, p model.Profile) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[p.ID]; ok {
		return false, nil
	}
	m.profiles[p.ID] = p
	return true, nil
}

func (m *MemoryAccounts) UpdateProfile(_ context.Context, p model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[p.ID]; !ok {
		return ErrNoRecords
	}
	m.profiles[p.ID] = p
	return nil
}

func (m *MemoryAccounts) FindProfileByAccount(_ context.Context, accountID string) (model.Profile, error) {
	return m.find(func(p model.Profile) bool { return p.AccountID == accountID })
}

func (m *MemoryAccounts) FindProfileByVendor(_ context.Context, vendorID string) (model.Profile, error) {
	return m.find(func(p model.Profile) bool { return p.VendorID == vendorID })
}

func (m *MemoryAccounts) find(match func(model.Profile) bool) (model.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.profiles {
		if match(p) {
			return p, nil
		}
	}
	return model.Profile{}, ErrNoRecords
}
