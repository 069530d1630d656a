package directory

import (
	"context"
	"strings"
	"sync"

	"github.com/MrEthical07/goRecover"
	"github.com/MrEthical07/goRecover/policy"
)

// Memory is an in-process directory for examples and tests.
type Memory struct {
	mu       sync.RWMutex
	byEmail  map[string]*goRecover.Identity
	history  map[int64][]string
	policies map[int64]*policy.OrganizationPolicy
	setting  *policy.SystemSetting
}

func NewMemory() *Memory {
	return &Memory{
		byEmail:  map[string]*goRecover.Identity{},
		history:  map[int64][]string{},
		policies: map[int64]*policy.OrganizationPolicy{},
	}
}

func key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Add stores a copy of id, replacing any account with the same email.
func (m *Memory) Add(id goRecover.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := id
	m.byEmail[key(id.Email)] = &cp
}

func (m *Memory) SetOrganizationPolicy(p policy.OrganizationPolicy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := p
	m.policies[p.OrganizationID] = &cp
}

func (m *Memory) SetSystemSetting(s *policy.SystemSetting) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setting = s
}

func (m *Memory) FindByEmail(ctx context.Context, email string) (*goRecover.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byEmail[key(email)]
	if !ok {
		return nil, goRecover.ErrIdentityNotFound
	}
	cp := *id
	return &cp, nil
}

func (m *Memory) EmailByID(ctx context.Context, userID int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.byEmail {
		if id.ID == userID {
			return id.Email, nil
		}
	}
	return "", goRecover.ErrIdentityNotFound
}

func (m *Memory) UpdateCredentials(ctx context.Context, userID int64, passwordHash string) (*goRecover.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.byEmail {
		if id.ID == userID {
			id.PasswordHash = passwordHash
			m.history[userID] = append([]string{passwordHash}, m.history[userID]...)
			cp := *id
			return &cp, nil
		}
	}
	return nil, goRecover.ErrIdentityNotFound
}

func (m *Memory) RecentPasswordHashes(_ context.Context, userID int64, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 {
		return nil, nil
	}
	h := m.history[userID]
	if limit < len(h) {
		h = h[:limit]
	}
	return append([]string(nil), h...), nil
}

func (m *Memory) OrganizationPolicy(_ context.Context, organizationID int64) (*policy.OrganizationPolicy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.policies[organizationID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *Memory) SystemSetting(context.Context) (*policy.SystemSetting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.setting, nil
}
