package auth_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/backoffice/internal/auth"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// memStore is an in-memory CredentialStore guarded by a single mutex, which
// gives it the same per-row atomicity as the SQL implementation.
type memStore struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*auth.User{}}
}

func clone(u *auth.User) *auth.User {
	c := *u
	if u.ResetTokenExpiresAt != nil {
		t := *u.ResetTokenExpiresAt
		c.ResetTokenExpiresAt = &t
	}
	return &c
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == auth.NormalizeEmail(email) {
			return clone(u), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memStore) FindByID(_ context.Context, id string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return clone(u), nil
	}
	return nil, shared.ErrNotFound
}

func (m *memStore) FindByResetTokenHash(_ context.Context, tokenHash string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ResetTokenHash != "" && u.ResetTokenHash == tokenHash {
			return clone(u), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memStore) Insert(_ context.Context, user *auth.User) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := auth.NormalizeEmail(user.Email)
	for _, u := range m.users {
		if u.Email == email {
			return nil, shared.ErrDuplicateKey
		}
	}
	now := time.Now().UTC()
	stored := clone(user)
	stored.ID = uuid.NewString()
	stored.Email = email
	stored.CreatedAt, stored.UpdatedAt = now, now
	m.users[stored.ID] = stored
	return clone(stored), nil
}

func (m *memStore) UpdatePasswordHash(_ context.Context, userID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return shared.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memStore) SetResetToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return shared.ErrNotFound
	}
	u.ResetTokenHash = tokenHash
	u.ResetTokenExpiresAt = &expiresAt
	return nil
}

func (m *memStore) ClearResetToken(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return shared.ErrNotFound
	}
	u.ResetTokenHash, u.ResetTokenExpiresAt = "", nil
	return nil
}

func (m *memStore) RedeemResetToken(_ context.Context, tokenHash, passwordHash string, now time.Time) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ResetTokenHash == tokenHash && u.ResetTokenExpiresAt != nil && u.ResetTokenExpiresAt.After(now) {
			u.PasswordHash = passwordHash
			u.ResetTokenHash, u.ResetTokenExpiresAt = "", nil
			return clone(u), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memStore) PurgeExpiredResetTokens(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.users {
		if u.ResetTokenExpiresAt != nil && !u.ResetTokenExpiresAt.After(now) {
			u.ResetTokenHash, u.ResetTokenExpiresAt = "", nil
			n++
		}
	}
	return n, nil
}

func (m *memStore) user(email string) *auth.User {
	u, _ := m.FindByEmail(context.Background(), email)
	return u
}

var _ auth.CredentialStore = (*memStore)(nil)
