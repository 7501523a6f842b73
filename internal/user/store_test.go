package user

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/neonkeys-api/internal/auth"
	"github.com/redmonkez12/neonkeys-api/internal/logging"
)

// memStore is an in-memory Store used by service and handler tests.
type memStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*User
	// forceDuplicateOnCreate simulates losing a registration race.
	forceDuplicateOnCreate bool
}

func newMemStore() *memStore {
	return &memStore{users: make(map[uuid.UUID]*User)}
}

func (m *memStore) Create(_ context.Context, p CreateParams) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.forceDuplicateOnCreate {
		return nil, ErrDuplicate
	}
	for _, u := range m.users {
		if u.Email == p.Email || u.Username == p.Username {
			return nil, ErrDuplicate
		}
	}
	now := time.Now()
	u := &User{
		ID:           uuid.New(),
		Username:     p.Username,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		Address:      p.Address,
		Phone:        p.Phone,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (m *memStore) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) EmailInUse(_ context.Context, email string, exceptID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email && u.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) List(_ context.Context) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) Update(_ context.Context, id uuid.UUID, p UpdateParams) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if p.Username != nil {
		for _, other := range m.users {
			if other.ID != id && other.Username == *p.Username {
				return nil, ErrDuplicate
			}
		}
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Address != nil {
		u.Address = p.Address
	}
	if p.Phone != nil {
		u.Phone = p.Phone
	}
	u.UpdatedAt = time.Now()
	cp := *u
	return &cp, nil
}

func (m *memStore) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.users, id)
	return u, nil
}

func (m *memStore) ToggleStatus(_ context.Context, id uuid.UUID) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.IsActive = !u.IsActive
	cp := *u
	return &cp, nil
}

var testJWTSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestService(store Store) (*Service, auth.TokenService) {
	hasher := auth.NewPasswordHasher(auth.Argon2Params{Time: 1, Memory: 64, Threads: 1, KeyLen: 16, SaltLen: 16})
	tokens, err := auth.NewJWTService(testJWTSecret)
	if err != nil {
		panic(err)
	}
	return NewService(store, hasher, tokens, 24*time.Hour, logging.Nop()), tokens
}
