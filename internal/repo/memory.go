package repo

import (
	"context"
	"sync"
	"time"

	"github.com/tazhibayda/authflow/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps users in process memory. It backs STORE_DRIVER=memory for
// local runs and the service tests; it has the same conditional-update
// semantics as the Mongo store.
type MemoryStore struct {
	mu      sync.Mutex
	byID    map[primitive.ObjectID]*domain.User
	byEmail map[string]primitive.ObjectID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[primitive.ObjectID]*domain.User),
		byEmail: make(map[string]primitive.ObjectID),
	}
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) CreateUser(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return ErrDuplicate
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	cp := *u
	m.byID[u.ID] = &cp
	m.byEmail[u.Email] = u.ID
	return nil
}

func (m *MemoryStore) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.byID[id]
	return &cp, nil
}

func (m *MemoryStore) FindUserByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryStore) SetVerifyOTP(_ context.Context, id primitive.ObjectID, code string, expiresAt time.Time) error {
	return m.mutate(id, func(u *domain.User) error {
		u.VerifyOTP, u.VerifyOTPExpiry = code, expiresAt.UTC()
		return nil
	})
}

func (m *MemoryStore) ConsumeVerifyOTP(_ context.Context, id primitive.ObjectID, code string) error {
	return m.mutate(id, func(u *domain.User) error {
		if u.VerifyOTP == "" || u.VerifyOTP != code {
			return ErrStale
		}
		u.Verified = true
		u.VerifyOTP, u.VerifyOTPExpiry = "", time.Time{}
		return nil
	})
}

func (m *MemoryStore) SetResetOTP(_ context.Context, id primitive.ObjectID, code string, expiresAt time.Time) error {
	return m.mutate(id, func(u *domain.User) error {
		u.ResetOTP, u.ResetOTPExpiry = code, expiresAt.UTC()
		return nil
	})
}

func (m *MemoryStore) ConsumeResetOTP(_ context.Context, id primitive.ObjectID, code, passwordHash string) error {
	return m.mutate(id, func(u *domain.User) error {
		if u.ResetOTP == "" || u.ResetOTP != code {
			return ErrStale
		}
		u.PasswordHash = passwordHash
		u.ResetOTP, u.ResetOTPExpiry = "", time.Time{}
		return nil
	})
}

func (m *MemoryStore) mutate(id primitive.ObjectID, fn func(*domain.User) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	if err := fn(u); err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}
