package repo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/authflow/internal/domain"
	"github.com/tazhibayda/authflow/internal/repo"
)

type userStore interface {
	CreateUser(ctx context.Context, u *domain.User) error
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	SetVerifyOTP(ctx context.Context, id primitive.ObjectID, code string, expiresAt time.Time) error
	ConsumeVerifyOTP(ctx context.Context, id primitive.ObjectID, code string) error
	SetResetOTP(ctx context.Context, id primitive.ObjectID, code string, expiresAt time.Time) error
	ConsumeResetOTP(ctx context.Context, id primitive.ObjectID, code, passwordHash string) error
}

// runStoreContract checks the behaviour both store implementations share.
func runStoreContract(t *testing.T, s userStore) {
	ctx := context.Background()

	u := &domain.User{Name: "A", Email: "a@x.com", PasswordHash: "h1"}
	require.NoError(t, s.CreateUser(ctx, u))
	require.False(t, u.ID.IsZero())

	t.Run("duplicate email", func(t *testing.T) {
		err := s.CreateUser(ctx, &domain.User{Name: "B", Email: "a@x.com", PasswordHash: "h"})
		assert.True(t, errors.Is(err, repo.ErrDuplicate), "got %v", err)
	})

	t.Run("lookups", func(t *testing.T) {
		got, err := s.FindUserByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, "A", got.Name)
		assert.False(t, got.Verified)

		_, err = s.FindUserByEmail(ctx, "A@X.COM")
		assert.ErrorIs(t, err, repo.ErrNotFound)
		_, err = s.FindUserByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(t, err, repo.ErrNotFound)
	})

	t.Run("verify otp is consumed once", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).Truncate(time.Millisecond)
		require.NoError(t, s.SetVerifyOTP(ctx, u.ID, "111111", exp))
		require.NoError(t, s.SetVerifyOTP(ctx, u.ID, "222222", exp))

		assert.ErrorIs(t, s.ConsumeVerifyOTP(ctx, u.ID, "111111"), repo.ErrStale)
		require.NoError(t, s.ConsumeVerifyOTP(ctx, u.ID, "222222"))
		assert.ErrorIs(t, s.ConsumeVerifyOTP(ctx, u.ID, "222222"), repo.ErrStale)

		got, err := s.FindUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, got.Verified)
		assert.Empty(t, got.VerifyOTP)
		assert.True(t, got.VerifyOTPExpiry.IsZero())
	})

	t.Run("reset otp swaps the hash", func(t *testing.T) {
		exp := time.Now().Add(15 * time.Minute)
		require.NoError(t, s.SetResetOTP(ctx, u.ID, "333333", exp))

		got, err := s.FindUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "333333", got.ResetOTP)
		assert.WithinDuration(t, exp, got.ResetOTPExpiry, time.Millisecond)

		assert.ErrorIs(t, s.ConsumeResetOTP(ctx, u.ID, "000000", "h2"), repo.ErrStale)
		require.NoError(t, s.ConsumeResetOTP(ctx, u.ID, "333333", "h2"))

		got, err = s.FindUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "h2", got.PasswordHash)
		assert.Empty(t, got.ResetOTP)
	})

	t.Run("unknown id", func(t *testing.T) {
		id := primitive.NewObjectID()
		assert.ErrorIs(t, s.SetVerifyOTP(ctx, id, "1", time.Now()), repo.ErrNotFound)
		assert.ErrorIs(t, s.SetResetOTP(ctx, id, "1", time.Now()), repo.ErrNotFound)
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, repo.NewMemoryStore())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := repo.NewMemoryStore()
	u := &domain.User{Name: "A", Email: "a@x.com"}
	require.NoError(t, s.CreateUser(ctx, u))

	got, err := s.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	got.Verified = true

	again, err := s.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, again.Verified)
}
