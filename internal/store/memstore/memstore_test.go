package memstore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-app/internal/domain/users"
	"booking-app/internal/store/memstore"
)

func seed(t *testing.T, s *memstore.Store, email string) {
	t.Helper()
	require.NoError(t, s.CreateUser(context.Background(), &users.User{
		ID:           email,
		Email:        email,
		Name:         "Test",
		PasswordHash: "old",
		Role:         users.RolePatient,
	}))
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := memstore.New()
	seed(t, s, "a@example.com")

	err := s.CreateUser(context.Background(), &users.User{ID: "x", Email: "a@example.com"})
	assert.ErrorIs(t, err, users.ErrDuplicateEmail)
}

func TestFindByEmail_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	seed(t, s, "a@example.com")

	u, err := s.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	u.Name = "changed"

	again, err := s.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Test", again.Name)

	_, err = s.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, users.ErrNotFound)
}

func TestSetResetToken_Overwrites(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	seed(t, s, "a@example.com")
	exp := time.Now().Add(time.Hour)

	require.NoError(t, s.SetResetToken(ctx, "a@example.com", "h1", exp))
	require.NoError(t, s.SetResetToken(ctx, "a@example.com", "h2", exp))

	_, err := s.FindByResetToken(ctx, "h1")
	assert.ErrorIs(t, err, users.ErrNotFound)

	u, err := s.FindByResetToken(ctx, "h2")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)

	assert.ErrorIs(t, s.SetResetToken(ctx, "missing@example.com", "h3", exp), users.ErrNotFound)
}

func TestFindByResetToken_EmptyNeverMatches(t *testing.T) {
	s := memstore.New()
	seed(t, s, "a@example.com")

	_, err := s.FindByResetToken(context.Background(), "")
	assert.ErrorIs(t, err, users.ErrNotFound)
}

func TestConsumeResetToken(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("replaces password and clears token", func(t *testing.T) {
		s := memstore.New()
		seed(t, s, "a@example.com")
		require.NoError(t, s.SetResetToken(ctx, "a@example.com", "h", now.Add(time.Hour)))

		u, err := s.ConsumeResetToken(ctx, "h", "new", now)
		require.NoError(t, err)
		assert.Equal(t, "new", u.PasswordHash)
		assert.Empty(t, u.ResetTokenHash)
		assert.Nil(t, u.ResetExpiresAt)

		_, err = s.ConsumeResetToken(ctx, "h", "newer", now)
		assert.ErrorIs(t, err, users.ErrNotFound)
	})

	t.Run("expired token is not consumed", func(t *testing.T) {
		s := memstore.New()
		seed(t, s, "a@example.com")
		require.NoError(t, s.SetResetToken(ctx, "a@example.com", "h", now))

		_, err := s.ConsumeResetToken(ctx, "h", "new", now)
		assert.ErrorIs(t, err, users.ErrNotFound)

		u, err := s.FindByEmail(ctx, "a@example.com")
		require.NoError(t, err)
		assert.Equal(t, "old", u.PasswordHash)
	})
}

func TestConsumeResetToken_ConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := memstore.New()
	seed(t, s, "a@example.com")
	require.NoError(t, s.SetResetToken(ctx, "a@example.com", "h", now.Add(time.Hour)))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.ConsumeResetToken(ctx, "h", "new", now); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestGoogleSubject(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	seed(t, s, "a@example.com")

	_, err := s.FindByGoogleSub(ctx, "sub-1")
	assert.ErrorIs(t, err, users.ErrNotFound)

	require.NoError(t, s.LinkGoogleAccount(ctx, "a@example.com", "sub-1"))

	u, err := s.FindByGoogleSub(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)

	assert.ErrorIs(t, s.LinkGoogleAccount(ctx, "missing@example.com", "sub-2"), users.ErrNotFound)
}
