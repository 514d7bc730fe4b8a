// Package memstore is an in-process credential store for local development and tests.
package memstore

import (
	"context"
	"sync"
	"time"

	"booking-app/internal/domain/users"
)

// Store keeps users in memory. It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	byEmail map[string]*users.User

	// NowFunc stamps UpdatedAt. Exposed for testing purposes.
	NowFunc func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		byEmail: make(map[string]*users.User),
		NowFunc: time.Now,
	}
}

func (s *Store) CreateUser(_ context.Context, u *users.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[u.Email]; ok {
		return users.ErrDuplicateEmail
	}
	s.byEmail[u.Email] = clone(u)
	return nil
}

func (s *Store) FindByEmail(_ context.Context, email string) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byEmail[email]
	if !ok {
		return nil, users.ErrNotFound
	}
	return clone(u), nil
}

func (s *Store) FindByResetToken(_ context.Context, tokenHash string) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u := s.byTokenLocked(tokenHash); u != nil {
		return clone(u), nil
	}
	return nil, users.ErrNotFound
}

func (s *Store) FindByGoogleSub(_ context.Context, sub string) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.byEmail {
		if u.GoogleSub != nil && *u.GoogleSub == sub {
			return clone(u), nil
		}
	}
	return nil, users.ErrNotFound
}

func (s *Store) SetResetToken(_ context.Context, email, tokenHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byEmail[email]
	if !ok {
		return users.ErrNotFound
	}
	u.ResetTokenHash = tokenHash
	u.ResetExpiresAt = &expiresAt
	u.UpdatedAt = s.NowFunc()
	return nil
}

func (s *Store) ConsumeResetToken(_ context.Context, tokenHash, passwordHash string, now time.Time) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.byTokenLocked(tokenHash)
	if u == nil || u.ResetExpiresAt == nil || !now.Before(*u.ResetExpiresAt) {
		return nil, users.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetTokenHash = ""
	u.ResetExpiresAt = nil
	u.UpdatedAt = s.NowFunc()
	return clone(u), nil
}

func (s *Store) LinkGoogleAccount(_ context.Context, email, sub string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byEmail[email]
	if !ok {
		return users.ErrNotFound
	}
	u.GoogleSub = &sub
	u.UpdatedAt = s.NowFunc()
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }

func (s *Store) byTokenLocked(tokenHash string) *users.User {
	if tokenHash == "" {
		return nil
	}
	for _, u := range s.byEmail {
		if u.ResetTokenHash == tokenHash {
			return u
		}
	}
	return nil
}

func clone(u *users.User) *users.User {
	c := *u
	if u.ResetExpiresAt != nil {
		t := *u.ResetExpiresAt
		c.ResetExpiresAt = &t
	}
	if u.GoogleSub != nil {
		sub := *u.GoogleSub
		c.GoogleSub = &sub
	}
	return &c
}
