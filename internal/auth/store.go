package auth

import (
	"context"
	"time"

	"booking-app/internal/domain/users"
)

// Store is the credential store. Emails passed in are already normalized.
//
// Implementations return users.ErrNotFound when no record matches and
// users.ErrDuplicateEmail when a create would violate email uniqueness.
type Store interface {
	CreateUser(ctx context.Context, u *users.User) error
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	FindByResetToken(ctx context.Context, tokenHash string) (*users.User, error)
	FindByGoogleSub(ctx context.Context, sub string) (*users.User, error)

	// SetResetToken replaces any pending token of the user with tokenHash.
	SetResetToken(ctx context.Context, email, tokenHash string, expiresAt time.Time) error

	// ConsumeResetToken atomically sets passwordHash and clears the token on the user
	// holding tokenHash, provided the token expires after now. It returns the updated user.
	ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (*users.User, error)

	// LinkGoogleAccount records the Google subject on an existing user.
	LinkGoogleAccount(ctx context.Context, email, sub string) error
}

// ResetNotifier delivers reset links. Implementations must not block on delivery.
type ResetNotifier interface {
	NotifyPasswordReset(ctx context.Context, to, name, link string) error
}
