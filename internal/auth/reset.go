package auth

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/samber/oops"

	"booking-app/internal/domain/users"
)

// RequestPasswordReset issues a reset token for email and hands the reset link to the notifier.
// A previously pending token of the same user stops working.
// Delivery is not awaited; notifier failures are logged only.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = users.NormalizeEmail(email)
	if email == "" {
		return invalidInput("email is required")
	}

	u, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, users.ErrNotFound) {
		return ErrUnknownUser
	}
	if err != nil {
		return oops.Code("RESET_REQUEST_FAILED").With("operation", "FindByEmail").Wrap(err)
	}

	token, err := s.tokens.Issue()
	if err != nil {
		return err
	}

	expiresAt := s.NowFunc().Add(s.cfg.ResetTokenTTL)
	if err := s.store.SetResetToken(ctx, email, HashToken(token), expiresAt); err != nil {
		return oops.Code("RESET_REQUEST_FAILED").
			With("operation", "SetResetToken").
			With("user_id", u.ID).
			Wrap(err)
	}

	if err := s.notifier.NotifyPasswordReset(ctx, u.Email, u.Name, s.resetLink(token)); err != nil {
		s.logError(ctx, "failed to queue password reset email", err)
	}

	s.logger.InfoContext(ctx, "password reset requested", "user_id", u.ID, "expires_at", expiresAt)
	return nil
}

// VerifyResetToken reports whether token may still be used to reset a password.
func (s *Service) VerifyResetToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidResetToken
	}

	u, err := s.store.FindByResetToken(ctx, HashToken(token))
	if errors.Is(err, users.ErrNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return oops.Code("RESET_VERIFY_FAILED").With("operation", "FindByResetToken").Wrap(err)
	}

	if u.ResetExpiresAt == nil || !s.NowFunc().Before(*u.ResetExpiresAt) {
		return ErrResetTokenExpired
	}
	return nil
}

// CompletePasswordReset sets a new password for the holder of token and invalidates the token.
// The confirmation is checked before the token so a mismatch never burns it.
func (s *Service) CompletePasswordReset(ctx context.Context, token, password, confirm string) (*users.User, error) {
	if password != confirm {
		return nil, ErrPasswordMismatch
	}
	if token == "" {
		return nil, ErrInvalidResetToken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	u, err := s.store.ConsumeResetToken(ctx, HashToken(token), hash, s.NowFunc())
	if errors.Is(err, users.ErrNotFound) {
		return nil, ErrInvalidResetToken
	}
	if err != nil {
		return nil, oops.Code("RESET_COMPLETE_FAILED").With("operation", "ConsumeResetToken").Wrap(err)
	}

	s.logger.InfoContext(ctx, "password reset completed", "user_id", u.ID)
	return u.Redacted(), nil
}

func (s *Service) resetLink(token string) string {
	return strings.TrimRight(s.cfg.ResetBaseURL, "/") + "/reset?token=" + url.QueryEscape(token)
}
