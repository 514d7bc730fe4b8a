package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"booking-app/internal/domain/users"
)

// GoogleProfile is the verified identity taken from a Google ID token.
type GoogleProfile struct {
	Sub        string
	Email      string
	Name       string
	GivenName  string
	FamilyName string
	Picture    string
}

// LoginWithGoogle signs in the user behind a verified Google identity.
// Users are matched by Google subject, then by email (linking the subject),
// and created as password-less patients otherwise.
func (s *Service) LoginWithGoogle(ctx context.Context, p GoogleProfile) (*LoginResult, error) {
	email := users.NormalizeEmail(p.Email)
	if p.Sub == "" || email == "" {
		return nil, invalidInput("google profile is missing subject or email")
	}

	u, err := s.store.FindByGoogleSub(ctx, p.Sub)
	if err == nil {
		return s.issueSession(u)
	}
	if !errors.Is(err, users.ErrNotFound) {
		return nil, oops.Code("AUTH_GOOGLE_FAILED").With("operation", "FindByGoogleSub").Wrap(err)
	}

	u, err = s.store.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.store.LinkGoogleAccount(ctx, email, p.Sub); err != nil {
			return nil, oops.Code("AUTH_GOOGLE_FAILED").
				With("operation", "LinkGoogleAccount").
				With("user_id", u.ID).
				Wrap(err)
		}
		sub := p.Sub
		u.GoogleSub = &sub
		s.logger.InfoContext(ctx, "google account linked", "user_id", u.ID)
		return s.issueSession(u)
	case !errors.Is(err, users.ErrNotFound):
		return nil, oops.Code("AUTH_GOOGLE_FAILED").With("operation", "FindByEmail").Wrap(err)
	}

	now := s.NowFunc()
	sub := p.Sub
	u = &users.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         firstNonEmpty(strings.TrimSpace(p.Name), p.GivenName, email),
		Role:         users.RolePatient,
		AuthProvider: users.ProviderGoogle,
		GoogleSub:    &sub,
		Firstname:    optional(p.GivenName),
		Lastname:     optional(p.FamilyName),
		Image:        optional(p.Picture),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, oops.Code("AUTH_GOOGLE_FAILED").With("operation", "CreateUser").Wrap(err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", u.ID, "provider", users.ProviderGoogle)
	return s.issueSession(u)
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
