package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"booking-app/internal/domain/users"
	"booking-app/internal/errutil"
)

// ServiceConfig is the configuration for the Service.
type ServiceConfig struct {
	// ResetTokenTTL is the duration a reset token is valid.
	ResetTokenTTL time.Duration
	// ResetBaseURL is the frontend origin the reset link points at.
	ResetBaseURL string
}

// Service is the type that provides the main rules for authentication.
type Service struct {
	store    Store
	hasher   PasswordHasher
	tokens   TokenIssuer
	sessions *SessionCodec
	notifier ResetNotifier
	logger   *slog.Logger
	cfg      ServiceConfig

	// comparisonHash is used to compare passwords when no user was found.
	comparisonHash string

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

// NewService creates a Service. All dependencies are required.
func NewService(
	store Store,
	hasher PasswordHasher,
	tokens TokenIssuer,
	sessions *SessionCodec,
	notifier ResetNotifier,
	logger *slog.Logger,
	cfg ServiceConfig,
) (*Service, error) {
	switch {
	case store == nil:
		return nil, oops.Errorf("credential store is required")
	case hasher == nil:
		return nil, oops.Errorf("password hasher is required")
	case tokens == nil:
		return nil, oops.Errorf("token issuer is required")
	case sessions == nil:
		return nil, oops.Errorf("session codec is required")
	case notifier == nil:
		return nil, oops.Errorf("reset notifier is required")
	case logger == nil:
		return nil, oops.Errorf("logger is required")
	case cfg.ResetTokenTTL <= 0:
		return nil, oops.Errorf("reset token ttl must be positive")
	}

	if _, err := url.Parse(cfg.ResetBaseURL); err != nil || cfg.ResetBaseURL == "" {
		return nil, oops.With("reset_base_url", cfg.ResetBaseURL).Errorf("reset base url is invalid")
	}

	tok, err := tokens.Issue()
	if err != nil {
		return nil, err
	}
	comparisonHash, err := hasher.Hash(tok)
	if err != nil {
		return nil, err
	}

	return &Service{
		store:          store,
		hasher:         hasher,
		tokens:         tokens,
		sessions:       sessions,
		notifier:       notifier,
		logger:         logger,
		cfg:            cfg,
		comparisonHash: comparisonHash,
		NowFunc:        time.Now,
	}, nil
}

// RegisterInput holds the fields accepted at registration.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
	// Role defaults to users.RolePatient.
	Role string
}

// Register creates a new local account and returns it without credentials.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*users.User, error) {
	email, err := parseEmail(in.Email)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalidInput("name is required")
	}

	role := in.Role
	if role == "" {
		role = users.RolePatient
	}
	if !users.IsSelfAssignableRole(role) {
		return nil, invalidInput("role %q cannot be chosen at registration", role)
	}

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, users.ErrNotFound) {
		return nil, oops.Code("AUTH_REGISTER_FAILED").With("operation", "FindByEmail").Wrap(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.NowFunc()
	u := &users.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		AuthProvider: users.ProviderLocal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, u); err != nil {
		// Lost a race against a concurrent registration with the same email.
		if errors.Is(err, users.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").With("operation", "CreateUser").Wrap(err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", u.ID, "role", u.Role)
	return u.Redacted(), nil
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token string
	User  *users.User
}

// Login verifies credentials and issues a session token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.store.FindByEmail(ctx, users.NormalizeEmail(email))
	if err != nil && !errors.Is(err, users.ErrNotFound) {
		return nil, oops.Code("AUTH_LOGIN_FAILED").With("operation", "FindByEmail").Wrap(err)
	}

	if u == nil || !u.HasPassword() {
		// Still run one comparison so response time does not reveal unknown emails.
		_, _ = s.hasher.Verify(password, s.comparisonHash)
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, u.PasswordHash)
	if err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "Verify").
			With("user_id", u.ID).
			Wrap(err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.issueSession(u)
}

// Profile returns the public record for email.
func (s *Service) Profile(ctx context.Context, email string) (*users.User, error) {
	u, err := s.store.FindByEmail(ctx, users.NormalizeEmail(email))
	if errors.Is(err, users.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, oops.Code("AUTH_PROFILE_FAILED").With("operation", "FindByEmail").Wrap(err)
	}
	return u.Redacted(), nil
}

// Sessions exposes the codec used to verify tokens issued by this service.
func (s *Service) Sessions() *SessionCodec {
	return s.sessions
}

func (s *Service) issueSession(u *users.User) (*LoginResult, error) {
	token, err := s.sessions.Sign(ClaimsFor(u))
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: u.Redacted()}, nil
}

func parseEmail(raw string) (string, error) {
	email := users.NormalizeEmail(raw)
	if email == "" {
		return "", invalidInput("email is required")
	}

	// mail.ParseAddress accepts "Name <addr>" forms; only the bare address is allowed.
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalidInput("invalid email format")
	}
	return email, nil
}

func (s *Service) logError(ctx context.Context, msg string, err error) {
	errutil.LogError(ctx, s.logger, msg, err)
}
