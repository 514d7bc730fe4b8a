package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"

	"booking-app/internal/domain/users"
)

// Claims is the claim set carried by a session token.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// ClaimsFor builds the session claims for a user.
func ClaimsFor(u *users.User) Claims {
	return Claims{
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: u.ID,
		},
	}
}

// SessionCodec signs and verifies session tokens with a server-held secret.
// Tokens are stateless: a leaked token stays valid until it expires.
type SessionCodec struct {
	secret []byte
	ttl    time.Duration

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

// NewSessionCodec creates a codec. The secret must not be empty.
func NewSessionCodec(secret string, ttl time.Duration) (*SessionCodec, error) {
	if secret == "" {
		return nil, oops.Code("SESSION_CONFIG_INVALID").Errorf("session secret is required")
	}
	if ttl <= 0 {
		return nil, oops.Code("SESSION_CONFIG_INVALID").Errorf("session ttl must be positive, got %s", ttl)
	}
	return &SessionCodec{
		secret:  []byte(secret),
		ttl:     ttl,
		NowFunc: time.Now,
	}, nil
}

// Sign returns a signed token for claims. Missing iat/exp are filled in.
func (c *SessionCodec) Sign(claims Claims) (string, error) {
	now := c.NowFunc()
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(now)
	}
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", oops.Code("SESSION_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Verify parses the token, checks its signature and expiry, and returns its claims.
func (c *SessionCodec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.NowFunc),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, oops.Code(CodeSessionInvalid).Wrap(err)
	}
	if !token.Valid {
		return nil, ErrInvalidSession
	}
	return claims, nil
}
