package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-app/internal/auth"
	"booking-app/internal/domain/users"
	"booking-app/internal/errutil"
)

func newCodec(t *testing.T, secret string, now time.Time) *auth.SessionCodec {
	t.Helper()
	c, err := auth.NewSessionCodec(secret, 24*time.Hour)
	require.NoError(t, err)
	c.NowFunc = func() time.Time { return now }
	return c
}

func TestNewSessionCodec_Validation(t *testing.T) {
	_, err := auth.NewSessionCodec("", time.Hour)
	errutil.AssertErrorCode(t, err, "SESSION_CONFIG_INVALID")

	_, err = auth.NewSessionCodec("secret", 0)
	errutil.AssertErrorCode(t, err, "SESSION_CONFIG_INVALID")
}

func TestSessionCodec_RoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	c := newCodec(t, "secret", now)

	u := &users.User{ID: "u1", Email: "alice@example.com", Name: "Alice", Role: users.RoleDoctor}
	token, err := c.Sign(auth.ClaimsFor(u))
	require.NoError(t, err)

	claims, err := c.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, users.RoleDoctor, claims.Role)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, now.Add(24*time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
}

func TestSessionCodec_TamperedPayload(t *testing.T) {
	c := newCodec(t, "secret", time.Now())
	token, err := c.Sign(auth.Claims{Email: "alice@example.com", Role: users.RolePatient})
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload := []byte(parts[1])
	mid := len(payload) / 2
	if payload[mid] == 'A' {
		payload[mid] = 'B'
	} else {
		payload[mid] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = c.Verify(tampered)
	errutil.AssertErrorCode(t, err, auth.CodeSessionInvalid)
}

func TestSessionCodec_Expired(t *testing.T) {
	issued := time.Now()
	c := newCodec(t, "secret", issued)
	token, err := c.Sign(auth.Claims{Email: "alice@example.com"})
	require.NoError(t, err)

	c.NowFunc = func() time.Time { return issued.Add(25 * time.Hour) }
	_, err = c.Verify(token)
	errutil.AssertErrorCode(t, err, auth.CodeSessionInvalid)
}

func TestSessionCodec_WrongSecret(t *testing.T) {
	now := time.Now()
	token, err := newCodec(t, "secret", now).Sign(auth.Claims{Email: "alice@example.com"})
	require.NoError(t, err)

	_, err = newCodec(t, "other", now).Verify(token)
	errutil.AssertErrorCode(t, err, auth.CodeSessionInvalid)
}

func TestSessionCodec_RejectsOtherAlgorithms(t *testing.T) {
	now := time.Now()
	c := newCodec(t, "secret", now)

	claims := auth.Claims{
		Email: "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = c.Verify(token)
	errutil.AssertErrorCode(t, err, auth.CodeSessionInvalid)
}

func TestSessionCodec_RequiresExpiry(t *testing.T) {
	c := newCodec(t, "secret", time.Now())

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{Email: "a@example.com"}).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = c.Verify(token)
	errutil.AssertErrorCode(t, err, auth.CodeSessionInvalid)
}
