package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	authsvc "booking-app/internal/auth"
	"booking-app/internal/logging"
	"booking-app/internal/mail"
	"booking-app/internal/store/memstore"
)

func newGoogleHandler(t *testing.T, frontend string) *GoogleHandler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec, err := authsvc.NewSessionCodec("secret", time.Hour)
	require.NoError(t, err)
	notifier := mail.NewNotifier(mail.NewMemorySender(), logging.Discard(), nil, mail.NotifierConfig{})
	t.Cleanup(func() { _ = notifier.Shutdown(context.Background()) })

	svc, err := authsvc.NewService(memstore.New(), authsvc.NewBcryptHasher(bcrypt.MinCost), authsvc.RandomTokenIssuer{},
		codec, notifier, logging.Discard(), authsvc.ServiceConfig{ResetTokenTTL: time.Hour, ResetBaseURL: "http://localhost:3000"})
	require.NoError(t, err)

	h := NewGoogleHandler(svc, logging.Discard(), nil, GoogleConfig{
		ClientID:         "client",
		ClientSecret:     "secret",
		RedirectURL:      "http://localhost:8080/auth/google/callback",
		FrontendRedirect: frontend,
	})
	h.exchange = func(_ context.Context, code string) (string, error) {
		if code != "good" {
			return "", errors.New("bad code")
		}
		return "raw-id-token", nil
	}
	h.verify = func(_ context.Context, raw string) (authsvc.GoogleProfile, error) {
		return authsvc.GoogleProfile{Sub: "sub-1", Email: "gina@example.com", GivenName: "Gina"}, nil
	}
	return h
}

func callback(h *GoogleHandler, query, cookieState string) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/auth/google/callback", h.Callback)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?"+query, nil)
	if cookieState != "" {
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: cookieState})
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGoogleStart_SetsStateAndRedirects(t *testing.T) {
	h := newGoogleHandler(t, "")
	r := gin.New()
	r.GET("/auth/google", h.Start)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/google", nil))
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", loc.Host)

	var state string
	for _, c := range rec.Result().Cookies() {
		if c.Name == stateCookie {
			state = c.Value
			assert.True(t, c.HttpOnly)
		}
	}
	require.NotEmpty(t, state)
	assert.Equal(t, state, loc.Query().Get("state"))
}

func TestGoogleCallback(t *testing.T) {
	t.Run("state mismatch", func(t *testing.T) {
		rec := callback(newGoogleHandler(t, ""), "code=good&state=a", "b")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing code", func(t *testing.T) {
		rec := callback(newGoogleHandler(t, ""), "state=a", "a")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("exchange failure", func(t *testing.T) {
		rec := callback(newGoogleHandler(t, ""), "code=bad&state=a", "a")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("returns session as json", func(t *testing.T) {
		rec := callback(newGoogleHandler(t, ""), "code=good&state=a", "a")
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "gina@example.com", body["email"])
		assert.Equal(t, "patient", body["role"])
		assert.NotEmpty(t, body["user"])
	})

	t.Run("redirects to frontend", func(t *testing.T) {
		rec := callback(newGoogleHandler(t, "http://localhost:3000/oauth"), "code=good&state=a", "a")
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Contains(t, rec.Header().Get("Location"), "http://localhost:3000/oauth?token=")
	})
}
