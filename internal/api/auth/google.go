package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"github.com/samber/oops"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	authsvc "booking-app/internal/auth"
	"booking-app/internal/errutil"
	"booking-app/internal/metrics"
)

const (
	googleIssuer  = "https://accounts.google.com"
	googleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
	stateCookie   = "oauth_state"
)

// GoogleConfig holds the OAuth client of the Google sign-in flow.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// FrontendRedirect receives ?token=<session token>. Empty returns the token as JSON.
	FrontendRedirect string
	// SecureCookie marks the state cookie Secure; set it behind HTTPS.
	SecureCookie bool
}

// GoogleHandler runs the OAuth2 code flow against Google and signs the user in.
type GoogleHandler struct {
	svc     *authsvc.Service
	logger  *slog.Logger
	metrics *metrics.Metrics
	cfg     GoogleConfig
	oauth   *oauth2.Config

	// exchange trades the code for a raw ID token; verify checks it. Replaced in tests.
	exchange func(ctx context.Context, code string) (string, error)
	verify   func(ctx context.Context, rawIDToken string) (authsvc.GoogleProfile, error)
}

func NewGoogleHandler(svc *authsvc.Service, logger *slog.Logger, m *metrics.Metrics, cfg GoogleConfig) *GoogleHandler {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes: []string{
			oidc.ScopeOpenID,
			"email",
			"profile",
		},
		Endpoint: google.Endpoint,
	}

	// The key set is fetched lazily on first verification.
	verifier := oidc.NewVerifier(googleIssuer,
		oidc.NewRemoteKeySet(context.Background(), googleJWKSURL),
		&oidc.Config{ClientID: cfg.ClientID},
	)

	h := &GoogleHandler{
		svc:     svc,
		logger:  logger,
		metrics: m,
		cfg:     cfg,
		oauth:   oauthCfg,
	}
	h.exchange = func(ctx context.Context, code string) (string, error) {
		tok, err := oauthCfg.Exchange(ctx, code)
		if err != nil {
			return "", oops.Code("GOOGLE_EXCHANGE_FAILED").Wrap(err)
		}
		raw, ok := tok.Extra("id_token").(string)
		if !ok || raw == "" {
			return "", oops.Code("GOOGLE_EXCHANGE_FAILED").Errorf("missing id_token")
		}
		return raw, nil
	}
	h.verify = func(ctx context.Context, raw string) (authsvc.GoogleProfile, error) {
		return verifyIDToken(ctx, verifier, raw)
	}
	return h
}

// GET /auth/google
func (h *GoogleHandler) Start(c *gin.Context) {
	state, err := randomState()
	if err != nil {
		errutil.LogError(c.Request.Context(), h.logger, "failed to generate oauth state", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate state"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, 300, "/", "", h.cfg.SecureCookie, true)
	c.Redirect(http.StatusFound, h.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline))
}

// GET /auth/google/callback
func (h *GoogleHandler) Callback(c *gin.Context) {
	ctx := c.Request.Context()
	state := c.Query("state")
	code := c.Query("code")
	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code/state"})
		return
	}

	cookieState, err := c.Cookie(stateCookie)
	if err != nil || cookieState != state {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth state"})
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", h.cfg.SecureCookie, true)

	rawIDToken, err := h.exchange(ctx, code)
	if err != nil {
		errutil.LogError(ctx, h.logger, "google code exchange failed", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "failed to exchange code"})
		return
	}

	profile, err := h.verify(ctx, rawIDToken)
	if err != nil {
		errutil.LogError(ctx, h.logger, "google id token rejected", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid id_token"})
		return
	}

	res, err := h.svc.LoginWithGoogle(ctx, profile)
	if err != nil {
		h.metrics.AuthEvent("google_login", authsvc.KindOf(err).String())
		if authsvc.KindOf(err) == authsvc.KindInternal {
			errutil.LogError(ctx, h.logger, "google login failed", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	h.metrics.AuthEvent("google_login", "ok")

	if h.cfg.FrontendRedirect == "" {
		c.JSON(http.StatusOK, gin.H{"email": res.User.Email, "user": res.Token, "role": res.User.Role})
		return
	}
	c.Redirect(http.StatusFound, h.cfg.FrontendRedirect+"?token="+url.QueryEscape(res.Token))
}

type googleIDClaims struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

func verifyIDToken(ctx context.Context, verifier *oidc.IDTokenVerifier, raw string) (authsvc.GoogleProfile, error) {
	idToken, err := verifier.Verify(ctx, raw)
	if err != nil {
		return authsvc.GoogleProfile{}, oops.Code("GOOGLE_TOKEN_INVALID").Wrap(err)
	}

	var claims googleIDClaims
	if err := idToken.Claims(&claims); err != nil {
		return authsvc.GoogleProfile{}, oops.Code("GOOGLE_TOKEN_INVALID").Wrapf(err, "decode claims")
	}
	if claims.Email == "" || claims.Sub == "" {
		return authsvc.GoogleProfile{}, oops.Code("GOOGLE_TOKEN_INVALID").Errorf("token missing required claims")
	}
	// Unverified addresses could be used to take over an existing local account.
	if !claims.EmailVerified {
		return authsvc.GoogleProfile{}, oops.Code("GOOGLE_TOKEN_INVALID").Errorf("google email not verified")
	}

	return authsvc.GoogleProfile{
		Sub:        claims.Sub,
		Email:      claims.Email,
		Name:       claims.Name,
		GivenName:  claims.GivenName,
		FamilyName: claims.FamilyName,
		Picture:    claims.Picture,
	}, nil
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
