package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-app/config"
	"booking-app/internal/errutil"
)

func lookup(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := config.FromEnv(lookup(map[string]string{
		"JWT_SECRET": "secret",
		"DB_URL":     "postgres://localhost/booking",
		"SMTP_HOST":  "smtp.example.com",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, config.DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 24*time.Hour, cfg.Reset.TokenTTL)
	assert.Equal(t, "http://localhost:3000", cfg.Reset.BaseURL)
	assert.False(t, cfg.Reset.HideUnknownEmail)
	assert.Equal(t, 100, cfg.Mail.QueueSize)
	assert.Equal(t, 2, cfg.Mail.Workers)
	assert.Equal(t, 30*time.Second, cfg.Mail.SendTimeout)
	assert.Equal(t, config.MailDriverSMTP, cfg.Mail.Driver)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.False(t, cfg.Google.Enabled())
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := config.FromEnv(lookup(map[string]string{
		"JWT_SECRET":               "secret",
		"STORE_DRIVER":             "mongo",
		"MONGO_URI":                "mongodb://localhost:27017",
		"RESET_TOKEN_TTL":          "1h",
		"RESET_HIDE_UNKNOWN_EMAIL": "true",
		"MAIL_DRIVER":              "log",
		"SMTP_PORT":                "2525",
		"RATE_LIMIT_REQUESTS":      "3",
		"LOG_FORMAT":               "text",
	}))
	require.NoError(t, err)

	assert.Equal(t, config.DriverMongo, cfg.StoreDriver)
	assert.Equal(t, time.Hour, cfg.Reset.TokenTTL)
	assert.True(t, cfg.Reset.HideUnknownEmail)
	assert.Equal(t, config.MailDriverLog, cfg.Mail.Driver)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, 3, cfg.Limit.Requests)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{"missing secret", map[string]string{"STORE_DRIVER": "memory"}, "JWT_SECRET"},
		{"missing db url", map[string]string{"JWT_SECRET": "s"}, "DB_URL"},
		{"missing mongo uri", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "mongo"}, "MONGO_URI"},
		{"unknown driver", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "sqlite"}, "STORE_DRIVER"},
		{"bad duration", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "memory", "SESSION_TTL": "soon"}, "SESSION_TTL"},
		{"negative ttl", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "memory", "RESET_TOKEN_TTL": "-1h"}, "RESET_TOKEN_TTL"},
		{"bad int", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "memory", "BCRYPT_COST": "high"}, "BCRYPT_COST"},
		{"smtp without host", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "memory"}, "SMTP_HOST is required"},
		{"unknown mail driver", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "memory", "MAIL_DRIVER": "stdout"}, "MAIL_DRIVER"},
		{"bad bool", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "memory", "RESET_HIDE_UNKNOWN_EMAIL": "maybe"}, "RESET_HIDE_UNKNOWN_EMAIL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.FromEnv(lookup(tt.vars))
			errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
