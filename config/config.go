package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Mail drivers. MailDriverLog writes reset links to the log and is meant for local development.
const (
	MailDriverSMTP = "smtp"
	MailDriverLog  = "log"
)

type Config struct {
	Port            string
	CORSOrigin      string
	LogFormat       string
	ShutdownTimeout time.Duration

	StoreDriver string
	DBURL       string
	MongoURI    string
	MongoDB     string

	JWTSecret  string
	SessionTTL time.Duration
	BcryptCost int

	Reset  ResetConfig
	SMTP   SMTPConfig
	Mail   MailConfig
	Redis  RedisConfig
	Limit  RateLimitConfig
	Google GoogleConfig
}

type ResetConfig struct {
	TokenTTL time.Duration
	BaseURL  string
	// HideUnknownEmail answers forget-password for unknown emails like for known ones.
	HideUnknownEmail bool
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type MailConfig struct {
	Driver      string
	QueueSize   int
	Workers     int
	SendTimeout time.Duration
}

type RedisConfig struct {
	// URL is empty when rate limiting should stay in process.
	URL string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type GoogleConfig struct {
	ClientID         string
	ClientSecret     string
	RedirectURL      string
	FrontendRedirect string
}

// Enabled reports whether Google sign-in is configured.
func (c GoogleConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURL != ""
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, oops.Code("CONFIG_INVALID").Wrapf(err, "load .env")
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds the Config from lookup. All problems are reported together.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	e := env{lookup: lookup}

	cfg := &Config{
		Port:            e.str("PORT", "8080"),
		CORSOrigin:      e.str("CORS_ORIGIN", "http://localhost:3000"),
		LogFormat:       e.str("LOG_FORMAT", "json"),
		ShutdownTimeout: e.duration("SHUTDOWN_TIMEOUT", 15*time.Second),

		StoreDriver: e.str("STORE_DRIVER", DriverPostgres),
		DBURL:       e.str("DB_URL", ""),
		MongoURI:    e.str("MONGO_URI", ""),
		MongoDB:     e.str("MONGO_DB", "booking"),

		JWTSecret:  e.str("JWT_SECRET", ""),
		SessionTTL: e.duration("SESSION_TTL", 24*time.Hour),
		BcryptCost: e.integer("BCRYPT_COST", bcrypt.DefaultCost),

		Reset: ResetConfig{
			TokenTTL:         e.duration("RESET_TOKEN_TTL", 24*time.Hour),
			BaseURL:          e.str("RESET_BASE_URL", "http://localhost:3000"),
			HideUnknownEmail: e.boolean("RESET_HIDE_UNKNOWN_EMAIL", false),
		},
		SMTP: SMTPConfig{
			Host:     e.str("SMTP_HOST", ""),
			Port:     e.integer("SMTP_PORT", 587),
			Username: e.str("SMTP_USERNAME", ""),
			Password: e.str("SMTP_PASSWORD", ""),
			From:     e.str("SMTP_FROM", "noreply@localhost"),
		},
		Mail: MailConfig{
			Driver:      e.str("MAIL_DRIVER", MailDriverSMTP),
			QueueSize:   e.integer("MAIL_QUEUE_SIZE", 100),
			Workers:     e.integer("MAIL_WORKERS", 2),
			SendTimeout: e.duration("MAIL_SEND_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			URL: e.str("REDIS_URL", ""),
		},
		Limit: RateLimitConfig{
			Requests: e.integer("RATE_LIMIT_REQUESTS", 10),
			Window:   e.duration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Google: GoogleConfig{
			ClientID:         e.str("GOOGLE_CLIENT_ID", ""),
			ClientSecret:     e.str("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:      e.str("GOOGLE_REDIRECT_URL", ""),
			FrontendRedirect: e.str("GOOGLE_FRONTEND_REDIRECT", ""),
		},
	}

	if cfg.JWTSecret == "" {
		e.fail("JWT_SECRET is required")
	}
	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.DBURL == "" {
			e.fail("DB_URL is required when STORE_DRIVER=postgres")
		}
	case DriverMongo:
		if cfg.MongoURI == "" {
			e.fail("MONGO_URI is required when STORE_DRIVER=mongo")
		}
	case DriverMemory:
	default:
		e.fail("STORE_DRIVER must be one of postgres, mongo, memory")
	}
	switch cfg.Mail.Driver {
	case MailDriverSMTP:
		if cfg.SMTP.Host == "" {
			e.fail("SMTP_HOST is required when MAIL_DRIVER=smtp")
		}
	case MailDriverLog:
	default:
		e.fail("MAIL_DRIVER must be one of smtp, log")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		e.fail("LOG_FORMAT must be json or text")
	}
	e.positive("SESSION_TTL", cfg.SessionTTL)
	e.positive("RESET_TOKEN_TTL", cfg.Reset.TokenTTL)
	e.positive("MAIL_SEND_TIMEOUT", cfg.Mail.SendTimeout)
	e.positive("RATE_LIMIT_WINDOW", cfg.Limit.Window)
	if cfg.Mail.QueueSize <= 0 || cfg.Mail.Workers <= 0 {
		e.fail("MAIL_QUEUE_SIZE and MAIL_WORKERS must be positive")
	}
	if cfg.Limit.Requests <= 0 {
		e.fail("RATE_LIMIT_REQUESTS must be positive")
	}

	if len(e.problems) > 0 {
		return nil, oops.Code("CONFIG_INVALID").
			With("problems", e.problems).
			Errorf("invalid configuration: %s", strings.Join(e.problems, "; "))
	}
	return cfg, nil
}

type env struct {
	lookup   func(string) (string, bool)
	problems []string
}

func (e *env) fail(msg string) {
	e.problems = append(e.problems, msg)
}

func (e *env) str(key, fallback string) string {
	if v, ok := e.lookup(key); ok && v != "" {
		return v
	}
	return fallback
}

func (e *env) integer(key string, fallback int) int {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key + " must be an integer")
		return fallback
	}
	return n
}

func (e *env) boolean(key string, fallback bool) bool {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key + " must be a boolean")
		return fallback
	}
	return b
}

func (e *env) duration(key string, fallback time.Duration) time.Duration {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key + " must be a duration like 30s or 24h")
		return fallback
	}
	return d
}

func (e *env) positive(key string, d time.Duration) {
	if d <= 0 {
		e.fail(key + " must be positive")
	}
}
