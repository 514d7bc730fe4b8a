package main

import (
	"context"
	"log/slog"

	"github.com/go-redis/redis/v8"
	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"booking-app/config"
	"booking-app/database"
	authsvc "booking-app/internal/auth"
	"booking-app/internal/mail"
	"booking-app/internal/metrics"
	"booking-app/internal/ratelimit"
	"booking-app/internal/store/gormstore"
	"booking-app/internal/store/memstore"
	"booking-app/internal/store/mongostore"
)

// credentialStore is what the process needs from a store driver.
type credentialStore interface {
	authsvc.Store
	Ping(ctx context.Context) error
}

// openStore connects the driver named by cfg.StoreDriver. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, migrate bool) (credentialStore, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := openPostgres(cfg, logger, migrate)
		if err != nil {
			return nil, nil, err
		}
		s := gormstore.New(db)
		return s, func() { _ = s.Close() }, nil

	case config.DriverMongo:
		client, err := database.ConnectMongo(ctx, cfg.MongoURI, logger)
		if err != nil {
			return nil, nil, err
		}
		s := mongostore.New(client.Database(cfg.MongoDB))
		if migrate {
			if err := s.EnsureIndexes(ctx); err != nil {
				_ = client.Disconnect(context.Background())
				return nil, nil, oops.Code("DB_MIGRATE_FAILED").Wrapf(err, "ensure mongo indexes")
			}
		}
		return s, func() { disconnectMongo(client) }, nil

	case config.DriverMemory:
		logger.Warn("using in-memory credential store, data is lost on restart")
		return memstore.New(), func() {}, nil
	}
	return nil, nil, oops.Code("CONFIG_INVALID").Errorf("unknown store driver %q", cfg.StoreDriver)
}

func openPostgres(cfg *config.Config, logger *slog.Logger, migrate bool) (*gorm.DB, error) {
	db, err := database.OpenPostgres(cfg.DBURL, logger)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func disconnectMongo(client *mongo.Client) {
	_ = client.Disconnect(context.Background())
}

// newLimiter uses redis when REDIS_URL is set so replicas share their windows.
func newLimiter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ratelimit.Limiter, *redis.Client, error) {
	if cfg.Redis.URL == "" {
		return ratelimit.NewMemoryLimiter(cfg.Limit.Requests, cfg.Limit.Window), nil, nil
	}

	client, err := ratelimit.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("rate limiting through redis")
	return ratelimit.NewRedisLimiter(client, cfg.Limit.Requests, cfg.Limit.Window), client, nil
}

func newMailSender(cfg *config.Config, logger *slog.Logger) mail.Sender {
	if cfg.Mail.Driver == config.MailDriverLog {
		logger.Warn("MAIL_DRIVER=log, reset links are written to the log")
		return mail.NewLogSender(logger)
	}
	return mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
	})
}

func newNotifier(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *mail.Notifier {
	return mail.NewNotifier(newMailSender(cfg, logger), logger, m, mail.NotifierConfig{
		From:        cfg.SMTP.From,
		QueueSize:   cfg.Mail.QueueSize,
		Workers:     cfg.Mail.Workers,
		SendTimeout: cfg.Mail.SendTimeout,
		ResetTTL:    cfg.Reset.TokenTTL,
	})
}
