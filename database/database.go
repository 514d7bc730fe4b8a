package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"booking-app/internal/domain/users"
)

// OpenPostgres connects to postgres. Unique violations are translated to gorm.ErrDuplicatedKey.
func OpenPostgres(dsn string, log *slog.Logger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, oops.Code("DB_CONFIG_INVALID").Errorf("DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").Wrapf(err, "failed to connect to database")
	}

	log.Info("connected to postgres")
	return db, nil
}

// Migrate creates or updates the tables of every persisted model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&users.User{}); err != nil {
		return oops.Code("DB_MIGRATE_FAILED").Wrapf(err, "automigrate")
	}
	return nil
}

// ConnectMongo opens a client and pings the primary before returning it.
func ConnectMongo(ctx context.Context, uri string, log *slog.Logger) (*mongo.Client, error) {
	if uri == "" {
		return nil, oops.Code("DB_CONFIG_INVALID").Errorf("MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").Wrapf(err, "failed to connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, oops.Code("DB_CONNECT_FAILED").Wrapf(err, "failed to ping mongo")
	}

	log.Info("connected to mongo")
	return client, nil
}
