// Package gormstore is the postgres credential store.
package gormstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"booking-app/internal/domain/users"
)

// Store persists users through gorm. The *gorm.DB must be opened with TranslateError
// so unique violations surface as gorm.ErrDuplicatedKey.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateUser(ctx context.Context, u *users.User) error {
	err := s.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return users.ErrDuplicateEmail
	}
	return err
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	return s.first(ctx, "email = ?", email)
}

func (s *Store) FindByResetToken(ctx context.Context, tokenHash string) (*users.User, error) {
	if tokenHash == "" {
		return nil, users.ErrNotFound
	}
	return s.first(ctx, "reset_token_hash = ?", tokenHash)
}

func (s *Store) FindByGoogleSub(ctx context.Context, sub string) (*users.User, error) {
	return s.first(ctx, "google_sub = ?", sub)
}

func (s *Store) SetResetToken(ctx context.Context, email, tokenHash string, expiresAt time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&users.User{}).
		Where("email = ?", email).
		Updates(map[string]any{
			"reset_token_hash": tokenHash,
			"reset_expires_at": expiresAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return users.ErrNotFound
	}
	return nil
}

// ConsumeResetToken runs a single UPDATE ... RETURNING guarded by the token hash and expiry,
// so two concurrent resets with the same token cannot both succeed.
func (s *Store) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (*users.User, error) {
	if tokenHash == "" {
		return nil, users.ErrNotFound
	}

	var u users.User
	res := s.db.WithContext(ctx).
		Model(&u).
		Clauses(clause.Returning{}).
		Where("reset_token_hash = ? AND reset_expires_at > ?", tokenHash, now).
		Updates(map[string]any{
			"password_hash":    passwordHash,
			"reset_token_hash": "",
			"reset_expires_at": nil,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, users.ErrNotFound
	}
	return &u, nil
}

func (s *Store) LinkGoogleAccount(ctx context.Context, email, sub string) error {
	res := s.db.WithContext(ctx).
		Model(&users.User{}).
		Where("email = ?", email).
		Update("google_sub", sub)
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return users.ErrDuplicateEmail
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return users.ErrNotFound
	}
	return nil
}

// Ping checks the underlying connection pool.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) first(ctx context.Context, query string, args ...any) (*users.User, error) {
	var u users.User
	err := s.db.WithContext(ctx).Where(query, args...).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, users.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
