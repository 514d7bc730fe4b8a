// Package mongostore is the document credential store.
package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"booking-app/internal/domain/users"
)

// CollectionName is the collection user documents live in.
const CollectionName = "users"

// Store persists users in a mongo collection.
type Store struct {
	coll *mongo.Collection

	// NowFunc stamps updated_at. Exposed for testing purposes.
	NowFunc func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{
		coll:    db.Collection(CollectionName),
		NowFunc: time.Now,
	}
}

// EnsureIndexes creates the unique email and google_sub indexes and the reset token lookup index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_users_email"),
		},
		{
			Keys:    bson.D{{Key: "google_sub", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("idx_users_google_sub"),
		},
		{
			Keys:    bson.D{{Key: "reset_token_hash", Value: 1}},
			Options: options.Index().SetName("idx_users_reset_token_hash"),
		},
	})
	return err
}

func (s *Store) CreateUser(ctx context.Context, u *users.User) error {
	_, err := s.coll.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return users.ErrDuplicateEmail
	}
	return err
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *Store) FindByResetToken(ctx context.Context, tokenHash string) (*users.User, error) {
	if tokenHash == "" {
		return nil, users.ErrNotFound
	}
	return s.findOne(ctx, bson.M{"reset_token_hash": tokenHash})
}

func (s *Store) FindByGoogleSub(ctx context.Context, sub string) (*users.User, error) {
	return s.findOne(ctx, bson.M{"google_sub": sub})
}

func (s *Store) SetResetToken(ctx context.Context, email, tokenHash string, expiresAt time.Time) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{
			"reset_token_hash": tokenHash,
			"reset_expires_at": expiresAt,
			"updated_at":       s.NowFunc(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (s *Store) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (*users.User, error) {
	if tokenHash == "" {
		return nil, users.ErrNotFound
	}

	filter := bson.M{
		"reset_token_hash": tokenHash,
		"reset_expires_at": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set": bson.M{
			"password_hash":    passwordHash,
			"reset_token_hash": "",
			"updated_at":       s.NowFunc(),
		},
		"$unset": bson.M{"reset_expires_at": ""},
	}

	var u users.User
	err := s.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, users.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) LinkGoogleAccount(ctx context.Context, email, sub string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"google_sub": sub, "updated_at": s.NowFunc()}},
	)
	if mongo.IsDuplicateKeyError(err) {
		return users.ErrDuplicateEmail
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return users.ErrNotFound
	}
	return nil
}

// Ping checks the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*users.User, error) {
	var u users.User
	err := s.coll.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, users.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
