package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sygemat/provider-portal/internal/domain/models"
)

// LockoutStore persists login rate-limiter records in MongoDB so lockouts
// survive service restarts.
type LockoutStore struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewLockoutStore connects to MongoDB and verifies the connection.
func NewLockoutStore(ctx context.Context, uri string, dbName string) (*LockoutStore, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &LockoutStore{
		client:   client,
		dbName:   dbName,
		collName: "login_lockouts",
	}, nil
}

func (s *LockoutStore) collection() *mongo.Collection {
	return s.client.Database(s.dbName).Collection(s.collName)
}

// Get returns the record for a key, or nil when none exists.
func (s *LockoutStore) Get(ctx context.Context, key string) (*models.LockoutState, error) {
	var state models.LockoutState
	err := s.collection().FindOne(ctx, bson.M{"_id": key}).Decode(&state)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load lockout state: %w", err)
	}
	return &state, nil
}

// Put upserts the record for its key.
func (s *LockoutStore) Put(ctx context.Context, state *models.LockoutState) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection().ReplaceOne(ctx, bson.M{"_id": state.Key}, state, opts); err != nil {
		return fmt.Errorf("failed to store lockout state: %w", err)
	}
	return nil
}

// Delete removes the record for a key. Missing keys are not an error.
func (s *LockoutStore) Delete(ctx context.Context, key string) error {
	if _, err := s.collection().DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("failed to delete lockout state: %w", err)
	}
	return nil
}

// PurgeExpired drops records whose last activity predates the cutoff and
// whose lockout, if any, has elapsed.
func (s *LockoutStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	filter := bson.M{
		"last_attempt": bson.M{"$lt": before},
		"$or": bson.A{
			bson.M{"lock_expiry": bson.M{"$exists": false}},
			bson.M{"lock_expiry": bson.M{"$lt": before}},
		},
	}

	result, err := s.collection().DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to purge lockout states: %w", err)
	}
	return result.DeletedCount, nil
}

// Close closes the MongoDB connection.
func (s *LockoutStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
