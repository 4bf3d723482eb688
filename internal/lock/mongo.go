package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"courtbook/pkg/logger"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const CollectionName = "resource_locks"

// lockDocument is an advisory lock row. expires_at carries a TTL index so a
// crashed holder cannot keep a court locked.
type lockDocument struct {
	Key       string    `bson:"_id"`
	Owner     string    `bson:"owner"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// Mongo locks by inserting a document keyed by the resource; a duplicate key
// means someone else holds it.
type Mongo struct {
	collection *mongo.Collection
	ttl        time.Duration
	wait       time.Duration
	log        *logger.Logger
}

func NewMongo(db *mongo.Database, ttl, wait time.Duration, log *logger.Logger) *Mongo {
	return &Mongo{
		collection: db.Collection(CollectionName),
		ttl:        ttl,
		wait:       wait,
		log:        log,
	}
}

func (m *Mongo) Acquire(ctx context.Context, key string) (Release, error) {
	owner := uuid.NewString()

	err := poll(ctx, m.wait, func() (bool, error) {
		now := time.Now().UTC()
		_, err := m.collection.InsertOne(ctx, lockDocument{
			Key:       key,
			Owner:     owner,
			ExpiresAt: now.Add(m.ttl),
			CreatedAt: now,
		})
		if err == nil {
			return true, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		// The TTL monitor runs about once a minute; clear stale rows ourselves.
		if _, err := m.collection.DeleteOne(ctx, bson.M{"_id": key, "expires_at": bson.M{"$lt": now}}); err != nil {
			return false, fmt.Errorf("failed to clear expired lock %s: %w", key, err)
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.ttl)
			defer cancel()
			if _, err := m.collection.DeleteOne(ctx, bson.M{"_id": key, "owner": owner}); err != nil {
				m.log.Warn("Failed to release lock", "key", key, "error", err)
			}
		})
	}, nil
}
