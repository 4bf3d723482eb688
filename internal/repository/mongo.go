package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"courtbook/pkg/config"
	mongotx "courtbook/pkg/db/mongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongoRepositories wires every collection against cfg.Client.Mongo.
func NewMongoRepositories(cfg *config.Config) *Repositories {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &Repositories{
		Users:      &mongoUserRepository{cfg: cfg, collection: db.Collection(UsersCollection)},
		Gymnasiums: &mongoGymnasiumRepository{cfg: cfg, collection: db.Collection(GymnasiumsCollection)},
		Sports:     &mongoSportRepository{cfg: cfg, collection: db.Collection(SportsCollection)},
		Bookings:   &mongoBookingRepository{cfg: cfg, collection: db.Collection(BookingsCollection)},
		Events:     &mongoEventRepository{cfg: cfg, collection: db.Collection(EventsCollection)},
		Tickets:    &mongoTicketRepository{cfg: cfg, collection: db.Collection(TicketsCollection)},
		Tx:         mongotx.NewTransactionManager(cfg.Client.Mongo),
		Dropper:    &mongoDropper{cfg: cfg, db: db},
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// A SessionContext cannot be wrapped without leaving the transaction, so it is
// returned unchanged with a no-op cancel.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func findOptions(limit int, offset int64, sort bson.D) *options.FindOptions {
	opts := options.Find().SetSort(sort)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(offset)
	}
	return opts
}

func insertError(err error, what string) error {
	if mongo.IsDuplicateKeyError(err) {
		if strings.Contains(err.Error(), "email") {
			return ErrDuplicateEmail
		}
		return ErrDuplicateKey
	}
	return fmt.Errorf("failed to create %s: %w", what, err)
}

func countDocuments(ctx context.Context, coll *mongo.Collection, timeout time.Duration, filter any, what string) (int64, error) {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	count, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", what, err)
	}
	return count, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, timeout time.Duration, filter any, what string) (*T, error) {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	var doc T
	err := coll.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find %s: %w", what, err)
	}
	return &doc, nil
}

func findMany[T any](ctx context.Context, coll *mongo.Collection, timeout time.Duration, filter any, opts *options.FindOptions, what string) ([]*T, error) {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", what, err)
	}
	defer cursor.Close(ctx)

	docs := []*T{}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", what, err)
	}
	return docs, nil
}

func replaceOne(ctx context.Context, coll *mongo.Collection, timeout time.Duration, id any, doc any, what string) error {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	result, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return insertError(err, what)
		}
		return fmt.Errorf("failed to update %s: %w", what, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func updateOne(ctx context.Context, coll *mongo.Collection, timeout time.Duration, id any, update any, what string) error {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	result, err := coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", what, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func updateMany(ctx context.Context, coll *mongo.Collection, timeout time.Duration, filter, update any, what string, opts ...*options.UpdateOptions) (int64, error) {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	result, err := coll.UpdateMany(ctx, filter, update, opts...)
	if err != nil {
		return 0, fmt.Errorf("failed to update %s snapshots: %w", what, err)
	}
	return result.MatchedCount, nil
}

func deleteOne(ctx context.Context, coll *mongo.Collection, timeout time.Duration, id any, what string) error {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	result, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", what, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type mongoDropper struct {
	cfg *config.Config
	db  *mongo.Database
}

// DropAll empties every collection. The collections themselves stay, so the
// validators and indexes installed by the migration survive a reseed.
func (d *mongoDropper) DropAll(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, d.cfg.WriteTimeout)
	defer cancel()

	for _, name := range Collections {
		if _, err := d.db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("failed to clear %s: %w", name, err)
		}
	}
	return nil
}
