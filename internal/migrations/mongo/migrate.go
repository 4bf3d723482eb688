package mongo

import (
	"context"
	"fmt"

	"courtbook/internal/lock"
	"courtbook/internal/migrations/mongo/validators"
	"courtbook/internal/repository"
	"courtbook/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UsersIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "staff_details.staff_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"staff_details.staff_id": bson.M{"$exists": true}}),
		},
		{Keys: bson.D{{Key: "student_details.supervisor_staff_id", Value: 1}}},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "status", Value: 1}}},
	}

	GymnasiumsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "courts.allowed_sports", Value: 1}}},
	}

	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "gymnasium_id", Value: 1},
			{Key: "court_number", Value: 1},
			{Key: "start", Value: 1},
			{Key: "end", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "gymnasium_id", Value: 1},
			{Key: "court_number", Value: 1},
			{Key: "status", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "requester_id", Value: 1},
			{Key: "start", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "gymnasium_id", Value: 1},
			{Key: "equipment.equipment_id", Value: 1},
			{Key: "equipment_held", Value: 1},
		}},
	}

	EventsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "blocked_courts.gymnasium_id", Value: 1},
			{Key: "blocked_courts.court_number", Value: 1},
		}},
		{Keys: bson.D{{Key: "organizer_id", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}}},
	}

	TicketsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "reporter_id", Value: 1}}},
		{Keys: bson.D{
			{Key: "gymnasium_id", Value: 1},
			{Key: "court_number", Value: 1},
			{Key: "status", Value: 1},
		}},
	}

	// Lock rows expire as soon as expires_at passes.
	LocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

// Definition is the validator and index set of one collection. A nil
// validator leaves the collection unvalidated.
type Definition struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func Definitions() map[string]Definition {
	return map[string]Definition{
		repository.UsersCollection:      {Indexes: UsersIndexes, Validator: validators.UserValidator},
		repository.GymnasiumsCollection: {Indexes: GymnasiumsIndexes, Validator: validators.GymnasiumValidator},
		repository.SportsCollection:     {Validator: validators.SportValidator},
		repository.BookingsCollection:   {Indexes: BookingsIndexes, Validator: validators.BookingValidator},
		repository.EventsCollection:     {Indexes: EventsIndexes, Validator: validators.EventValidator},
		repository.TicketsCollection:    {Indexes: TicketsIndexes, Validator: validators.TicketValidator},
		lock.CollectionName:             {Indexes: LocksIndexes},
	}
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running mongo migrations", "database", dbName)

	for name, def := range Definitions() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	if validator == nil {
		return nil
	}
	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	coll := db.Collection(name)
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "indexes", len(models))
	return nil
}
