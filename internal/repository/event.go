package repository

import (
	"context"

	"courtbook/pkg/config"
	"courtbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoEventRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func (r *mongoEventRepository) Create(ctx context.Context, event *model.Event) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		return insertError(err, "event")
	}
	return nil
}

func (r *mongoEventRepository) FindByID(ctx context.Context, id string) (*model.Event, error) {
	return findOne[model.Event](ctx, r.collection, r.cfg.ReadTimeout, bson.M{"_id": id}, "event")
}

func (r *mongoEventRepository) FindAll(ctx context.Context, filter model.EventFilter) ([]*model.Event, error) {
	opts := findOptions(filter.Limit, filter.Offset, bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	return findMany[model.Event](ctx, r.collection, r.cfg.ReadTimeout, eventFilter(filter), opts, "events")
}

func (r *mongoEventRepository) Count(ctx context.Context, filter model.EventFilter) (int64, error) {
	return countDocuments(ctx, r.collection, r.cfg.ReadTimeout, eventFilter(filter), "events")
}

func (r *mongoEventRepository) Update(ctx context.Context, event *model.Event) error {
	set := bson.M{
		"name":           event.Name,
		"description":    event.Description,
		"blocked_courts": event.BlockedCourts,
		"updated_at":     event.UpdatedAt,
	}
	if event.Start != nil {
		set["start"] = event.Start
	}
	if event.End != nil {
		set["end"] = event.End
	}
	if event.Recurrence != nil {
		set["recurrence"] = event.Recurrence
	}
	update := bson.M{"$set": set}
	return updateOne(ctx, r.collection, r.cfg.WriteTimeout, event.ID, update, "event")
}

func (r *mongoEventRepository) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.collection, r.cfg.WriteTimeout, id, "event")
}

func (r *mongoEventRepository) FindByCourt(ctx context.Context, court model.CourtRef) ([]*model.Event, error) {
	opts := findOptions(0, 0, bson.D{{Key: "created_at", Value: 1}})
	return findMany[model.Event](ctx, r.collection, r.cfg.ReadTimeout, blocksCourt(court), opts, "events by court")
}

func (r *mongoEventRepository) CountByOrganizer(ctx context.Context, userID string) (int64, error) {
	return countDocuments(ctx, r.collection, r.cfg.ReadTimeout, bson.M{"organizer_id": userID}, "events by organizer")
}

func (r *mongoEventRepository) CountByGymnasium(ctx context.Context, gymID int) (int64, error) {
	return countDocuments(ctx, r.collection, r.cfg.ReadTimeout, bson.M{"blocked_courts.gymnasium_id": gymID}, "events by gymnasium")
}

func (r *mongoEventRepository) CountByCourt(ctx context.Context, court model.CourtRef) (int64, error) {
	return countDocuments(ctx, r.collection, r.cfg.ReadTimeout, blocksCourt(court), "events by court")
}

func (r *mongoEventRepository) RenameUser(ctx context.Context, userID string, snap model.UserSnapshot) (int64, error) {
	return updateMany(ctx, r.collection, r.cfg.WriteTimeout,
		bson.M{"organizer_id": userID},
		bson.M{"$set": bson.M{"organizer_info": snap}},
		"event organizer")
}

// Events reference gymnasiums by id only.
func (r *mongoEventRepository) RenameGymnasium(context.Context, int, string) (int64, error) {
	return 0, nil
}

func (r *mongoEventRepository) RenumberCourt(ctx context.Context, gymID, from, to int) (int64, error) {
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []any{bson.M{"c.gymnasium_id": gymID, "c.court_number": from}},
	})
	return updateMany(ctx, r.collection, r.cfg.WriteTimeout,
		blocksCourt(model.CourtRef{GymnasiumID: gymID, CourtNumber: from}),
		bson.M{"$set": bson.M{"blocked_courts.$[c].court_number": to}},
		"event blocked courts", opts)
}

func (r *mongoEventRepository) SetCourtStatus(context.Context, model.CourtRef, model.CourtStatus) (int64, error) {
	return 0, nil
}

func blocksCourt(court model.CourtRef) bson.M {
	return bson.M{"blocked_courts": bson.M{"$elemMatch": bson.M{
		"gymnasium_id": court.GymnasiumID,
		"court_number": court.CourtNumber,
	}}}
}

func eventFilter(f model.EventFilter) bson.M {
	filter := bson.M{}
	if f.Court != nil {
		filter = blocksCourt(*f.Court)
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	return filter
}
