package repository

import (
	"context"

	"courtbook/pkg/config"
	"courtbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoTicketRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func (r *mongoTicketRepository) Create(ctx context.Context, ticket *model.Ticket) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, ticket); err != nil {
		return insertError(err, "ticket")
	}
	return nil
}

func (r *mongoTicketRepository) FindByID(ctx context.Context, id string) (*model.Ticket, error) {
	return findOne[model.Ticket](ctx, r.collection, r.cfg.ReadTimeout, bson.M{"_id": id}, "ticket")
}

func (r *mongoTicketRepository) FindAll(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, error) {
	opts := findOptions(filter.Limit, filter.Offset, bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	return findMany[model.Ticket](ctx, r.collection, r.cfg.ReadTimeout, ticketFilter(filter), opts, "tickets")
}

func (r *mongoTicketRepository) Count(ctx context.Context, filter model.TicketFilter) (int64, error) {
	return countDocuments(ctx, r.collection, r.cfg.ReadTimeout, ticketFilter(filter), "tickets")
}

func (r *mongoTicketRepository) Update(ctx context.Context, ticket *model.Ticket) error {
	update := bson.M{
		"$set": bson.M{
			"description": ticket.Description,
			"status":      ticket.Status,
			"updated_at":  ticket.UpdatedAt,
		},
	}
	return updateOne(ctx, r.collection, r.cfg.WriteTimeout, ticket.ID, update, "ticket")
}

func (r *mongoTicketRepository) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.collection, r.cfg.WriteTimeout, id, "ticket")
}

func (r *mongoTicketRepository) CountByReporter(ctx context.Context, userID string) (int64, error) {
	return countDocuments(ctx, r.collection, r.cfg.ReadTimeout, bson.M{"reporter_id": userID}, "tickets by reporter")
}

func (r *mongoTicketRepository) CountByGymnasium(ctx context.Context, gymID int) (int64, error) {
	return countDocuments(ctx, r.collection, r.cfg.ReadTimeout, bson.M{"gymnasium_id": gymID}, "tickets by gymnasium")
}

func (r *mongoTicketRepository) CountOpenByCourt(ctx context.Context, court model.CourtRef) (int64, error) {
	filter := bson.M{
		"gymnasium_id": court.GymnasiumID,
		"court_number": court.CourtNumber,
		"status":       bson.M{"$ne": model.TicketResolved},
	}
	return countDocuments(ctx, r.collection, r.cfg.ReadTimeout, filter, "open tickets by court")
}

func (r *mongoTicketRepository) RenameUser(ctx context.Context, userID string, snap model.UserSnapshot) (int64, error) {
	return updateMany(ctx, r.collection, r.cfg.WriteTimeout,
		bson.M{"reporter_id": userID},
		bson.M{"$set": bson.M{"reporter_info": snap}},
		"ticket reporter")
}

func (r *mongoTicketRepository) RenameGymnasium(ctx context.Context, gymID int, name string) (int64, error) {
	return updateMany(ctx, r.collection, r.cfg.WriteTimeout,
		bson.M{"gymnasium_id": gymID},
		bson.M{"$set": bson.M{"location_info.gymnasium_name": name}},
		"ticket location")
}

func (r *mongoTicketRepository) RenumberCourt(ctx context.Context, gymID, from, to int) (int64, error) {
	return updateMany(ctx, r.collection, r.cfg.WriteTimeout,
		bson.M{"gymnasium_id": gymID, "court_number": from},
		bson.M{"$set": bson.M{"court_number": to}},
		"ticket court")
}

// Tickets keep no court status copy.
func (r *mongoTicketRepository) SetCourtStatus(context.Context, model.CourtRef, model.CourtStatus) (int64, error) {
	return 0, nil
}

func ticketFilter(f model.TicketFilter) bson.M {
	filter := bson.M{}
	if f.ReporterID != "" {
		filter["reporter_id"] = f.ReporterID
	}
	if f.GymnasiumID > 0 {
		filter["gymnasium_id"] = f.GymnasiumID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}
