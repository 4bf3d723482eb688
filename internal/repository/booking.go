package repository

import (
	"context"
	"time"

	"courtbook/pkg/config"
	"courtbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

var activeBookingStatuses = []model.BookingStatus{model.BookingPending, model.BookingConfirmed}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		return insertError(err, "booking")
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	return findOne[model.Booking](ctx, r.collection, r.cfg.ReadTimeout, bson.M{"_id": id}, "booking")
}

func (r *mongoBookingRepository) FindAll(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	opts := findOptions(filter.Limit, filter.Offset, bson.D{{Key: "start", Value: 1}, {Key: "_id", Value: 1}})
	return findMany[model.Booking](ctx, r.collection, r.cfg.ReadTimeout, r.buildSearchFilter(filter), opts, "bookings")
}

func (r *mongoBookingRepository) Count(ctx context.Context, filter model.BookingFilter) (int64, error) {
	return countDocuments(ctx, r.collection, r.cfg.ReadTimeout, r.buildSearchFilter(filter), "bookings")
}

func (r *mongoBookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	update := bson.M{
		"$set": bson.M{
			"status":         booking.Status,
			"reason":         booking.Reason,
			"operator_id":    booking.OperatorID,
			"equipment_held": booking.EquipmentHeld,
			"updated_at":     booking.UpdatedAt,
		},
	}
	return updateOne(ctx, r.collection, r.cfg.WriteTimeout, booking.ID, update, "booking")
}

func (r *mongoBookingRepository) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.collection, r.cfg.WriteTimeout, id, "booking")
}

func (r *mongoBookingRepository) FindConfirmedOverlapping(ctx context.Context, court model.CourtRef, start, end time.Time) ([]*model.Booking, error) {
	filter := bson.M{
		"gymnasium_id": court.GymnasiumID,
		"court_number": court.CourtNumber,
		"status":       model.BookingConfirmed,
		"start":        bson.M{"$lt": end},
		"end":          bson.M{"$gt": start},
	}
	opts := findOptions(0, 0, bson.D{{Key: "start", Value: 1}})
	return findMany[model.Booking](ctx, r.collection, r.cfg.ReadTimeout, filter, opts, "overlapping bookings")
}

func (r *mongoBookingRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"requester_id": userID},
		bson.M{"operator_id": userID},
	}}
	return countDocuments(ctx, r.collection, r.cfg.ReadTimeout, filter, "bookings by user")
}

func (r *mongoBookingRepository) CountByGymnasium(ctx context.Context, gymID int) (int64, error) {
	return countDocuments(ctx, r.collection, r.cfg.ReadTimeout, bson.M{"gymnasium_id": gymID}, "bookings by gymnasium")
}

func (r *mongoBookingRepository) CountActiveByCourt(ctx context.Context, court model.CourtRef) (int64, error) {
	filter := bson.M{
		"gymnasium_id": court.GymnasiumID,
		"court_number": court.CourtNumber,
		"status":       bson.M{"$in": activeBookingStatuses},
	}
	return countDocuments(ctx, r.collection, r.cfg.ReadTimeout, filter, "active bookings by court")
}

func (r *mongoBookingRepository) CountHoldingEquipment(ctx context.Context, gymID, equipmentID int) (int64, error) {
	filter := bson.M{
		"gymnasium_id":           gymID,
		"equipment_held":         true,
		"equipment.equipment_id": equipmentID,
	}
	return countDocuments(ctx, r.collection, r.cfg.ReadTimeout, filter, "bookings holding equipment")
}

func (r *mongoBookingRepository) RenameUser(ctx context.Context, userID string, snap model.UserSnapshot) (int64, error) {
	return updateMany(ctx, r.collection, r.cfg.WriteTimeout,
		bson.M{"requester_id": userID},
		bson.M{"$set": bson.M{"requester_info": snap}},
		"booking requester")
}

func (r *mongoBookingRepository) RenameGymnasium(ctx context.Context, gymID int, name string) (int64, error) {
	return updateMany(ctx, r.collection, r.cfg.WriteTimeout,
		bson.M{"gymnasium_id": gymID},
		bson.M{"$set": bson.M{"location_info.gymnasium_name": name}},
		"booking location")
}

func (r *mongoBookingRepository) RenumberCourt(ctx context.Context, gymID, from, to int) (int64, error) {
	return updateMany(ctx, r.collection, r.cfg.WriteTimeout,
		bson.M{"gymnasium_id": gymID, "court_number": from},
		bson.M{"$set": bson.M{"court_number": to}},
		"booking court")
}

func (r *mongoBookingRepository) SetCourtStatus(ctx context.Context, court model.CourtRef, status model.CourtStatus) (int64, error) {
	filter := bson.M{
		"gymnasium_id": court.GymnasiumID,
		"court_number": court.CourtNumber,
		"status":       bson.M{"$in": activeBookingStatuses},
	}
	return updateMany(ctx, r.collection, r.cfg.WriteTimeout, filter,
		bson.M{"$set": bson.M{"location_info.court_status": status}},
		"booking court status")
}

func (r *mongoBookingRepository) buildSearchFilter(f model.BookingFilter) bson.M {
	filter := bson.M{}
	if f.RequesterID != "" {
		filter["requester_id"] = f.RequesterID
	}
	if f.GymnasiumID > 0 {
		filter["gymnasium_id"] = f.GymnasiumID
	}
	if f.CourtNumber > 0 {
		filter["court_number"] = f.CourtNumber
	}
	if len(f.Statuses) > 0 {
		filter["status"] = bson.M{"$in": f.Statuses}
	}
	if f.To != nil {
		filter["start"] = bson.M{"$lt": *f.To}
	}
	if f.From != nil {
		filter["end"] = bson.M{"$gt": *f.From}
	}
	return filter
}
