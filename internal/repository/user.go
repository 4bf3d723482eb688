package repository

import (
	"context"

	"courtbook/pkg/config"
	"courtbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoUserRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func (r *mongoUserRepository) Create(ctx context.Context, user *model.User) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		return insertError(err, "user")
	}
	return nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return findOne[model.User](ctx, r.collection, r.cfg.ReadTimeout, bson.M{"_id": id}, "user")
}

func (r *mongoUserRepository) FindByStaffID(ctx context.Context, staffID string) (*model.User, error) {
	return findOne[model.User](ctx, r.collection, r.cfg.ReadTimeout, bson.M{"staff_details.staff_id": staffID}, "user")
}

func (r *mongoUserRepository) FindAll(ctx context.Context, filter model.UserFilter) ([]*model.User, error) {
	opts := findOptions(filter.Limit, filter.Offset, bson.D{{Key: "_id", Value: 1}})
	return findMany[model.User](ctx, r.collection, r.cfg.ReadTimeout, userFilter(filter), opts, "users")
}

func (r *mongoUserRepository) Count(ctx context.Context, filter model.UserFilter) (int64, error) {
	return countDocuments(ctx, r.collection, r.cfg.ReadTimeout, userFilter(filter), "users")
}

func (r *mongoUserRepository) Replace(ctx context.Context, user *model.User) error {
	return replaceOne(ctx, r.collection, r.cfg.WriteTimeout, user.NationalID, user, "user")
}

func (r *mongoUserRepository) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.collection, r.cfg.WriteTimeout, id, "user")
}

func (r *mongoUserRepository) CountSupervisedBy(ctx context.Context, staffID string) (int64, error) {
	return countDocuments(ctx, r.collection, r.cfg.ReadTimeout, bson.M{"student_details.supervisor_staff_id": staffID}, "supervised students")
}

func userFilter(f model.UserFilter) bson.M {
	filter := bson.M{}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}
