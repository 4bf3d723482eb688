package repository

import (
	"context"

	"courtbook/pkg/config"
	"courtbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoSportRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func (r *mongoSportRepository) Create(ctx context.Context, sport *model.Sport) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, sport); err != nil {
		return insertError(err, "sport")
	}
	return nil
}

func (r *mongoSportRepository) FindByID(ctx context.Context, id int) (*model.Sport, error) {
	return findOne[model.Sport](ctx, r.collection, r.cfg.ReadTimeout, bson.M{"_id": id}, "sport")
}

func (r *mongoSportRepository) FindAll(ctx context.Context, page model.Page) ([]*model.Sport, error) {
	opts := findOptions(page.Limit, page.Offset, bson.D{{Key: "_id", Value: 1}})
	return findMany[model.Sport](ctx, r.collection, r.cfg.ReadTimeout, bson.M{}, opts, "sports")
}

func (r *mongoSportRepository) Count(ctx context.Context) (int64, error) {
	return countDocuments(ctx, r.collection, r.cfg.ReadTimeout, bson.M{}, "sports")
}

func (r *mongoSportRepository) Replace(ctx context.Context, sport *model.Sport) error {
	return replaceOne(ctx, r.collection, r.cfg.WriteTimeout, sport.ID, sport, "sport")
}

func (r *mongoSportRepository) Delete(ctx context.Context, id int) error {
	return deleteOne(ctx, r.collection, r.cfg.WriteTimeout, id, "sport")
}
