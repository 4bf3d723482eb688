package repository

import (
	"context"
	"fmt"

	"courtbook/pkg/config"
	"courtbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoGymnasiumRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func (r *mongoGymnasiumRepository) Create(ctx context.Context, gym *model.Gymnasium) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, gym); err != nil {
		return insertError(err, "gymnasium")
	}
	return nil
}

func (r *mongoGymnasiumRepository) FindByID(ctx context.Context, id int) (*model.Gymnasium, error) {
	return findOne[model.Gymnasium](ctx, r.collection, r.cfg.ReadTimeout, bson.M{"_id": id}, "gymnasium")
}

func (r *mongoGymnasiumRepository) FindAll(ctx context.Context, page model.Page) ([]*model.Gymnasium, error) {
	opts := findOptions(page.Limit, page.Offset, bson.D{{Key: "_id", Value: 1}})
	return findMany[model.Gymnasium](ctx, r.collection, r.cfg.ReadTimeout, bson.M{}, opts, "gymnasiums")
}

func (r *mongoGymnasiumRepository) Count(ctx context.Context) (int64, error) {
	return countDocuments(ctx, r.collection, r.cfg.ReadTimeout, bson.M{}, "gymnasiums")
}

func (r *mongoGymnasiumRepository) Replace(ctx context.Context, gym *model.Gymnasium) error {
	return replaceOne(ctx, r.collection, r.cfg.WriteTimeout, gym.ID, gym, "gymnasium")
}

func (r *mongoGymnasiumRepository) Delete(ctx context.Context, id int) error {
	return deleteOne(ctx, r.collection, r.cfg.WriteTimeout, id, "gymnasium")
}

func (r *mongoGymnasiumRepository) CountBySport(ctx context.Context, sportID int) (int64, error) {
	return countDocuments(ctx, r.collection, r.cfg.ReadTimeout, bson.M{"courts.allowed_sports": sportID}, "gymnasiums by sport")
}

func (r *mongoGymnasiumRepository) ReserveEquipment(ctx context.Context, gymID, equipmentID, qty int) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"_id": gymID,
		"equipment": bson.M{"$elemMatch": bson.M{
			"equipment_id":       equipmentID,
			"available_quantity": bson.M{"$gte": qty},
		}},
	}
	update := bson.M{"$inc": bson.M{"equipment.$.available_quantity": -qty}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve equipment: %w", err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	// Tell a missing item apart from a short one.
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": gymID, "equipment.equipment_id": equipmentID})
	if err != nil {
		return fmt.Errorf("failed to reserve equipment: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrInsufficientQuantity
}

func (r *mongoGymnasiumRepository) ReleaseEquipment(ctx context.Context, gymID, equipmentID, qty int) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"_id": gymID, "equipment.equipment_id": equipmentID}

	// available = min(total, available + qty) on the matching item only.
	restored := bson.D{{Key: "$min", Value: bson.A{
		"$$item.total_quantity",
		bson.D{{Key: "$add", Value: bson.A{"$$item.available_quantity", qty}}},
	}}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "equipment", Value: bson.D{{Key: "$map", Value: bson.D{
			{Key: "input", Value: "$equipment"},
			{Key: "as", Value: "item"},
			{Key: "in", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$$item.equipment_id", equipmentID}}},
				bson.D{{Key: "$mergeObjects", Value: bson.A{"$$item", bson.D{{Key: "available_quantity", Value: restored}}}}},
				"$$item",
			}}}},
		}}}}}}},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to release equipment: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
