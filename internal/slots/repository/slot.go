package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	slotserrors "vaxbook/internal/slots/errors"
	"vaxbook/pkg/config"
	mongodb "vaxbook/pkg/db/mongo"
	"vaxbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Slots"
)

type SlotRepository interface {
	Create(ctx context.Context, slot *model.Slot) error
	FindByID(ctx context.Context, id string) (*model.Slot, error)
	// FindByDateRange returns slots with start <= date < end, optionally of one dose type.
	FindByDateRange(ctx context.Context, start, end time.Time, dose *model.DoseType) ([]*model.Slot, error)
	// AddRegistrant appends userID only while the slot has room and does not
	// already list the user.
	AddRegistrant(ctx context.Context, slotID, userID string) error
	RemoveRegistrant(ctx context.Context, slotID, userID string) error
}

type mongoSlotRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSlotRepository(cfg *config.Config) SlotRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoSlotRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoSlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	slot.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if slot.RegisteredUsers == nil {
		slot.RegisteredUsers = []string{}
	}

	result, err := r.collection.InsertOne(ctx, slot)
	if err != nil {
		return fmt.Errorf("failed to create slot: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		slot.ID = oid.Hex()
	}
	return nil
}

func (r *mongoSlotRepository) FindByID(ctx context.Context, id string) (*model.Slot, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", slotserrors.ErrInvalidID, id)
	}

	var slot model.Slot
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&slot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, slotserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find slot: %w", err)
	}
	return &slot, nil
}

func (r *mongoSlotRepository) FindByDateRange(ctx context.Context, start, end time.Time, dose *model.DoseType) ([]*model.Slot, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, buildDateFilter(start, end, dose), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find slots: %w", err)
	}
	defer cursor.Close(ctx)

	slots := []*model.Slot{}
	if err = cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode slots: %w", err)
	}
	return slots, nil
}

func buildDateFilter(start, end time.Time, dose *model.DoseType) bson.M {
	filter := bson.M{
		"date": bson.M{"$gte": start, "$lt": end},
	}
	if dose != nil {
		filter["dose_type"] = *dose
	}
	return filter
}

// buildRegistrationFilter matches the slot only while it has a free place and
// does not contain userID, so the $push below cannot break capacity.
func buildRegistrationFilter(slotID primitive.ObjectID, userID string) bson.M {
	return bson.M{
		"_id":              slotID,
		"registered_users": bson.M{"$ne": userID},
		"$expr": bson.M{
			"$lt": bson.A{bson.M{"$size": "$registered_users"}, "$capacity"},
		},
	}
}

func (r *mongoSlotRepository) AddRegistrant(ctx context.Context, slotID, userID string) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(slotID)
	if err != nil {
		return fmt.Errorf("%w: %s", slotserrors.ErrInvalidID, slotID)
	}

	update := bson.M{"$push": bson.M{"registered_users": userID}}
	result, err := r.collection.UpdateOne(ctx, buildRegistrationFilter(objectID, userID), update)
	if err != nil {
		return fmt.Errorf("failed to register user in slot: %w", err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to check slot existence: %w", err)
	}
	if count == 0 {
		return slotserrors.ErrNotFound
	}
	return slotserrors.ErrSlotUnavailable
}

func (r *mongoSlotRepository) RemoveRegistrant(ctx context.Context, slotID, userID string) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(slotID)
	if err != nil {
		return fmt.Errorf("%w: %s", slotserrors.ErrInvalidID, slotID)
	}

	update := bson.M{"$pull": bson.M{"registered_users": userID}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to remove user from slot: %w", err)
	}
	if result.MatchedCount == 0 {
		return slotserrors.ErrNotFound
	}
	return nil
}
