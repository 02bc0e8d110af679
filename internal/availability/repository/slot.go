package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	availabilityerrors "tutorly/internal/availability/errors"
	"tutorly/pkg/config"
	mongotx "tutorly/pkg/db/mongo"
	"tutorly/pkg/model"
)

const (
	CollectionName = "Slots"

	repoTimeout = 5 * time.Second
)

// SlotRepository is the store of 30 minute availability slots. Queries
// over unbooked ranges feed both the browsing read path and the locked
// booking path; MarkBooked is the conditional write that makes slot
// consumption exactly-once.
type SlotRepository interface {
	Create(ctx context.Context, slot *model.Slot) error
	FindByID(ctx context.Context, id string) (*model.Slot, error)
	Delete(ctx context.Context, id string) error
	FindByTutorOrderedByStart(ctx context.Context, tutorID string) ([]*model.Slot, error)
	ExistsByTutorAndStart(ctx context.Context, tutorID string, start time.Time) (bool, error)
	FindUnbookedInRange(ctx context.Context, start, end time.Time) ([]*model.Slot, error)
	FindUnbookedByTutorInRange(ctx context.Context, tutorID string, start, end time.Time) ([]*model.Slot, error)
	FindUnbookedExcludingTutorInRange(ctx context.Context, excludedTutorID string, start, end time.Time) ([]*model.Slot, error)
	MarkBooked(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoSlotRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoSlotRepository(cfg *config.Config) SlotRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless already inside a
// transaction; a SessionContext cannot be wrapped without breaking
// transaction semantics.
func (r *mongoSlotRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, repoTimeout)
}

func (r *mongoSlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	slot.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, slot)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return availabilityerrors.ErrDuplicateSlot
		}
		return fmt.Errorf("failed to create slot: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		slot.ID = oid.Hex()
	}
	return nil
}

func (r *mongoSlotRepository) FindByID(ctx context.Context, id string) (*model.Slot, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, id)
	}

	var slot model.Slot
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, availabilityerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find slot: %w", err)
	}

	return &slot, nil
}

func (r *mongoSlotRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	if result.DeletedCount == 0 {
		return availabilityerrors.ErrNotFound
	}

	return nil
}

func (r *mongoSlotRepository) FindByTutorOrderedByStart(ctx context.Context, tutorID string) ([]*model.Slot, error) {
	return r.find(ctx, bson.M{"tutor_id": tutorID})
}

func (r *mongoSlotRepository) ExistsByTutorAndStart(ctx context.Context, tutorID string, start time.Time) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{
		"tutor_id":   tutorID,
		"start_time": start,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check slot existence: %w", err)
	}
	return count > 0, nil
}

func (r *mongoSlotRepository) FindUnbookedInRange(ctx context.Context, start, end time.Time) ([]*model.Slot, error) {
	return r.find(ctx, unbookedStartRangeFilter(start, end))
}

func (r *mongoSlotRepository) FindUnbookedByTutorInRange(ctx context.Context, tutorID string, start, end time.Time) ([]*model.Slot, error) {
	filter := unbookedRangeFilter(start, end)
	filter["tutor_id"] = tutorID
	return r.find(ctx, filter)
}

func (r *mongoSlotRepository) FindUnbookedExcludingTutorInRange(ctx context.Context, excludedTutorID string, start, end time.Time) ([]*model.Slot, error) {
	filter := unbookedRangeFilter(start, end)
	filter["tutor_id"] = bson.M{"$ne": excludedTutorID}
	return r.find(ctx, filter)
}

// MarkBooked flips a slot to booked only when it is still unbooked.
// A missing match means the slot was consumed by a concurrent booking
// or deleted after it was read, and the caller's transaction must
// abort.
func (r *mongoSlotRepository) MarkBooked(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "is_booked": false},
		bson.M{"$set": bson.M{"is_booked": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark slot booked: %w", err)
	}
	if result.MatchedCount == 0 {
		return availabilityerrors.ErrSlotTaken
	}

	return nil
}

func (r *mongoSlotRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func (r *mongoSlotRepository) find(ctx context.Context, filter bson.M) ([]*model.Slot, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []*model.Slot
	if err = cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode slots: %w", err)
	}

	return slots, nil
}

// unbookedRangeFilter bounds both ends of the window. Booking queries
// use it so a matched slot always lies wholly inside [start, end].
func unbookedRangeFilter(start, end time.Time) bson.M {
	return bson.M{
		"is_booked":  false,
		"start_time": bson.M{"$gte": start},
		"end_time":   bson.M{"$lte": end},
	}
}

// unbookedStartRangeFilter bounds only the start time. Day listings use
// it: the 23:30 slot starts inside the day but ends at next-day
// midnight, so an end_time bound would drop it.
func unbookedStartRangeFilter(start, end time.Time) bson.M {
	return bson.M{
		"is_booked":  false,
		"start_time": bson.M{"$gte": start, "$lte": end},
	}
}
