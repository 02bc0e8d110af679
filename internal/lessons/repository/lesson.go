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

	lessonerrors "tutorly/internal/lessons/errors"
	"tutorly/pkg/config"
	mongotx "tutorly/pkg/db/mongo"
	"tutorly/pkg/model"
)

const (
	CollectionName = "Lessons"

	repoTimeout = 5 * time.Second
)

// LessonRepository stores confirmed lessons. Create is expected to run
// inside the booking transaction alongside the slot flips.
type LessonRepository interface {
	Create(ctx context.Context, lesson *model.Lesson) error
	FindByID(ctx context.Context, id string) (*model.Lesson, error)
	FindByStudentOrderedByStartDesc(ctx context.Context, studentID string) ([]*model.Lesson, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoLessonRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoLessonRepository(cfg *config.Config) LessonRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLessonRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoLessonRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, repoTimeout)
}

func (r *mongoLessonRepository) Create(ctx context.Context, lesson *model.Lesson) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	lesson.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, lesson)
	if err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		lesson.ID = oid.Hex()
	}
	return nil
}

func (r *mongoLessonRepository) FindByID(ctx context.Context, id string) (*model.Lesson, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", lessonerrors.ErrInvalidID, id)
	}

	var lesson model.Lesson
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&lesson)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, lessonerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find lesson: %w", err)
	}

	return &lesson, nil
}

func (r *mongoLessonRepository) FindByStudentOrderedByStartDesc(ctx context.Context, studentID string) ([]*model.Lesson, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"student_id": studentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find lessons: %w", err)
	}
	defer cursor.Close(ctx)

	lessons := []*model.Lesson{}
	if err := cursor.All(ctx, &lessons); err != nil {
		return nil, fmt.Errorf("failed to decode lessons: %w", err)
	}

	return lessons, nil
}

func (r *mongoLessonRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
