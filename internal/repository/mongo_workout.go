package repository

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/strengthlab/overload/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// newULID generates a new ULID string for document ids.
func newULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

type MongoWorkoutRepository struct {
	collection *mongo.Collection
}

func NewMongoWorkoutRepository(db *mongo.Database) *MongoWorkoutRepository {
	collection := db.Collection("workouts")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Covers the single-day filter and the history range scan.
	collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
	})

	return &MongoWorkoutRepository{collection: collection}
}

func (r *MongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) error {
	if workout.ID == "" {
		workout.ID = newULID()
	}
	workout.Version = 1
	workout.CreatedAt = time.Now()
	workout.UpdatedAt = workout.CreatedAt

	if _, err := r.collection.InsertOne(ctx, workout); err != nil {
		return fmt.Errorf("failed to create workout: %w", err)
	}
	return nil
}

func (r *MongoWorkoutRepository) GetByID(ctx context.Context, userID, id string) (*domain.Workout, error) {
	var workout domain.Workout
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&workout)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// Another user's workout and a nonexistent one look the same.
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

func (r *MongoWorkoutRepository) List(ctx context.Context, userID string, filter domain.WorkoutFilter) ([]*domain.Workout, error) {
	query := bson.M{"user_id": userID}
	if filter.Date != "" {
		query["date"] = filter.Date
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	if filter.Skip > 0 {
		opts.SetSkip(filter.Skip)
	}
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var workouts []*domain.Workout
	if err := cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (r *MongoWorkoutRepository) ListCompletedInRange(ctx context.Context, userID, fromDate, toDate string) ([]*domain.Workout, error) {
	// Dates are DateLayout strings, so the range compare is lexicographic.
	// toDate is exclusive.
	query := bson.M{
		"user_id":  userID,
		"date":     bson.M{"$gte": fromDate, "$lt": toDate},
		"end_time": bson.M{"$ne": nil},
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var workouts []*domain.Workout
	if err := cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// Update writes the workout back, matching on the version the caller read.
// A matched-count of zero means either the document is gone or a concurrent
// writer bumped the version first; the two cases are told apart with a
// follow-up existence check.
func (r *MongoWorkoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	workout.UpdatedAt = time.Now()

	filter := bson.M{
		"_id":     workout.ID,
		"user_id": workout.UserID,
		"version": workout.Version,
	}
	update := bson.M{
		"$set": bson.M{
			"template_id": workout.TemplateID,
			"date":        workout.Date,
			"start_time":  workout.StartTime,
			"end_time":    workout.EndTime,
			"exercises":   workout.Exercises,
			"updated_at":  workout.UpdatedAt,
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update workout: %w", err)
	}
	if result.MatchedCount == 0 {
		exists, err := r.collection.CountDocuments(ctx, bson.M{"_id": workout.ID, "user_id": workout.UserID})
		if err != nil {
			return err
		}
		if exists == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrConflict
	}

	workout.Version++
	return nil
}

func (r *MongoWorkoutRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete workout: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
