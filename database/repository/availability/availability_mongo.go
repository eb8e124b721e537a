package availabilityRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"superbryn/database"
	"superbryn/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAvailabilityRepo implements AvailabilityRepository using MongoDB.
type MongoAvailabilityRepo struct {
	coll *mongo.Collection
}

// NewMongoAvailabilityRepo creates a new instance of AvailabilityRepository using MongoDB.
func NewMongoAvailabilityRepo() AvailabilityRepository {
	coll := database.MongoClient.Database(database.DBName).Collection("mentor_availability")
	repo := &MongoAvailabilityRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create availability indexes: %v\n", err)
	}
	return repo
}

func (r *MongoAvailabilityRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_id")},
		// One window per (mentor, date); SetWindow upserts on this key.
		{
			Keys:    bson.D{{Key: "mentor_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_mentor_date"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create availability indexes: %w", err)
	}
	return nil
}

// SetWindow upserts the window for (mentor, date), replacing any prior window
// for the same date. Idempotent.
func (r *MongoAvailabilityRepo) SetWindow(ctx context.Context, window *models.AvailabilityWindow) (*models.AvailabilityWindow, error) {
	now := time.Now().UTC()
	filter := bson.M{"mentor_id": window.MentorID, "date": window.Date}
	update := bson.M{
		"$set": bson.M{
			"start":         window.Start,
			"end":           window.End,
			"slot_duration": window.SlotDuration,
			"is_active":     true,
			"updated_at":    now,
		},
		"$setOnInsert": bson.M{
			"id":         uuid.New().String(),
			"mentor_id":  window.MentorID,
			"date":       window.Date,
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var stored models.AvailabilityWindow
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return nil, fmt.Errorf("failed to upsert availability window: %w", err)
	}
	return &stored, nil
}

// GetWindow returns the active window for (mentor, date) or ErrNotFound.
func (r *MongoAvailabilityRepo) GetWindow(ctx context.Context, mentorID, date string) (*models.AvailabilityWindow, error) {
	var window models.AvailabilityWindow
	err := r.coll.FindOne(ctx, bson.M{"mentor_id": mentorID, "date": date, "is_active": true}).Decode(&window)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch availability window: %w", err)
	}
	return &window, nil
}

// ListWindows returns a mentor's windows within an inclusive date range.
func (r *MongoAvailabilityRepo) ListWindows(ctx context.Context, mentorID, fromDate, toDate string) ([]models.AvailabilityWindow, error) {
	filter := bson.M{"mentor_id": mentorID, "is_active": true}
	dateRange := bson.M{}
	if fromDate != "" {
		dateRange["$gte"] = fromDate
	}
	if toDate != "" {
		dateRange["$lte"] = toDate
	}
	if len(dateRange) > 0 {
		filter["date"] = dateRange
	}

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("availability query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var windows []models.AvailabilityWindow
	if err := cursor.All(ctx, &windows); err != nil {
		return nil, fmt.Errorf("failed to decode availability windows: %w", err)
	}
	return windows, nil
}

// Remove deletes a window by id.
func (r *MongoAvailabilityRepo) Remove(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to remove availability window %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
