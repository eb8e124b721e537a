package callerRepo

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

// MongoCallerRepo implements CallerRepository using MongoDB.
type MongoCallerRepo struct {
	coll *mongo.Collection
}

// NewMongoCallerRepo creates a new instance of CallerRepository using MongoDB.
func NewMongoCallerRepo() CallerRepository {
	coll := database.MongoClient.Database(database.DBName).Collection("callers")
	repo := &MongoCallerRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create caller indexes: %v\n", err)
	}
	return repo
}

func (r *MongoCallerRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "contact_number", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create caller indexes: %w", err)
	}
	return nil
}

// GetOrCreate returns the caller for a contact number, creating one if absent.
// A single upsert keyed on the unique contact_number index, so two concurrent
// first contacts converge on one record.
func (r *MongoCallerRepo) GetOrCreate(ctx context.Context, contactNumber, name string) (*models.Caller, error) {
	if name == "" {
		name = "Caller"
	}
	now := time.Now().UTC()
	update := bson.M{
		"$setOnInsert": bson.M{
			"id":             uuid.New().String(),
			"contact_number": contactNumber,
			"name":           name,
			"is_active":      true,
			"created_at":     now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var caller models.Caller
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"contact_number": contactNumber}, update, opts).Decode(&caller); err != nil {
		return nil, fmt.Errorf("failed to get or create caller %s: %w", contactNumber, err)
	}
	return &caller, nil
}

// GetByID retrieves a caller by its unique ID.
func (r *MongoCallerRepo) GetByID(ctx context.Context, id string) (*models.Caller, error) {
	var caller models.Caller
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&caller); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch caller %s: %w", id, err)
	}
	return &caller, nil
}

// GetByContact retrieves a caller by normalized contact number.
func (r *MongoCallerRepo) GetByContact(ctx context.Context, contactNumber string) (*models.Caller, error) {
	var caller models.Caller
	if err := r.coll.FindOne(ctx, bson.M{"contact_number": contactNumber}).Decode(&caller); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch caller %s: %w", contactNumber, err)
	}
	return &caller, nil
}

// List pages through all callers.
func (r *MongoCallerRepo) List(ctx context.Context, skip, limit int64) ([]models.Caller, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("caller query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var callers []models.Caller
	if err := cursor.All(ctx, &callers); err != nil {
		return nil, fmt.Errorf("failed to decode callers: %w", err)
	}
	return callers, nil
}

// Count returns the number of callers.
func (r *MongoCallerRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("caller count failed: %w", err)
	}
	return n, nil
}
