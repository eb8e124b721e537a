package mentorRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"superbryn/database"
	"superbryn/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMentorRepo implements MentorRepository using MongoDB.
type MongoMentorRepo struct {
	coll *mongo.Collection
}

// NewMongoMentorRepo creates a new instance of MentorRepository using MongoDB.
func NewMongoMentorRepo() MentorRepository {
	coll := database.MongoClient.Database(database.DBName).Collection("mentors")
	repo := &MongoMentorRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create mentor indexes: %v\n", err)
	}
	return repo
}

func (r *MongoMentorRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create mentor indexes: %w", err)
	}
	return nil
}

// Create inserts a new mentor record.
func (r *MongoMentorRepo) Create(ctx context.Context, mentor *models.Mentor) error {
	if _, err := r.coll.InsertOne(ctx, mentor); err != nil {
		return fmt.Errorf("failed to create mentor: %w", err)
	}
	return nil
}

// GetByID retrieves a mentor by its unique ID.
func (r *MongoMentorRepo) GetByID(ctx context.Context, id string) (*models.Mentor, error) {
	var mentor models.Mentor
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&mentor); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch mentor %s: %w", id, err)
	}
	return &mentor, nil
}

// GetByEmail retrieves a mentor by email, password hash included.
func (r *MongoMentorRepo) GetByEmail(ctx context.Context, email string) (*models.Mentor, error) {
	var mentor models.Mentor
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&mentor); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch mentor by email: %w", err)
	}
	return &mentor, nil
}

// List returns mentors, optionally active ones only.
func (r *MongoMentorRepo) List(ctx context.Context, activeOnly bool) ([]models.Mentor, error) {
	filter := bson.M{}
	if activeOnly {
		filter["is_active"] = true
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mentor query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var mentors []models.Mentor
	if err := cursor.All(ctx, &mentors); err != nil {
		return nil, fmt.Errorf("failed to decode mentors: %w", err)
	}
	return mentors, nil
}

// Update applies field updates to an existing mentor record.
func (r *MongoMentorRepo) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Mentor, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mentor models.Mentor
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": set}, opts).Decode(&mentor)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update mentor %s: %w", id, err)
	}
	return &mentor, nil
}

// Deactivate soft-deletes a mentor.
func (r *MongoMentorRepo) Deactivate(ctx context.Context, id string) error {
	_, err := r.Update(ctx, id, map[string]interface{}{"is_active": false})
	return err
}

// Count returns the number of active mentors.
func (r *MongoMentorRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"is_active": true})
	if err != nil {
		return 0, fmt.Errorf("mentor count failed: %w", err)
	}
	return n, nil
}
