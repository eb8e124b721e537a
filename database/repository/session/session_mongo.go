package sessionRepo

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

// MongoSessionRepo implements SessionRepository using MongoDB.
type MongoSessionRepo struct {
	sessions *mongo.Collection
	costLogs *mongo.Collection
}

// NewMongoSessionRepo creates a new instance of SessionRepository using MongoDB.
func NewMongoSessionRepo() SessionRepository {
	db := database.MongoClient.Database(database.DBName)
	repo := &MongoSessionRepo{
		sessions: db.Collection("sessions"),
		costLogs: db.Collection("cost_logs"),
	}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create session indexes: %v\n", err)
	}
	return repo
}

func (r *MongoSessionRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sessionModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "contact_number", Value: 1}, {Key: "started_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "started_at", Value: -1}}},
	}
	if _, err := r.sessions.Indexes().CreateMany(ctx, sessionModels); err != nil {
		return fmt.Errorf("failed to create session indexes: %w", err)
	}

	costModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "created_at", Value: 1}}},
	}
	if _, err := r.costLogs.Indexes().CreateMany(ctx, costModels); err != nil {
		return fmt.Errorf("failed to create cost log indexes: %w", err)
	}
	return nil
}

// InsertSession creates the session record at connect time.
func (r *MongoSessionRepo) InsertSession(ctx context.Context, session *models.VoiceSession) error {
	if _, err := r.sessions.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to insert session %s: %w", session.ID, err)
	}
	return nil
}

// FinishSession writes the terminal snapshot of a session. Guarded on status
// active so a duplicate finalize attempt is a no-op.
func (r *MongoSessionRepo) FinishSession(ctx context.Context, session *models.VoiceSession) error {
	filter := bson.M{"id": session.ID, "status": models.SessionActive}
	update := bson.M{"$set": bson.M{
		"caller_id":        session.CallerID,
		"contact_number":   session.ContactNumber,
		"ended_at":         session.EndedAt,
		"duration_seconds": session.DurationSeconds,
		"status":           session.Status,
		"summary":          session.Summary,
		"cost_breakdown":   session.Cost,
		"transcript":       session.Transcript,
	}}

	res, err := r.sessions.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to finish session %s: %w", session.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetSession retrieves a session by id.
func (r *MongoSessionRepo) GetSession(ctx context.Context, id string) (*models.VoiceSession, error) {
	var session models.VoiceSession
	if err := r.sessions.FindOne(ctx, bson.M{"id": id}).Decode(&session); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch session %s: %w", id, err)
	}
	return &session, nil
}

// ListSessions pages through sessions, optionally filtered by status.
func (r *MongoSessionRepo) ListSessions(ctx context.Context, status string, skip, limit int64) ([]models.VoiceSession, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	return r.findSessions(ctx, filter, opts)
}

// ListByContact returns a caller's most recent sessions.
func (r *MongoSessionRepo) ListByContact(ctx context.Context, contactNumber string, limit int64) ([]models.VoiceSession, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetLimit(limit)
	return r.findSessions(ctx, bson.M{"contact_number": contactNumber}, opts)
}

func (r *MongoSessionRepo) findSessions(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.VoiceSession, error) {
	cursor, err := r.sessions.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("session query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []models.VoiceSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}
	return sessions, nil
}

// InsertCostEntry appends one usage record to the cost log.
func (r *MongoSessionRepo) InsertCostEntry(ctx context.Context, entry *models.CostEntry) error {
	if _, err := r.costLogs.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert cost entry: %w", err)
	}
	return nil
}

// CostEntries returns the cost log for one session.
func (r *MongoSessionRepo) CostEntries(ctx context.Context, sessionID string) ([]models.CostEntry, error) {
	cursor, err := r.costLogs.Find(ctx, bson.M{"session_id": sessionID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("cost log query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.CostEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode cost entries: %w", err)
	}
	return entries, nil
}

// TotalCost sums the whole cost log.
func (r *MongoSessionRepo) TotalCost(ctx context.Context) (float64, error) {
	cursor, err := r.costLogs.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$cost_usd"}}},
		}}},
	})
	if err != nil {
		return 0, fmt.Errorf("cost aggregation failed: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("failed to decode cost total: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// CountSessions returns total and active session counts.
func (r *MongoSessionRepo) CountSessions(ctx context.Context) (int64, int64, error) {
	total, err := r.sessions.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, 0, fmt.Errorf("session count failed: %w", err)
	}
	active, err := r.sessions.CountDocuments(ctx, bson.M{"status": models.SessionActive})
	if err != nil {
		return 0, 0, fmt.Errorf("active session count failed: %w", err)
	}
	return total, active, nil
}
