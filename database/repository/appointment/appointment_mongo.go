package appointmentRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"superbryn/database"
	"superbryn/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoAppointmentRepo implements AppointmentRepository using MongoDB.
type MongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo creates a new instance of AppointmentRepository using MongoDB.
func NewMongoAppointmentRepo() AppointmentRepository {
	coll := database.MongoClient.Database(database.DBName).Collection("appointments")
	repo := &MongoAppointmentRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create appointment indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// Insert creates a new appointment. The partial unique slot index turns a
// concurrent double-book into a duplicate key error, reported as ErrSlotConflict.
func (r *MongoAppointmentRepo) Insert(ctx context.Context, appt *models.Appointment) error {
	if _, err := r.coll.InsertOne(ctx, appt); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrSlotConflict
		}
		return fmt.Errorf("failed to insert appointment: %w", err)
	}
	return nil
}

// GetByID retrieves an appointment by its unique ID.
func (r *MongoAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&appt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch appointment %s: %w", id, err)
	}
	return &appt, nil
}

// Transition moves a non-terminal appointment into toStatus. The status filter
// makes the transition a compare-and-swap: a concurrent transition loses and
// sees ErrTerminal.
func (r *MongoAppointmentRepo) Transition(ctx context.Context, id, toStatus string) (*models.Appointment, error) {
	filter := bson.M{
		"id":     id,
		"status": bson.M{"$in": models.NonTerminalStatuses},
	}
	update := bson.M{"$set": bson.M{
		"status":     toStatus,
		"updated_at": time.Now().UTC(),
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to transition appointment %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return nil, r.classifyMiss(ctx, id)
	}
	return r.GetByID(ctx, id)
}

// SetMentorNotes records a mentor-side note without touching status.
func (r *MongoAppointmentRepo) SetMentorNotes(ctx context.Context, id, notes string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{
		"mentor_notes": notes,
		"updated_at":   time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("failed to set mentor notes on %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Move relocates a non-terminal appointment to a new slot. The update is a
// single-document write, so it either fully lands or is rejected by the
// partial unique index, leaving the original row untouched.
func (r *MongoAppointmentRepo) Move(ctx context.Context, id, newDate string, newTime int, newEndAt time.Time) (*models.Appointment, error) {
	filter := bson.M{
		"id":     id,
		"status": bson.M{"$in": models.NonTerminalStatuses},
	}
	update := bson.M{"$set": bson.M{
		"date":       newDate,
		"time":       newTime,
		"end_at":     newEndAt,
		"updated_at": time.Now().UTC(),
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrSlotConflict
		}
		return nil, fmt.Errorf("failed to move appointment %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return nil, r.classifyMiss(ctx, id)
	}
	return r.GetByID(ctx, id)
}

// classifyMiss distinguishes a missing row from a terminal one after a
// status-guarded update matched nothing.
func (r *MongoAppointmentRepo) classifyMiss(ctx context.Context, id string) error {
	appt, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if models.IsTerminalStatus(appt.Status) {
		return ErrTerminal
	}
	return fmt.Errorf("appointment %s in unexpected status %s", id, appt.Status)
}
