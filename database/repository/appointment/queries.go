package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"superbryn/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoAppointmentRepo) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Appointment, error) {
	cursor, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("appointment query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appts, nil
}

var byDateTime = options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})

// ListNonTerminal returns the pending/booked appointments for a mentor and date.
func (r *MongoAppointmentRepo) ListNonTerminal(ctx context.Context, mentorID, date string) ([]models.Appointment, error) {
	return r.find(ctx, bson.M{
		"mentor_id": mentorID,
		"date":      date,
		"status":    bson.M{"$in": models.NonTerminalStatuses},
	}, byDateTime)
}

// ListByContact returns a caller's appointments, optionally filtered by status.
func (r *MongoAppointmentRepo) ListByContact(ctx context.Context, contactNumber string, statuses []string) ([]models.Appointment, error) {
	filter := bson.M{"contact_number": contactNumber}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	return r.find(ctx, filter, byDateTime)
}

// ListByMentor returns a mentor's appointments within an inclusive date range.
// Empty bounds leave that side open.
func (r *MongoAppointmentRepo) ListByMentor(ctx context.Context, mentorID, fromDate, toDate string) ([]models.Appointment, error) {
	filter := bson.M{"mentor_id": mentorID}
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
	return r.find(ctx, filter, byDateTime)
}

// ListAll is the admin-facing filtered listing.
func (r *MongoAppointmentRepo) ListAll(ctx context.Context, f ListFilter) ([]models.Appointment, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.MentorID != "" {
		filter["mentor_id"] = f.MentorID
	}
	dateRange := bson.M{}
	if f.FromDate != "" {
		dateRange["$gte"] = f.FromDate
	}
	if f.ToDate != "" {
		dateRange["$lte"] = f.ToDate
	}
	if len(dateRange) > 0 {
		filter["date"] = dateRange
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "time", Value: 1}}))
}

// SweepCompleted transitions booked appointments whose end time has passed into
// completed. A plain filtered UpdateMany: running it twice, or concurrently,
// matches nothing the second time.
func (r *MongoAppointmentRepo) SweepCompleted(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{
			"status": models.StatusBooked,
			"end_at": bson.M{"$lte": now.UTC()},
		},
		bson.M{"$set": bson.M{
			"status":     models.StatusCompleted,
			"updated_at": now.UTC(),
		}},
	)
	if err != nil {
		return 0, fmt.Errorf("completion sweep failed: %w", err)
	}
	return res.ModifiedCount, nil
}

// CountByStatus returns appointment counts grouped by status.
func (r *MongoAppointmentRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	cursor, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	})
	if err != nil {
		return nil, fmt.Errorf("status count aggregation failed: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode status counts: %w", err)
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
