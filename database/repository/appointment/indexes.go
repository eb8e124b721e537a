package appointmentRepo

import (
	"fmt"
	"time"

	"superbryn/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ensureIndexes creates the necessary indexes on the appointments collection.
// The partial unique index over (mentor_id, date, time) restricted to
// non-terminal statuses is the mechanism that closes the double-booking race:
// two concurrent inserts for the same slot collide at the index, never in
// application code.
func (r *MongoAppointmentRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys: bson.D{{Key: "mentor_id", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("unique_open_slot").
				SetPartialFilterExpression(bson.M{
					"status": bson.M{"$in": models.NonTerminalStatuses},
				}),
		},
		{
			Keys:    bson.D{{Key: "contact_number", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}},
			Options: options.Index().SetName("contact_date_time_idx"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "end_at", Value: 1}},
			Options: options.Index().SetName("status_end_at_idx"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create appointment indexes: %w", err)
	}
	return nil
}
