package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bandhan/matrimony-api/internal/core/domain"
)

const collectionAccessEvents = "access_events"

// AuditRepository appends to the access_events collection.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAccessEvents)}
}

// Insert persists one audit entry.
func (r *AuditRepository) Insert(ctx context.Context, event *domain.AccessEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"kind":        string(event.Kind),
		"actor":       event.Actor,
		"subject":     event.Subject,
		"at":          event.At.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if event.BiodataID != 0 {
		doc["biodata_id"] = event.BiodataID
	}
	if event.RequestID != "" {
		doc["request_id"] = event.RequestID
	}
	if event.Detail != "" {
		doc["detail"] = event.Detail
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return storageErr("insert access event", err)
	}
	return nil
}

func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "subject", Value: 1}, {Key: "at", Value: -1}}},
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "at", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
