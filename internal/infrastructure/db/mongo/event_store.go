package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/freightdash/tracking-gateway/internal/core/domain"
)

const collectionTrackingEvents = "tracking_events"

// EventStore implements ports.EventStore: the hand-off point where canonical
// tracking events leave the core and enter the external store.
type EventStore struct {
	col *mongo.Collection
}

func NewEventStore(db *mongo.Database) *EventStore {
	return &EventStore{col: db.Collection(collectionTrackingEvents)}
}

// Insert persists one canonical tracking event.
func (s *EventStore) Insert(ctx context.Context, event *domain.CanonicalTrackingEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.col.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("insert tracking event: %w", err)
	}
	return nil
}

// EnsureIndexes creates the lookup indexes on the tracking events collection.
func (s *EventStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tracking_number", Value: 1}}},
		{Keys: bson.D{{Key: "received_at", Value: -1}}},
	}

	_, err := s.col.Indexes().CreateMany(ctx, indexes)
	return err
}
