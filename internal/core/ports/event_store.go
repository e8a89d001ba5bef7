package ports

import (
	"context"

	"github.com/freightdash/tracking-gateway/internal/core/domain"
)

// EventStore persists canonical tracking events in the external store. The
// core only hands records off; deduplication of storage is the store's concern.
type EventStore interface {
	Insert(ctx context.Context, event *domain.CanonicalTrackingEvent) error
}
