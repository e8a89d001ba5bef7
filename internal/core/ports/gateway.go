package ports

import (
	"context"

	"github.com/freightdash/tracking-gateway/internal/core/domain"
)

// Gateway translates version-agnostic tracking requests into upstream calls.
// One forward is exactly one upstream attempt; retries are the caller's job.
type Gateway interface {
	Forward(ctx context.Context, scopeID string, req domain.TrackingRequest) (*domain.UpstreamEnvelope, error)
}

// Normalizer turns raw provider webhook payloads into canonical records.
type Normalizer interface {
	Ingest(ctx context.Context, rawPayload []byte) (*domain.CanonicalTrackingEvent, error)
}
