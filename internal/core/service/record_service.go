package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/freightdash/tracking-gateway/internal/api/metrics"
	"github.com/freightdash/tracking-gateway/internal/core/domain"
	"github.com/freightdash/tracking-gateway/internal/core/ports"
)

// DedupChecker abstracts the redelivery-detection store (Redis).
type DedupChecker interface {
	IsDuplicate(ctx context.Context, trackingNumber, status string, ts time.Time) (bool, error)
	Mark(ctx context.Context, trackingNumber, status string, ts time.Time) error
}

// RecordService hands normalized tracking events to the external store,
// skipping provider redeliveries via the dedup checker. Runs behind the
// persistence dispatcher; the webhook ack never waits on it.
type RecordService struct {
	store ports.EventStore
	dedup DedupChecker
	log   zerolog.Logger
}

func NewRecordService(store ports.EventStore, dedup DedupChecker, log zerolog.Logger) *RecordService {
	return &RecordService{store: store, dedup: dedup, log: log}
}

// Persist writes one canonical record. Dedup failures degrade to processing —
// a redundant write is cheaper than a lost event.
func (s *RecordService) Persist(ctx context.Context, event *domain.CanonicalTrackingEvent) error {
	ts := event.ReceivedAt
	if event.Schedule.LastEventDate != nil {
		ts = *event.Schedule.LastEventDate
	}

	isDup, err := s.dedup.IsDuplicate(ctx, event.TrackingNumber, event.RawStatus, ts)
	if err != nil {
		s.log.Warn().Err(err).Str("tracking_number", event.TrackingNumber).Msg("dedup check failed, persisting anyway")
	} else if isDup {
		metrics.WebhookDedupTotal.WithLabelValues("hit").Inc()
		s.log.Debug().
			Str("tracking_number", event.TrackingNumber).
			Str("status", event.RawStatus).
			Msg("duplicate webhook delivery skipped")
		return nil
	}
	metrics.WebhookDedupTotal.WithLabelValues("miss").Inc()

	if markErr := s.dedup.Mark(ctx, event.TrackingNumber, event.RawStatus, ts); markErr != nil {
		s.log.Warn().Err(markErr).Str("tracking_number", event.TrackingNumber).Msg("failed to set dedup key")
	}

	if err := s.store.Insert(ctx, event); err != nil {
		metrics.StoreWriteErrorsTotal.Inc()
		return fmt.Errorf("persist tracking event: %w", err)
	}

	s.log.Info().
		Str("tracking_number", event.TrackingNumber).
		Str("kind", string(event.TrackingKind)).
		Str("status", string(event.CanonicalStatus)).
		Msg("tracking event persisted")
	return nil
}
