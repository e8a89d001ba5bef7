package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/freightdash/tracking-gateway/internal/api/metrics"
	"github.com/freightdash/tracking-gateway/internal/core/domain"
	"github.com/freightdash/tracking-gateway/internal/core/ports"
)

// RecordDispatcher is the interface the handler uses to hand normalized
// records off for persistence without blocking the acknowledgment.
type RecordDispatcher interface {
	Enqueue(event *domain.CanonicalTrackingEvent)
}

// WebhookHandler receives asynchronous push notifications from the upstream
// tracking provider.
type WebhookHandler struct {
	normalizer ports.Normalizer
	dispatcher RecordDispatcher
}

func NewWebhookHandler(normalizer ports.Normalizer, dispatcher RecordDispatcher) *WebhookHandler {
	return &WebhookHandler{normalizer: normalizer, dispatcher: dispatcher}
}

// Receive handles POST /webhooks/tracking. The payload is normalized
// synchronously (so validation failures and the tracking number can be
// reported), then persistence is enqueued fire-and-forget.
func (h *WebhookHandler) Receive(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		metrics.WebhookErrorsTotal.WithLabelValues("unreadable_body").Inc()
		return c.JSON(http.StatusBadRequest, webhookError{Error: "failed reading request body"})
	}

	event, err := h.normalizer.Ingest(c.Request().Context(), raw)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingTrackingNumber):
			metrics.WebhookErrorsTotal.WithLabelValues("missing_tracking_number").Inc()
		case errors.Is(err, domain.ErrMalformedPayload):
			metrics.WebhookErrorsTotal.WithLabelValues("malformed_json").Inc()
		default:
			metrics.WebhookErrorsTotal.WithLabelValues("other").Inc()
		}
		return c.JSON(http.StatusBadRequest, webhookError{Error: err.Error()})
	}

	metrics.WebhooksIngestedTotal.WithLabelValues(string(event.TrackingKind), string(event.CanonicalStatus)).Inc()
	h.dispatcher.Enqueue(event)

	return c.JSON(http.StatusOK, webhookAck{
		Success:        true,
		Message:        "webhook processed",
		TrackingNumber: event.TrackingNumber,
	})
}
