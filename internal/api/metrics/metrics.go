// Package metrics defines and registers all custom Prometheus metrics for the
// tracking gateway. It is the single source of truth for metric names, labels,
// and help strings. All vectors register themselves with the default registry
// at package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tracking"

// ── Gateway metrics ───────────────────────────────────────────────────────────

// GatewayRequestsTotal counts upstream forwards.
// Labels:
//   - version: provider API version ("v1" or "v2")
//   - outcome: "ok", "timeout", or "transport_error"
var GatewayRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_requests_total",
		Help:      "Total number of upstream gateway forwards, by version and outcome.",
	},
	[]string{"version", "outcome"},
)

// GatewayUpstreamDuration measures the wall time of the single upstream attempt.
var GatewayUpstreamDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_upstream_duration_seconds",
		Help:      "Duration of the upstream HTTP call, by provider version.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"version"},
)

// ── Webhook metrics ───────────────────────────────────────────────────────────

// WebhooksIngestedTotal counts successfully normalized webhook payloads.
// Labels:
//   - kind: tracking kind of the payload ("CONTAINER", "AIR_WAYBILL")
//   - status: resulting canonical status
var WebhooksIngestedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhooks_ingested_total",
		Help:      "Total number of webhook payloads normalized successfully.",
	},
	[]string{"kind", "status"},
)

// WebhookErrorsTotal counts webhook payloads rejected before normalization.
// Label:
//   - reason: short failure description (e.g. "malformed_json", "missing_tracking_number")
var WebhookErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_errors_total",
		Help:      "Total number of webhook payloads that failed validation or parsing.",
	},
	[]string{"reason"},
)

// WebhookDedupTotal counts deduplication decisions on ingested webhooks.
// Label:
//   - result: "hit" (redelivery, skipped) or "miss" (new event, persisted)
var WebhookDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_dedup_total",
		Help:      "Total number of webhook deduplication checks, by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Credential metrics ────────────────────────────────────────────────────────

// CredentialCacheTotal counts resolver cache lookups.
// Label:
//   - result: "hit" or "miss"
var CredentialCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credential_cache_total",
		Help:      "Total number of credential cache lookups, by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Dispatcher metrics ────────────────────────────────────────────────────────

// StoreQueueDepth tracks the number of canonical records waiting in each
// persistence worker channel.
var StoreQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "store_queue_depth",
		Help:      "Current number of canonical records pending in each persistence worker channel.",
	},
	[]string{"worker_id"},
)

// StoreWriteErrorsTotal counts failed persistence attempts from the dispatcher.
var StoreWriteErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_write_errors_total",
		Help:      "Total number of canonical record writes that failed.",
	},
)
