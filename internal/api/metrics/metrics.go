// Package metrics defines the custom Prometheus collectors of the matrimony
// API. Collectors register with the default registry on package init through
// promauto, and echoprometheus serves them on /metrics alongside the HTTP
// request metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "matrimony"

// ── Session metrics ──────────────────────────────────────────────────────────

// SessionExchangesTotal counts identity-assertion exchanges.
// Label:
//   - result: "ok", "created", "identity_invalid", "storage_error" or "sign_error"
var SessionExchangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_exchanges_total",
		Help:      "Total number of identity assertions exchanged for session tokens, by result.",
	},
	[]string{"result"},
)

// PrivilegeCacheTotal counts privilege cache lookups.
// Label:
//   - result: "hit" or "miss"
var PrivilegeCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "privilege_cache_total",
		Help:      "Total number of privilege cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Workflow metrics ─────────────────────────────────────────────────────────

// DisclosureTransitionsTotal counts contact disclosure workflow calls.
// Labels:
//   - action: "create", "approve" or "delete"
//   - outcome: "ok", "noop" or an error kind such as "PaymentRequired"
var DisclosureTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "disclosure_transitions_total",
		Help:      "Total number of contact disclosure workflow calls, by action and outcome.",
	},
	[]string{"action", "outcome"},
)

// PremiumTransitionsTotal counts premium upgrade workflow calls.
var PremiumTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "premium_transitions_total",
		Help:      "Total number of premium upgrade workflow calls, by action and outcome.",
	},
	[]string{"action", "outcome"},
)

// ── Audit metrics ────────────────────────────────────────────────────────────

var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of audit events persisted, by kind and result.",
	},
	[]string{"kind", "result"},
)

// AuditDroppedTotal counts events discarded because a worker queue was full.
var AuditDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of audit events dropped because the worker queue was full.",
	},
)

// AuditQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

var AuditRecordDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_record_duration_seconds",
		Help:      "Duration of persisting one audit event.",
		Buckets:   prometheus.DefBuckets,
	},
)
