// Package metrics defines and registers all custom Prometheus metrics for
// the counseling session gateway. It is the single source of truth for
// metric names, labels, and help strings. Metrics self-register with the
// default registry via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "counseling"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok" or "failed"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// SessionsEndedTotal counts session terminations.
// Label:
//   - reason: "logout", "expired", "revoked", "malformed"
var SessionsEndedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_ended_total",
		Help:      "Total number of ended sessions, by reason.",
	},
	[]string{"reason"},
)

// ── Route guard metrics ───────────────────────────────────────────────────────

// GuardDecisionsTotal counts route guard outcomes.
// Label:
//   - decision: "allow", "wait", "redirect_signin", "redirect_role"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard evaluations, by decision.",
	},
	[]string{"decision"},
)

// ── Session cache metrics ─────────────────────────────────────────────────────

// CacheInvalidationsTotal counts cache tags dropped by invalidation.
var CacheInvalidationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_invalidations_total",
		Help:      "Total number of cache tags invalidated.",
	},
)

// ── Realtime bridge metrics ───────────────────────────────────────────────────

// BridgeHandshakesTotal counts authenticate handshakes sent by the bridge.
var BridgeHandshakesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bridge_handshakes_total",
		Help:      "Total number of authenticate handshakes emitted.",
	},
)

// BridgeEventsTotal counts realtime events handled by the bridge.
// Labels:
//   - event: the realtime event name (e.g. "booking_updated")
//   - result: "ok", "skipped" (role mismatch) or "error"
var BridgeEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bridge_events_total",
		Help:      "Total number of realtime events handled, by event and result.",
	},
	[]string{"event", "result"},
)
