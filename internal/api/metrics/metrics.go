// Package metrics defines and registers the custom Prometheus metrics of the
// grievance portal. It is the single source of truth for metric names,
// labels and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// init through promauto; HTTP request metrics come from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionOperationsTotal counts session store operations.
// Labels:
//   - op: "login", "demo_login", "register", "logout" or "restore"
//   - result: "ok", "invalid_credentials", "no_demo_account", "invalid_role" or "error"
var SessionOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_operations_total",
		Help:      "Total number of session operations, by operation and result.",
	},
	[]string{"op", "result"},
)

// GateDecisionsTotal counts redirect gate evaluations.
// Labels:
//   - state: "unauthenticated" or "redirecting"
//   - target: the path the client was sent to
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Total number of dashboard gate decisions, by state and target.",
	},
	[]string{"state", "target"},
)

// ── Toast metrics ─────────────────────────────────────────────────────────────

// ToastsTotal counts toasts by outcome.
// Labels:
//   - kind: "success", "error" or "info"
//   - result: "queued", "dropped" or "delivered"
var ToastsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "toasts_total",
		Help:      "Total number of toasts, by kind and dispatch result.",
	},
	[]string{"kind", "result"},
)

// ToastQueueDepth tracks the number of toasts waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ToastQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "toast_queue_depth",
		Help:      "Current number of toasts pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Live connection metrics ───────────────────────────────────────────────────

// WebSocketConnections tracks open WebSocket connections.
var WebSocketConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_connections",
		Help:      "Current number of open WebSocket connections.",
	},
)

// SplashRunsTotal counts welcome splash runs.
// Label:
//   - result: "completed", "skipped" or "cancelled"
var SplashRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "splash_runs_total",
		Help:      "Total number of welcome splash runs, by result.",
	},
	[]string{"result"},
)

// AssistantRepliesTotal counts assistant replies.
// Labels:
//   - lang: negotiated language code
//   - intent: matched intent, "fallback" when nothing matched
var AssistantRepliesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assistant_replies_total",
		Help:      "Total number of assistant replies, by language and intent.",
	},
	[]string{"lang", "intent"},
)
