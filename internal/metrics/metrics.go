package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Redis client metrics
var (
	// RedisOpsTotal tracks total Redis operations by operation type and status
	RedisOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signage_redis_ops_total",
			Help: "Redis operations by command and status",
		},
		[]string{"operation", "status"},
	)

	// RedisOpDuration tracks Redis operation latency in seconds
	RedisOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "signage_redis_op_duration_seconds",
			Help:    "Redis operation latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// RedisConnectionErrors tracks failed connection attempts
	RedisConnectionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "signage_redis_connection_errors_total",
			Help: "Failed Redis connection attempts",
		},
	)

	// CircuitBreakerStateChanges tracks breaker state transitions
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signage_circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)

	// CircuitBreakerState tracks current breaker state (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "signage_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)

// Change feed metrics
var (
	// FeedRecordsPolled tracks change records read per table
	FeedRecordsPolled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signage_feed_records_polled_total",
			Help: "Change records read from the feed by table",
		},
		[]string{"table"},
	)

	// FeedUpdatesEmitted tracks classified updates emitted per kind
	FeedUpdatesEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signage_feed_updates_emitted_total",
			Help: "Classified updates emitted to the hub by update kind",
		},
		[]string{"kind"},
	)

	// FeedShardFailures tracks shard poll loops terminated by an error
	FeedShardFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signage_feed_shard_failures_total",
			Help: "Shard poll loops terminated by a polling error",
		},
		[]string{"table"},
	)

	// FeedTablesSkipped tracks tables skipped at setup (no active feed)
	FeedTablesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "signage_feed_tables_skipped_total",
			Help: "Watched tables skipped at setup because no change feed was found",
		},
	)
)

// Broadcast hub metrics
var (
	// HubActiveSessions tracks currently connected viewer sessions
	HubActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "signage_hub_active_sessions",
			Help: "Number of connected viewer sessions",
		},
	)

	// HubSubscribedSessions tracks sessions holding a layout subscription
	HubSubscribedSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "signage_hub_subscribed_sessions",
			Help: "Number of sessions with an active layout subscription",
		},
	)

	// HubUpdatesPublished tracks updates fanned out to sessions
	HubUpdatesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signage_hub_updates_published_total",
			Help: "Updates delivered to subscribed sessions by update kind",
		},
		[]string{"kind"},
	)

	// HubSlowSessionsEvicted tracks sessions dropped for unwritable transports
	HubSlowSessionsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "signage_hub_slow_sessions_evicted_total",
			Help: "Sessions evicted because their send buffer was full",
		},
	)

	// HubCommandChannelDepth tracks current command channel depth
	HubCommandChannelDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "signage_hub_command_channel_depth",
			Help: "Current depth of the hub command channel",
		},
	)

	// HubStopTimeouts tracks hub shutdowns that exceeded the stop timeout
	HubStopTimeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "signage_hub_stop_timeouts_total",
			Help: "Hub shutdowns that exceeded the stop timeout",
		},
	)
)

// WebSocket metrics
var (
	// WebSocketSendDuration tracks message send latency
	WebSocketSendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "signage_websocket_send_duration_seconds",
			Help:    "WebSocket message send duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// WebSocketConnectsRejected tracks connection attempts turned away
	WebSocketConnectsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signage_websocket_connects_rejected_total",
			Help: "Viewer connection attempts rejected by reason",
		},
		[]string{"reason"},
	)

	// WebSocketPingFailures tracks failed keepalive pings
	WebSocketPingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "signage_websocket_ping_failures_total",
			Help: "Failed WebSocket keepalive pings",
		},
	)
)

// Viewer client metrics
var (
	// ViewerReconnects tracks reconnect attempts of viewer sessions
	ViewerReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "signage_viewer_reconnects_total",
			Help: "Viewer session reconnect attempts",
		},
	)
)
