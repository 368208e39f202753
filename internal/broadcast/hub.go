package broadcast

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/screenwerk/signage/internal/domain"
	"github.com/screenwerk/signage/internal/metrics"
)

const (
	commandTimeout = 5 * time.Second
	stopTimeout    = 10 * time.Second
)

// Envelope is the wire format pushed to viewers: the update kind plus the
// full current record (whole-object replacement, never a diff).
type Envelope struct {
	Type domain.UpdateKind `json:"type"`
	Data map[string]any    `json:"data"`
}

// session is one connected viewer: its writer and the single layout it is
// subscribed to ("" until the first subscribe message arrives).
type session struct {
	writer   *sessionWriter
	layoutID string
}

// hubCmd is the command interface for the Hub actor.
type hubCmd interface{ isHubCmd() }

type baseHubCmd struct{}

func (baseHubCmd) isHubCmd() {}

type registerCmd struct {
	baseHubCmd
	connection   *websocket.Conn
	errorChannel chan error
}

type subscribeCmd struct {
	baseHubCmd
	connection *websocket.Conn
	layoutID   string
}

type unregisterCmd struct {
	baseHubCmd
	connection *websocket.Conn
}

type publishCmd struct {
	baseHubCmd
	update domain.ClassifiedUpdate
}

type subscriberCountCmd struct {
	baseHubCmd
	layoutID     string
	replyChannel chan int
}

type stopCmd struct {
	baseHubCmd
}

// Hub fans classified updates out to every connected viewer session whose
// subscription matches the update's routing key. A single goroutine owns the
// registry; Publish is safe to call concurrently from many shard loops.
type Hub struct {
	cmdCh       chan hubCmd
	clock       clockwork.Clock
	sessions    map[*websocket.Conn]*session
	maxSessions int
	done        chan struct{}
	stopTimeout time.Duration
}

// NewHub creates a hub and starts its actor goroutine. maxSessions bounds
// concurrent viewer connections (prevents resource exhaustion).
func NewHub(clock clockwork.Clock, maxSessions int) *Hub {
	h := &Hub{
		cmdCh:       make(chan hubCmd, 256),
		clock:       clock,
		sessions:    make(map[*websocket.Conn]*session),
		maxSessions: maxSessions,
		done:        make(chan struct{}),
		stopTimeout: stopTimeout,
	}
	go h.run()
	return h
}

// Register adds a connected viewer with no subscription yet. Returns an error
// only if the session limit is reached.
func (h *Hub) Register(conn *websocket.Conn) error {
	errCh := make(chan error, 1)
	h.cmdCh <- registerCmd{connection: conn, errorChannel: errCh}

	timer := h.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case err := <-errCh:
		return err
	case <-timer.Chan():
		return fmt.Errorf("register command timed out after %v", commandTimeout)
	}
}

// Subscribe records conn's desired layout. A session holds at most one
// subscription; subscribing again overwrites the previous one.
func (h *Hub) Subscribe(conn *websocket.Conn, layoutID string) {
	h.cmdCh <- subscribeCmd{connection: conn, layoutID: layoutID}
}

// Unregister removes a session. Idempotent: unknown or already-removed
// connections are ignored.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.cmdCh <- unregisterCmd{connection: conn}
}

// Publish fans an update out to all sessions subscribed to its routing key.
func (h *Hub) Publish(update domain.ClassifiedUpdate) {
	h.cmdCh <- publishCmd{update: update}
}

// SubscriberCount returns the number of sessions subscribed to layoutID.
// Returns -1 if the command times out.
func (h *Hub) SubscriberCount(layoutID string) int {
	replyCh := make(chan int, 1)
	h.cmdCh <- subscriberCountCmd{layoutID: layoutID, replyChannel: replyCh}

	timer := h.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case count := <-replyCh:
		return count
	case <-timer.Chan():
		slog.Warn("SubscriberCount timed out", "timeout", commandTimeout)
		return -1
	}
}

// Stop shuts the hub down, closing all viewer connections. Blocks until the
// actor goroutine exits or the stop timeout is reached.
func (h *Hub) Stop() {
	h.cmdCh <- stopCmd{}

	timeout := h.clock.NewTimer(h.stopTimeout)
	defer timeout.Stop()

	select {
	case <-h.done:
		slog.Info("Hub stopped gracefully")
	case <-timeout.Chan():
		slog.Warn("Hub stop timeout exceeded, forcing exit", "timeout", h.stopTimeout)
		metrics.HubStopTimeouts.Inc()
	}
}

func (h *Hub) run() {
	defer close(h.done)

	depthTicker := h.clock.NewTicker(1 * time.Second)
	defer depthTicker.Stop()

	for {
		select {
		case <-depthTicker.Chan():
			metrics.HubCommandChannelDepth.Set(float64(len(h.cmdCh)))
		case cmd := <-h.cmdCh:
			switch c := cmd.(type) {
			case registerCmd:
				h.handleRegister(c)
			case subscribeCmd:
				h.handleSubscribe(c)
			case unregisterCmd:
				h.handleUnregister(c.connection)
			case publishCmd:
				h.handlePublish(c.update)
			case subscriberCountCmd:
				c.replyChannel <- h.countSubscribers(c.layoutID)
			case stopCmd:
				h.handleStop()
				return
			default:
				slog.Warn("Hub received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
			}
		}
	}
}

func (h *Hub) handleRegister(c registerCmd) {
	if len(h.sessions) >= h.maxSessions {
		slog.Warn("Rejecting viewer: max sessions reached", "max_sessions", h.maxSessions)
		c.connection.Close()
		c.errorChannel <- fmt.Errorf("max sessions (%d) reached", h.maxSessions)
		return
	}

	h.sessions[c.connection] = &session{writer: newSessionWriter(c.connection, h.clock)}
	metrics.HubActiveSessions.Set(float64(len(h.sessions)))
	slog.Debug("Viewer session registered", "total_sessions", len(h.sessions))
	c.errorChannel <- nil
}

func (h *Hub) handleSubscribe(c subscribeCmd) {
	sess, exists := h.sessions[c.connection]
	if !exists {
		// Subscribe raced with an unregister; nothing to do.
		return
	}
	if sess.layoutID != "" && sess.layoutID != c.layoutID {
		slog.Debug("Session switching subscription", "from", sess.layoutID, "to", c.layoutID)
	}
	sess.layoutID = c.layoutID
	metrics.HubSubscribedSessions.Set(float64(h.countSubscribed()))
	slog.Info("Session subscribed", "layout_id", c.layoutID)
}

func (h *Hub) handleUnregister(conn *websocket.Conn) {
	sess, exists := h.sessions[conn]
	if !exists {
		return
	}

	sess.writer.stop()
	delete(h.sessions, conn)

	metrics.HubActiveSessions.Set(float64(len(h.sessions)))
	metrics.HubSubscribedSessions.Set(float64(h.countSubscribed()))
	slog.Debug("Viewer session unregistered", "remaining_sessions", len(h.sessions))
}

func (h *Hub) handlePublish(update domain.ClassifiedUpdate) {
	if update.RoutingKey == "" {
		// Nothing can be subscribed to an empty key.
		return
	}

	data, err := json.Marshal(Envelope{Type: update.Kind, Data: update.Payload})
	if err != nil {
		slog.Error("Failed to marshal update envelope", "error", err)
		return
	}

	var slow []*websocket.Conn
	delivered := 0
	for conn, sess := range h.sessions {
		if sess.layoutID != update.RoutingKey {
			continue
		}
		select {
		case sess.writer.sendChannel <- data:
			delivered++
		default:
			slow = append(slow, conn)
		}
	}

	for _, conn := range slow {
		slog.Warn("Evicting slow viewer session", "layout_id", update.RoutingKey)
		metrics.HubSlowSessionsEvicted.Inc()
		h.handleUnregister(conn)
	}

	if delivered > 0 {
		metrics.HubUpdatesPublished.WithLabelValues(string(update.Kind)).Add(float64(delivered))
	}
}

func (h *Hub) countSubscribers(layoutID string) int {
	n := 0
	for _, sess := range h.sessions {
		if sess.layoutID == layoutID {
			n++
		}
	}
	return n
}

func (h *Hub) countSubscribed() int {
	n := 0
	for _, sess := range h.sessions {
		if sess.layoutID != "" {
			n++
		}
	}
	return n
}

func (h *Hub) handleStop() {
	slog.Info("Hub shutting down", "sessions", len(h.sessions))
	for conn, sess := range h.sessions {
		sess.writer.stopGraceful("Server shutting down")
		delete(h.sessions, conn)
	}
	metrics.HubActiveSessions.Set(0)
	metrics.HubSubscribedSessions.Set(0)
}
