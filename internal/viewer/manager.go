package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/screenwerk/signage/internal/broadcast"
	"github.com/screenwerk/signage/internal/domain"
	"github.com/screenwerk/signage/internal/metrics"
)

const (
	defaultMaxReconnects  = 5
	defaultReconnectDelay = 5 * time.Second
)

// State is the session lifecycle state.
type State string

const (
	StateIdle         State = "idle"
	StateConnecting   State = "connecting"
	StateSubscribed   State = "subscribed"
	StateReconnecting State = "reconnecting"
	StateClosed       State = "closed"
)

// Conn is the transport the manager drives. *websocket.Conn satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v any) error
	Close() error
}

// Dialer opens a fresh connection to the sync server.
type Dialer func(ctx context.Context) (Conn, error)

type subscribeRequest struct {
	Type     string `json:"type"`
	LayoutID string `json:"layoutId"`
}

// Config wires a Manager. Dial is required; everything else has defaults.
type Config struct {
	Dial           Dialer
	Clock          clockwork.Clock
	MaxReconnects  int
	ReconnectDelay time.Duration

	// OnUpdate receives every inbound update for the selected layout.
	OnUpdate func(env broadcast.Envelope)
	// OnClosed fires once when the session gives up after the retry limit.
	OnClosed func(err error)
}

// Manager keeps a single layout subscription alive. Selecting a layout
// dials, subscribes and reads until the connection dies; unintentional
// closes trigger up to MaxReconnects redials with a fixed delay. Each
// selection bumps a generation counter so goroutines and timers belonging
// to an abandoned connection cancel themselves instead of firing stale
// transitions.
type Manager struct {
	dial           Dialer
	clock          clockwork.Clock
	maxReconnects  int
	reconnectDelay time.Duration
	onUpdate       func(env broadcast.Envelope)
	onClosed       func(err error)

	mu         sync.Mutex
	state      State
	layoutID   string
	conn       Conn
	generation uint64
	reconnects int
}

func NewManager(cfg Config) *Manager {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = defaultMaxReconnects
	}
	if cfg.ReconnectDelay == 0 {
		cfg.ReconnectDelay = defaultReconnectDelay
	}
	return &Manager{
		dial:           cfg.Dial,
		clock:          cfg.Clock,
		maxReconnects:  cfg.MaxReconnects,
		reconnectDelay: cfg.ReconnectDelay,
		onUpdate:       cfg.OnUpdate,
		onClosed:       cfg.OnClosed,
		state:          StateIdle,
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LayoutID returns the currently selected layout ("" before any Select).
func (m *Manager) LayoutID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.layoutID
}

// Select switches the session to layoutID. Selecting the layout that is
// already pending or live is a no-op. Switching closes the previous
// connection intentionally: its close never triggers a reconnect.
func (m *Manager) Select(ctx context.Context, layoutID string) {
	m.mu.Lock()
	switch m.state {
	case StateConnecting, StateSubscribed, StateReconnecting:
		if m.layoutID == layoutID {
			m.mu.Unlock()
			return
		}
	case StateClosed:
		// A fresh selection revives a terminal session.
	}

	m.layoutID = layoutID
	m.reconnects = 0
	m.generation++
	gen := m.generation
	old := m.conn
	m.conn = nil
	m.state = StateConnecting
	m.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}

	go m.run(ctx, gen, layoutID)
}

// Close terminates the session. Idempotent.
func (m *Manager) Close() {
	m.mu.Lock()
	m.generation++
	old := m.conn
	m.conn = nil
	m.state = StateClosed
	m.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
}

// stale reports whether gen no longer owns the session.
func (m *Manager) stale(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation != gen
}

func (m *Manager) run(ctx context.Context, gen uint64, layoutID string) {
	for {
		if m.stale(gen) || ctx.Err() != nil {
			return
		}

		conn, err := m.connect(ctx, gen, layoutID)
		if err == nil {
			m.readLoop(gen, conn)
			if m.stale(gen) {
				return
			}
			slog.Warn("Connection lost", "layout_id", layoutID)
		} else {
			if m.stale(gen) {
				return
			}
			slog.Warn("Connection failed", "layout_id", layoutID, "error", err)
		}

		m.mu.Lock()
		if m.generation != gen {
			m.mu.Unlock()
			return
		}
		if m.reconnects >= m.maxReconnects {
			m.state = StateClosed
			m.mu.Unlock()
			slog.Error("Giving up on subscription", "layout_id", layoutID, "attempts", m.maxReconnects+1)
			if m.onClosed != nil {
				m.onClosed(fmt.Errorf("%w: layout %s", domain.ErrSubscriptionClosed, layoutID))
			}
			return
		}
		m.reconnects++
		m.state = StateReconnecting
		m.mu.Unlock()

		metrics.ViewerReconnects.Inc()

		select {
		case <-ctx.Done():
			return
		case <-m.clock.After(m.reconnectDelay):
		}
	}
}

func (m *Manager) connect(ctx context.Context, gen uint64, layoutID string) (Conn, error) {
	conn, err := m.dial(ctx)
	if err != nil {
		return nil, err
	}

	if err := conn.WriteJSON(subscribeRequest{Type: "subscribe", LayoutID: layoutID}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to send subscribe: %w", err)
	}

	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		_ = conn.Close()
		return nil, context.Canceled
	}
	m.conn = conn
	m.state = StateSubscribed
	m.mu.Unlock()

	slog.Info("Subscribed", "layout_id", layoutID)
	return conn, nil
}

// readLoop consumes updates until the connection dies. Returns with the
// connection closed.
func (m *Manager) readLoop(gen uint64, conn Conn) {
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if m.stale(gen) {
			return
		}

		var env broadcast.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			slog.Warn("Dropping malformed update", "error", err)
			continue
		}

		if m.onUpdate != nil {
			m.onUpdate(env)
		}
	}
}
