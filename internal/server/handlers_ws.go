package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/screenwerk/signage/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Viewers are dedicated devices, not browsers with credentials
	},
}

// subscribeMessage is the only inbound message viewers send. Anything else
// on the wire is ignored.
type subscribeMessage struct {
	Type     string `json:"type"`
	LayoutID string `json:"layoutId"`
}

func (s *Server) handleWebSocket(c echo.Context) error {
	if !s.wsRate.Allow(c.RealIP()) {
		slog.Warn("Rate limited viewer connection", "ip", c.RealIP())
		metrics.WebSocketConnectsRejected.WithLabelValues("rate_limit").Inc()
		return c.NoContent(http.StatusTooManyRequests)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade WebSocket: %w", err)
	}

	if err := s.hub.Register(conn); err != nil {
		slog.Warn("Rejected viewer connection", "error", err)
		metrics.WebSocketConnectsRejected.WithLabelValues("capacity").Inc()
		return nil
	}

	// Read pump, blocks until the connection closes.
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var msg subscribeMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Debug("Ignoring malformed viewer message", "error", err)
			continue
		}
		if msg.Type == "subscribe" && msg.LayoutID != "" {
			s.hub.Subscribe(conn, msg.LayoutID)
		}
	}

	s.hub.Unregister(conn)

	return nil //nolint:nilerr // ReadMessage err is block-scoped; outer err is nil
}
