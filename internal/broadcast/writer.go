package broadcast

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/screenwerk/signage/internal/metrics"
)

const (
	writeDeadline     = 5 * time.Second
	pingInterval      = 30 * time.Second
	pongDeadline      = 60 * time.Second
	messageBufferSize = 16
)

type sessionWriter struct {
	connection  *websocket.Conn
	clock       clockwork.Clock
	sendChannel chan []byte
	doneChannel chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

func newSessionWriter(connection *websocket.Conn, clock clockwork.Clock) *sessionWriter {
	sw := &sessionWriter{
		connection:  connection,
		clock:       clock,
		sendChannel: make(chan []byte, messageBufferSize),
		doneChannel: make(chan struct{}),
	}
	sw.configurePongHandler()
	sw.wg.Add(1)
	go sw.run()
	return sw
}

func (sw *sessionWriter) run() {
	ticker := sw.clock.NewTicker(pingInterval)
	defer ticker.Stop()
	defer sw.wg.Done()

	for {
		select {
		case msg, ok := <-sw.sendChannel:
			if !ok {
				return
			}
			start := sw.clock.Now()
			sw.updateWriteDeadline()
			if err := sw.connection.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
			metrics.WebSocketSendDuration.Observe(sw.clock.Since(start).Seconds())
		case <-ticker.Chan():
			sw.updateWriteDeadline()
			if err := sw.connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				metrics.WebSocketPingFailures.Inc()
				return
			}
		case <-sw.doneChannel:
			return
		}
	}
}

func (sw *sessionWriter) stop() {
	sw.stopOnce.Do(func() {
		close(sw.doneChannel)
		_ = sw.connection.Close()
	})
	sw.wg.Wait()
}

// stopGraceful sends a WebSocket close frame with reason before closing.
func (sw *sessionWriter) stopGraceful(reason string) {
	sw.stopOnce.Do(func() {
		close(sw.doneChannel)

		// Wait for the run goroutine to exit before writing the close frame
		// so two goroutines never write the connection concurrently.
		sw.wg.Wait()

		closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
		sw.updateWriteDeadline()
		_ = sw.connection.WriteMessage(websocket.CloseMessage, closeMsg)
		_ = sw.connection.Close()
	})
}

func (sw *sessionWriter) configurePongHandler() {
	sw.updateReadDeadline()
	sw.connection.SetPongHandler(func(string) error {
		sw.updateReadDeadline()
		return nil
	})
}

func (sw *sessionWriter) updateWriteDeadline() {
	_ = sw.connection.SetWriteDeadline(sw.clock.Now().Add(writeDeadline))
}

func (sw *sessionWriter) updateReadDeadline() {
	_ = sw.connection.SetReadDeadline(sw.clock.Now().Add(pongDeadline))
}
