// Package broadcast implements the viewer-facing WebSocket hub using the
// actor pattern.
//
// A single goroutine owns the session registry (no mutexes); publish calls
// arrive concurrently from the change-feed shard loops and are serialized by
// the command channel, which also preserves per-routing-key delivery order.
// Per-connection write goroutines isolate slow clients.
package broadcast
