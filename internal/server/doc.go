// Package server is the HTTP and websocket surface: the REST API for
// layouts and ads, the viewer websocket endpoint feeding the broadcast
// hub, health probes and the metrics endpoint.
package server
