package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/screenwerk/signage/internal/broadcast"
	"github.com/screenwerk/signage/internal/domain"
	"github.com/screenwerk/signage/internal/logging"
	"github.com/screenwerk/signage/internal/schedule"
	"github.com/screenwerk/signage/internal/viewer"
)

const renderInterval = time.Minute

func fetchLayout(ctx context.Context, serverURL, layoutID string) (*domain.Layout, error) {
	url := fmt.Sprintf("%s/api/layouts/%s", strings.TrimRight(serverURL, "/"), layoutID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch layout: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrLayoutNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching layout", resp.StatusCode)
	}

	var layout domain.Layout
	if err := json.NewDecoder(resp.Body).Decode(&layout); err != nil {
		return nil, fmt.Errorf("failed to decode layout: %w", err)
	}
	return &layout, nil
}

func websocketURL(serverURL string) string {
	url := strings.TrimRight(serverURL, "/") + "/ws"
	url = strings.Replace(url, "https://", "wss://", 1)
	return strings.Replace(url, "http://", "ws://", 1)
}

func render(screen *viewer.Screen, now string) {
	for _, cell := range screen.Resolve(now) {
		switch {
		case cell.Hidden:
			slog.Info("Cell hidden", "cell", cell.Index)
		case cell.Active == nil:
			slog.Info("Cell empty", "cell", cell.Index)
		case cell.Active.Ad != nil:
			slog.Info("Cell showing ad",
				"cell", cell.Index,
				"ad_id", cell.Active.AdID,
				"since", cell.Active.ScheduledTime,
				"title", cell.Active.Ad.Content.Title,
				"type", cell.Active.Ad.Type)
		default:
			slog.Info("Cell showing ad", "cell", cell.Index, "ad_id", cell.Active.AdID, "since", cell.Active.ScheduledTime)
		}
	}
}

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "sync server base URL")
	layoutID := flag.String("layout", "", "layout to subscribe to (required)")
	logLevel := flag.String("log-level", "info", "log level")
	logFormat := flag.String("log-format", "text", "log format (text or json)")
	flag.Parse()

	logging.InitLogger(*logLevel, *logFormat)

	if *layoutID == "" {
		slog.Error("Missing required -layout flag")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	layout, err := fetchLayout(ctx, *serverURL, *layoutID)
	if err != nil {
		slog.Error("Failed to load layout", "layout_id", *layoutID, "error", err)
		os.Exit(1)
	}
	slog.Info("Layout loaded", "layout_id", layout.LayoutID, "name", layout.Name, "cells", len(layout.GridItems))

	screen := viewer.NewScreen()
	screen.SetLayout(layout)

	wsURL := websocketURL(*serverURL)
	dial := func(ctx context.Context) (viewer.Conn, error) {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
		return conn, err
	}

	closed := make(chan error, 1)
	manager := viewer.NewManager(viewer.Config{
		Dial: dial,
		OnUpdate: func(env broadcast.Envelope) {
			if screen.Apply(env) {
				slog.Info("Layout updated", "kind", env.Type)
				render(screen, schedule.ClockTime(time.Now()))
			}
		},
		OnClosed: func(err error) { closed <- err },
	})
	defer manager.Close()

	manager.Select(ctx, *layoutID)
	render(screen, schedule.ClockTime(time.Now()))

	ticker := time.NewTicker(renderInterval)
	defer ticker.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			render(screen, schedule.ClockTime(time.Now()))
		case err := <-closed:
			slog.Error("Subscription lost for good", "error", err)
			os.Exit(1)
		case <-sigChan:
			slog.Info("Shutting down")
			return
		}
	}
}
