package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/screenwerk/signage/internal/broadcast"
	"github.com/screenwerk/signage/internal/config"
	"github.com/screenwerk/signage/internal/domain"
)

// postgresPinger is the minimal database surface the readiness probe needs.
type postgresPinger interface {
	Ping(ctx context.Context) error
}

// redisPinger is the minimal redis surface the readiness probe needs.
type redisPinger interface {
	Ping(ctx context.Context) *goredis.StatusCmd
}

// Per-IP websocket connect rate. Healthy viewers reconnect at most once
// every few seconds; the burst absorbs a venue full of screens powering on
// behind one NAT address.
const (
	wsConnectRate  = 5.0
	wsConnectBurst = 10
)

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	app       domain.AppService
	hub       *broadcast.Hub
	db        postgresPinger
	redis     redisPinger
	wsRate    *ConnectionRateLimiter
	startTime time.Time
}

func NewServer(cfg *config.Config, app domain.AppService, hub *broadcast.Hub, db postgresPinger, redis redisPinger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	srv := &Server{
		echo:      e,
		config:    cfg,
		app:       app,
		hub:       hub,
		db:        db,
		redis:     redis,
		wsRate:    NewConnectionRateLimiter(wsConnectRate, wsConnectBurst),
		startTime: time.Now(),
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
