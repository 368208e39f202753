package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/screenwerk/signage/internal/app"
	"github.com/screenwerk/signage/internal/broadcast"
	"github.com/screenwerk/signage/internal/changefeed"
	"github.com/screenwerk/signage/internal/classify"
	"github.com/screenwerk/signage/internal/config"
	"github.com/screenwerk/signage/internal/database"
	"github.com/screenwerk/signage/internal/domain"
	"github.com/screenwerk/signage/internal/logging"
	"github.com/screenwerk/signage/internal/mediastore"
	"github.com/screenwerk/signage/internal/redis"
	"github.com/screenwerk/signage/internal/server"
)

const maxViewerSessions = 1024

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *server.Server, hub *broadcast.Hub, adapter *changefeed.Adapter, cancelFeed context.CancelFunc) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		cancelFeed()
		adapter.Wait()
		hub.Stop()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(context.Background(), cfg)
	defer func() { _ = redisClient.Close() }()

	// Change publication: every repository write lands in the table's stream.
	publisher := redis.NewChangePublisher(redisClient)
	if err := publisher.RegisterTables(context.Background(), cfg.Tables.All()...); err != nil {
		slog.Error("Failed to register feed tables", "error", err)
		os.Exit(1)
	}

	layoutRepo := database.NewLayoutRepo(pool, publisher, cfg.Tables.Layouts)
	gridItemRepo := database.NewGridItemRepo(pool, publisher, cfg.Tables.GridItems)
	scheduledAdRepo := database.NewScheduledAdRepo(pool, publisher, cfg.Tables.ScheduledAds)
	adRepo := database.NewAdRepo(pool, publisher, cfg.Tables.Ads)

	var media domain.MediaSigner
	if cfg.MediaBaseURL != "" {
		media = mediastore.New(cfg.MediaBaseURL, cfg.MediaSigningKey, clock)
	}

	appSvc := app.NewService(layoutRepo, gridItemRepo, scheduledAdRepo, adRepo, media)

	hub := broadcast.NewHub(clock, maxViewerSessions)

	feed := redis.NewStreamFeed(redisClient)
	classifier := classify.New(cfg.Tables)
	adapter := changefeed.New(feed, classifier, hub, clock, cfg.Tables.All())

	feedCtx, cancelFeed := context.WithCancel(context.Background())
	adapter.Run(feedCtx)

	srv := server.NewServer(cfg, appSvc, hub, pool, redisClient)

	done := runGracefulShutdown(srv, hub, adapter, cancelFeed)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
