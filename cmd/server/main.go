package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/prizejet/prizejet/internal/api"
	"github.com/prizejet/prizejet/internal/assets"
	"github.com/prizejet/prizejet/internal/auth"
	"github.com/prizejet/prizejet/internal/cache"
	"github.com/prizejet/prizejet/internal/config"
	"github.com/prizejet/prizejet/internal/notify"
	"github.com/prizejet/prizejet/internal/pkg/logger"
	"github.com/prizejet/prizejet/internal/ratelimit"
	"github.com/prizejet/prizejet/internal/repository/postgres"
	"github.com/prizejet/prizejet/internal/service/campaign"
	"github.com/prizejet/prizejet/internal/service/entry"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.SetRedactPII(cfg.App.RedactPII)

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatal(err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	// Postgres. Statement timeouts keep a wedged query from holding a
	// landing-page request open.
	dbURL := cfg.Database.URL
	if dbURL == "" {
		log.Fatal("database.url (or DATABASE_URL) is required")
	}
	sep := "?"
	if strings.Contains(dbURL, "?") {
		sep = "&"
	}
	dbURL += sep + "options=-c%20statement_timeout%3D15000%20-c%20idle_in_transaction_session_timeout%3D15000"

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = db.PingContext(pingCtx)
	cancel()
	if err != nil {
		log.Fatalf("ping database: %v", err)
	}
	log.Println("Connected to database")

	// Redis is optional: without it the rate limiter and landing-page
	// cache simply switch off.
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.URL})
		} else {
			redisClient = redis.NewClient(opts)
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err = redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Printf("Warning: Redis connection failed (%s): %v — rate limiting and caching disabled", cfg.Redis.URL, err)
			redisClient.Close()
			redisClient = nil
		} else {
			log.Printf("Redis connected: %s", cfg.Redis.URL)
		}
	}

	var authManager *auth.Manager
	if cfg.Auth.Enabled {
		authManager = auth.NewManager(&cfg.Auth, cfg.Server.PublicBaseURL)
		authManager.CleanupExpiredSessions()
		log.Println("Google OAuth enabled")
	} else {
		log.Println("Auth disabled — running in single-owner dev mode")
	}

	imageStore, err := assets.New(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatalf("init image storage: %v", err)
	}
	if imageStore != nil {
		log.Printf("Image storage enabled (bucket: %s)", cfg.Storage.S3Bucket)
	}

	notifier, err := notify.New(context.Background(), cfg.Mailer, cfg.Server.PublicBaseURL, cfg.Auth.IsPro)
	if err != nil {
		log.Fatalf("init notifier: %v", err)
	}

	campaignSvc := campaign.NewService(postgres.NewCampaignRepo(db))
	entrySvc := entry.NewService(postgres.NewEntryRepo(db), notifier)

	perMinute := 0
	if cfg.RateLimit.Enabled {
		perMinute = cfg.RateLimit.PerMinute
	}
	handlers := api.NewHandlers(
		campaignSvc,
		entrySvc,
		cache.New(redisClient, cache.DefaultTTL),
		ratelimit.New(redisClient, perMinute),
		imageStore,
		authManager,
	)

	devMode := cfg.App.Environment == "development" || os.Getenv("DEV_MODE") == "true"
	server := api.NewServer(handlers, api.RouteOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		DevMode:        devMode,
	})

	addr := fmt.Sprintf("%s:%d", host, port)
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s (base URL %s)", addr, cfg.Server.PublicBaseURL)
		errCh <- server.ListenAndServe(addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("server: %v", err)
	case sig := <-stop:
		log.Printf("Received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	if redisClient != nil {
		redisClient.Close()
	}
	log.Println("Server stopped")
}
