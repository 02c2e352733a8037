// Package main provides the main entry point for the HoofMatch voting service
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hoofmatch/hoofmatch/app/handlers"
	"github.com/hoofmatch/hoofmatch/app/middleware"
	"github.com/hoofmatch/hoofmatch/app/router"
	businessflow "github.com/hoofmatch/hoofmatch/business_flow"
	"github.com/hoofmatch/hoofmatch/config"
	"github.com/hoofmatch/hoofmatch/repository"
	"github.com/hoofmatch/hoofmatch/seed"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	stopFuncs []func()
}

func main() {
	log.Println("Starting HoofMatch application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.Logging)

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := app.router.Start(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.router.GetApp().ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging routes the standard logger to a rotating file when configured
func setupLogging(cfg config.LoggingConfig) {
	switch cfg.Output {
	case "file", "both":
		rotating := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		if cfg.Output == "both" {
			log.SetOutput(io.MultiWriter(os.Stdout, rotating))
		} else {
			log.SetOutput(rotating)
		}
	}
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if !cfg.Enabled {
		log.Println("Persistence disabled; vote and leaderboard endpoints will answer 503")
		return nil, nil
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database; nil when persistence is disabled
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.CleanupInterval)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Initialize repositories
	profileRepo := repository.NewHorseProfileRepository(db)
	eventRepo := repository.NewVoteEventRepository(db)
	totalsRepo := repository.NewVoteTotalsRepository(db)

	// Seed catalog for the shipped demo horses
	catalog := seed.NewCatalog()

	// Initialize flows
	voteFlow := businessflow.NewVoteFlow(profileRepo, eventRepo, totalsRepo, db)
	leaderboardFlow := businessflow.NewLeaderboardFlow(totalsRepo, profileRepo, catalog, db, rc)

	var counter businessflow.VoteActivityCounter
	if db != nil {
		counter = eventRepo
	}
	guard := businessflow.NewVoteGuard(counter, businessflow.VoteGuardConfig{
		Short:      businessflow.GuardThreshold{Window: cfg.Security.GuardShortWindow, Limit: cfg.Security.GuardShortLimit},
		Long:       businessflow.GuardThreshold{Window: cfg.Security.GuardLongWindow, Limit: cfg.Security.GuardLongLimit},
		PerProfile: businessflow.GuardThreshold{Window: cfg.Security.GuardProfileWindow, Limit: cfg.Security.GuardProfileLimit},
	})

	// Initialize handlers
	voteHandler := handlers.NewVoteHandler(voteFlow, guard, cfg.Security.ClientHashSalt)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardFlow)

	// Initialize router
	appRouter := router.NewFiberRouter(
		cfg,
		voteHandler,
		leaderboardHandler,
		middleware.NewRateLimiter(),
	)

	return &Application{
		router:    appRouter,
		config:    cfg,
		stopFuncs: stopFuncs,
	}, nil
}
