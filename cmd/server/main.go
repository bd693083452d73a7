package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/quantwatch/signalboard/internal/api"
	"github.com/quantwatch/signalboard/internal/config"
	"github.com/quantwatch/signalboard/internal/database"
	"github.com/quantwatch/signalboard/internal/kafka"
	"github.com/quantwatch/signalboard/internal/redis"
)

func main() {
	// Load and validate configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Connect to database
	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL database")

	// Run migrations
	if err := runMigrations(cfg.Database.ConnectionString()); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Connect to Redis snapshot cache
	cache, err := redis.New(cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v (continuing without cache)", err)
		cache = nil
	} else {
		defer cache.Close()
		log.Println("Connected to Redis cache")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create and start Kafka consumer for collector signal events
	signalConsumer := kafka.NewSignalConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.SignalsTopic,
		cfg.Kafka.ConsumerGroup,
		db,
	)
	go func() {
		log.Printf("Starting Kafka signal consumer for topic: %s (group: %s-signals)",
			cfg.Kafka.SignalsTopic, cfg.Kafka.ConsumerGroup)
		if err := signalConsumer.Start(ctx); err != nil {
			log.Printf("Kafka signal consumer error: %v", err)
		}
	}()

	// Create and start Kafka consumer for watchlist events
	watchlistConsumer := kafka.NewWatchlistConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.WatchlistTopic,
		cfg.Kafka.ConsumerGroup,
		db,
	)
	go func() {
		log.Printf("Starting Kafka watchlist consumer for topic: %s (group: %s-watchlist)",
			cfg.Kafka.WatchlistTopic, cfg.Kafka.ConsumerGroup)
		if err := watchlistConsumer.Start(ctx); err != nil {
			log.Printf("Kafka watchlist consumer error: %v", err)
		}
	}()

	// Set up HTTP handler and routes
	handler := api.NewHandler(db, cache)
	router := api.SetupRoutes(handler)

	// Create HTTP server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Cancel context to stop Kafka consumers
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Close Kafka consumers
	if err := signalConsumer.Close(); err != nil {
		log.Printf("Error closing Kafka signal consumer: %v", err)
	}
	if err := watchlistConsumer.Close(); err != nil {
		log.Printf("Error closing Kafka watchlist consumer: %v", err)
	}

	log.Println("Server stopped")
}

func runMigrations(databaseUrl string) error {
	m, err := migrate.New("file://./db/migrations", databaseUrl)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			log.Println("No migrations to apply; database is up to date.")
			return nil
		}
		return err
	}

	return nil
}
