// Package main is the entry point for the dataforge scheduler.
// The scheduler claims due jobs, starts runs for them, and runs the
// periodic trash and notification cleanup passes.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dataforge/internal/config"
	"dataforge/internal/lifecycle"
	"dataforge/internal/logger"
	"dataforge/internal/notify"
	"dataforge/internal/observability"
	"dataforge/internal/scheduler"
	"dataforge/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slogger := logger.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer store.Close()

	// Tracing
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.Init(ctx, "dataforge-scheduler", cfg.OTLPEndpoint)
		if err != nil {
			log.Fatalf("Failed to init tracing: %v", err)
		}
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				log.Printf("Failed to shutdown tracer: %v", err)
			}
		}()
	}

	lm := lifecycle.New(store, notify.NewStoreDispatcher(store), slogger)

	sched := scheduler.New(store, lm, scheduler.Config{
		PollInterval:              cfg.SchedulerPollInterval,
		MaxBackoff:                time.Minute,
		BatchSize:                 cfg.SchedulerBatchSize,
		ClaimTTL:                  5 * time.Minute,
		CleanupInterval:           time.Hour,
		TrashRetentionDays:        cfg.TrashRetentionDays,
		NotificationRetentionDays: cfg.NotificationRetentionDays,
	}, slogger)

	log.Printf("Scheduler started (poll interval %s, batch size %d)", cfg.SchedulerPollInterval, cfg.SchedulerBatchSize)
	go func() {
		if err := sched.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("Scheduler stopped: %v", err)
		}
	}()

	// Metrics
	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to init metrics: %v", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			log.Printf("Failed to shutdown metrics: %v", err)
		}
	}()

	// Start a dedicated metrics server on port 6162
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metricsHandler)
		log.Println("Scheduler metrics listening on :6162")
		if err := http.ListenAndServe(":6162", mux); err != nil {
			log.Printf("Metrics server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	cancel()

	<-sched.Done()
}
