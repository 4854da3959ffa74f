// Package config handles environment variable loading for ports, database strings, etc.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values for the application.
type Config struct {
	// Database connection string
	DatabaseURL string

	// HTTP server port for the API server
	HTTPPort int

	// Shared secret for internal worker callbacks
	SystemSecret string

	// Scheduler poll interval
	SchedulerPollInterval time.Duration

	// Max jobs claimed per scheduler poll
	SchedulerBatchSize int

	// Days a soft-deleted entity stays in trash before it is purged
	TrashRetentionDays int

	// Days a notification is kept before cleanup
	NotificationRetentionDays int

	// OTLP endpoint for trace export (empty disables tracing)
	OTLPEndpoint string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	dbUrl := os.Getenv("DATABASE_URL")
	if dbUrl == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	port := 7070 // Default
	if portStr := os.Getenv("PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		port = p
	}

	pollInterval := 10 * time.Second // Default
	if pollIntervalStr := os.Getenv("SCHEDULER_POLL_INTERVAL"); pollIntervalStr != "" {
		pi, err := time.ParseDuration(pollIntervalStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SCHEDULER_POLL_INTERVAL: %w", err)
		}
		pollInterval = pi
	}

	batchSize := 10 // Default
	if batchStr := os.Getenv("SCHEDULER_BATCH_SIZE"); batchStr != "" {
		b, err := strconv.Atoi(batchStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SCHEDULER_BATCH_SIZE: %w", err)
		}
		batchSize = b
	}

	trashDays := 30 // Default
	if daysStr := os.Getenv("TRASH_RETENTION_DAYS"); daysStr != "" {
		d, err := strconv.Atoi(daysStr)
		if err != nil {
			return nil, fmt.Errorf("invalid TRASH_RETENTION_DAYS: %w", err)
		}
		trashDays = d
	}

	notificationDays := 7 // Default
	if daysStr := os.Getenv("NOTIFICATION_RETENTION_DAYS"); daysStr != "" {
		d, err := strconv.Atoi(daysStr)
		if err != nil {
			return nil, fmt.Errorf("invalid NOTIFICATION_RETENTION_DAYS: %w", err)
		}
		notificationDays = d
	}

	return &Config{
		DatabaseURL:               dbUrl,
		HTTPPort:                  port,
		SystemSecret:              os.Getenv("SYSTEM_SECRET"),
		SchedulerPollInterval:     pollInterval,
		SchedulerBatchSize:        batchSize,
		TrashRetentionDays:        trashDays,
		NotificationRetentionDays: notificationDays,
		OTLPEndpoint:              os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}, nil
}
