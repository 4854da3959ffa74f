// Package controller contains the HTTP API server.
package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"dataforge/internal/controller/handlers"
	"dataforge/internal/controller/middleware"
	"dataforge/internal/lifecycle"
	"dataforge/internal/wizard"
)

// Server is the HTTP server for the API.
type Server struct {
	httpServer *http.Server
}

// Options carries the server dependencies.
type Options struct {
	Addr         string
	Store        handlers.StoreFactory
	Lifecycle    *lifecycle.Manager
	Sessions     *wizard.Sessions
	Logger       *slog.Logger
	SystemSecret string
	Metrics      http.Handler
}

// New creates a new API server with all routes wired.
func New(opts Options) *Server {
	h := handlers.New(opts.Store, opts.Lifecycle, opts.Sessions, opts.Logger)

	authMW := middleware.AuthMiddleware(opts.Store)
	rateMW := middleware.NewRateLimiter().Middleware()
	internalMW := middleware.RequireInternalAuth(opts.SystemSecret)

	authed := func(next http.HandlerFunc) http.Handler {
		return authMW(rateMW(next))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.Healthz)
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics)
	}

	mux.HandleFunc("POST /users", h.CreateUser)

	// Public authenticated apis
	mux.Handle("POST /sources", authed(h.CreateSource))
	mux.Handle("GET /sources", authed(h.ListSources))
	mux.Handle("GET /sources/{id}", authed(h.GetSource))
	mux.Handle("DELETE /sources/{id}", authed(h.DeleteSource))
	mux.Handle("POST /sources/{id}/restore", authed(h.RestoreSource))
	mux.Handle("DELETE /sources/{id}/purge", authed(h.PurgeSource))

	mux.Handle("POST /wizard", authed(h.StartWizard))
	mux.Handle("GET /wizard/{id}", authed(h.GetWizard))
	mux.Handle("PUT /wizard/{id}", authed(h.UpdateWizard))
	mux.Handle("DELETE /wizard/{id}", authed(h.CancelWizard))
	mux.Handle("POST /wizard/{id}/advance", authed(h.AdvanceWizard))
	mux.Handle("POST /wizard/{id}/retreat", authed(h.RetreatWizard))
	mux.Handle("POST /wizard/{id}/commit", authed(h.CommitWizard))

	mux.Handle("GET /datasets", authed(h.ListDatasets))
	mux.Handle("GET /datasets/{id}", authed(h.GetDataset))
	mux.Handle("POST /datasets/{id}/run", authed(h.RunDataset))
	mux.Handle("DELETE /datasets/{id}", authed(h.DeleteDataset))
	mux.Handle("POST /datasets/{id}/restore", authed(h.RestoreDataset))
	mux.Handle("DELETE /datasets/{id}/purge", authed(h.PurgeDataset))

	mux.Handle("POST /jobs", authed(h.CreateJob))
	mux.Handle("GET /jobs", authed(h.ListJobs))
	mux.Handle("GET /jobs/{id}", authed(h.GetJob))
	mux.Handle("POST /jobs/{id}/toggle", authed(h.ToggleJob))
	mux.Handle("POST /jobs/{id}/trigger", authed(h.TriggerJob))
	mux.Handle("GET /jobs/{id}/runs", authed(h.ListJobRuns))
	mux.Handle("DELETE /jobs/{id}", authed(h.DeleteJob))
	mux.Handle("POST /jobs/{id}/restore", authed(h.RestoreJob))
	mux.Handle("DELETE /jobs/{id}/purge", authed(h.PurgeJob))

	mux.Handle("GET /notifications", authed(h.ListNotifications))
	mux.Handle("POST /notifications/{id}/read", authed(h.MarkNotificationRead))

	// Internal endpoints
	// These are called by the extraction/execution workers.
	// They should run behind strict network rules.
	mux.Handle("PUT /internal/datasets/{id}/result", internalMW(http.HandlerFunc(h.InternalDatasetResult)))
	mux.Handle("PUT /internal/runs/{id}/result", internalMW(http.HandlerFunc(h.InternalJobRunResult)))

	return &Server{
		httpServer: &http.Server{
			Addr:         opts.Addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutDownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.Shutdown(shutDownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
