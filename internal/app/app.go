package app

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"mcmerge/internal/config"
	"mcmerge/internal/errors"
	"mcmerge/internal/infrastructure"
	customMiddleware "mcmerge/internal/middleware"
	"mcmerge/internal/services"
	handlers "mcmerge/internal/transport/http"
	"mcmerge/pkg/contracts"
)

const AppName = "Media Centre Allocation Merger"

// VERSION is the application version, shared with the contracts package.
const VERSION = contracts.Version

// Application represents the main application container
type Application struct {
	Config       *config.Config
	Router       *chi.Mux
	Server       *http.Server
	MergeService *services.MergeService
	Metrics      *infrastructure.Metrics
	Logger       *slog.Logger
	FrontendFS   fs.FS
}

// NewApplication creates a new application instance with dependency injection
func NewApplication(frontendFS fs.FS) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", VERSION))

	app := &Application{
		Config:     cfg,
		Logger:     logger,
		Metrics:    infrastructure.NewMetrics(),
		FrontendFS: frontendFS,
	}

	app.MergeService = services.NewMergeService(logger, app.Metrics)

	app.setupRouter()
	app.createServer()

	return app, nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	a.setupAPIRoutes(r)

	// Prometheus endpoint sits outside the API group, uninstrumented.
	r.Handle("/metrics", a.Metrics.Handler())

	if a.FrontendFS != nil {
		a.setupUploadPage(r)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		// WriteTimeout bounds the whole merge, parse included.
		r.Use(customMiddleware.Timeout(a.Config.Server.WriteTimeout, a.Logger))

		healthHandler := handlers.NewHealthHandler(VERSION, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		errorHandler := errors.NewErrorHandler(a.Logger, false)
		mergeHandler := handlers.NewMergeHandler(a.MergeService, a.Config.Upload, a.Logger, errorHandler)
		r.Mount("/merge", mergeHandler.Routes())
	})
}

// setupUploadPage serves the embedded single-page upload UI.
func (a *Application) setupUploadPage(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Compress(5))
		r.Get("/", a.serveFrontendFile("index.html"))
	})
}

// serveFrontendFile serves one file from the embedded frontend filesystem.
func (a *Application) serveFrontendFile(filename string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, err := a.FrontendFS.Open(filename)
		if err != nil {
			a.Logger.ErrorContext(r.Context(), "frontend file missing",
				slog.String("file", filename),
				slog.String("error", err.Error()))
			http.Error(w, "Frontend not available", http.StatusServiceUnavailable)
			return
		}
		defer file.Close()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		io.Copy(w, file)
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start starts the HTTP server. The server runs in a goroutine; a listen
// failure cancels the supplied context.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", VERSION),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		a.Logger.ErrorContext(ctx, "Error closing log file", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
