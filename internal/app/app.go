package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/trazeinos/ibex35-dashboard/internal/config"
	"github.com/trazeinos/ibex35-dashboard/internal/dataset"
	apperrors "github.com/trazeinos/ibex35-dashboard/internal/errors"
	"github.com/trazeinos/ibex35-dashboard/internal/infrastructure"
	customMiddleware "github.com/trazeinos/ibex35-dashboard/internal/middleware"
	"github.com/trazeinos/ibex35-dashboard/internal/recorder"
	"github.com/trazeinos/ibex35-dashboard/internal/reshape"
	"github.com/trazeinos/ibex35-dashboard/internal/scheduler"
	"github.com/trazeinos/ibex35-dashboard/internal/services"
	handlers "github.com/trazeinos/ibex35-dashboard/internal/transport/http"
	ws "github.com/trazeinos/ibex35-dashboard/internal/websocket"
	"github.com/trazeinos/ibex35-dashboard/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	ErrorHandler  *apperrors.ErrorHandler

	Cache            *dataset.Cache
	Recorder         recorder.Recorder
	WebSocketHub     *ws.Hub
	Scheduler        *scheduler.Scheduler
	DashboardService *services.DashboardService
	HealthService    *services.HealthService

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApplication loads the configuration and logger and wires the server
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("source_file", cfg.Data.SourceFile))

	return New(cfg, logger)
}

// New wires every component from cfg. Nothing is started until Start.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry, contracts.Version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apperrors.NewErrorHandler(logger, cfg.Logging.Development),
		ctx:           ctx,
		cancel:        cancel,
	}

	if err := app.initializeServices(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.setupRouter(); err != nil {
		app.closeRecorder()
		cancel()
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}

	app.createServer()
	return app, nil
}

// initializeServices builds the data path: journal, cache, hub, scheduler
// and the services on top of them
func (a *Application) initializeServices() error {
	rec, err := a.openRecorder()
	if err != nil {
		return err
	}
	a.Recorder = rec

	observer := newLoadObserver(a.Metrics, rec, a.Logger)
	a.Cache = dataset.NewCache(a.Config.Data.SourceFile, dataset.LoadFile, a.Logger, dataset.WithObserver(observer))

	a.WebSocketHub = ws.NewHub(a.Logger, ws.WithMetrics(a.Metrics), ws.WithKeepalive(a.Config.WebSocket))

	a.Scheduler = scheduler.New(a.ctx, a.Cache, a.WebSocketHub, a.Logger)
	if err := a.Scheduler.Register(a.Config.Data.RefreshSchedule); err != nil {
		a.closeRecorder()
		return apperrors.NewConfigError("invalid refresh schedule", err)
	}

	a.DashboardService = services.NewDashboardService(a.Cache, a.Config.Dashboard.Title, a.Logger)
	a.HealthService = services.NewHealthService(contracts.Version, a.Cache, a.WebSocketHub, a.Logger)

	return nil
}

// openRecorder opens the SQLite journal when a path is configured
func (a *Application) openRecorder() (recorder.Recorder, error) {
	if a.Config.Data.JournalPath == "" {
		return recorder.NewNoopRecorder(), nil
	}
	rec, err := recorder.NewSQLiteRecorder(a.Config.Data.JournalPath, a.Logger)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open load journal", err).WithContext("path", a.Config.Data.JournalPath)
	}
	a.Logger.Info("load journal enabled", slog.String("path", a.Config.Data.JournalPath))
	return rec, nil
}

func (a *Application) closeRecorder() {
	if a.Recorder == nil {
		return
	}
	if err := a.Recorder.Close(); err != nil {
		a.Logger.Error("failed to close load journal", slog.String("error", err.Error()))
	}
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() error {
	cfg := a.Config
	validator := customMiddleware.NewValidator()

	grid := reshape.DefaultGridOptions()
	grid.Height = cfg.Dashboard.GridHeight
	grid.Theme = cfg.Dashboard.Theme

	dataHandler := handlers.NewDataHandler(a.DashboardService, a.Scheduler, a.Recorder, grid, validator, a.Logger, a.ErrorHandler)
	exportHandler := handlers.NewExportHandler(a.DashboardService, validator, cfg.Data.ExportBOM, a.Logger, a.ErrorHandler)
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	clientLogHandler := handlers.NewClientLogHandler(validator, a.Logger, a.ErrorHandler)
	metricsHandler := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.ErrorHandler)
	pageHandler, err := handlers.NewPageHandler(a.DashboardService, cfg.Dashboard, validator, a.Logger, a.ErrorHandler)
	if err != nil {
		return err
	}
	adminAuth := customMiddleware.AdminAuth(cfg.Security.AdminTokenHash, a.Logger, a.ErrorHandler)

	r := chi.NewRouter()

	// RequestID → Recoverer → Logger → OTel → SecurityHeaders → CORS
	r.Use(customMiddleware.RequestID)
	r.Use(a.ErrorHandler.Middleware)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
	r.Use(customMiddleware.SecurityHeaders)
	if cfg.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins:   cfg.Security.AllowedOrigins,
			AllowCredentials: true,
		}))
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	// Long-lived connections stay outside the rate limiter and the timeout
	r.Handle("/ws", ws.NewHandler(a.WebSocketHub, cfg.WebSocket, cfg.Security.AllowedOrigins, a.Logger))
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Group(func(r chi.Router) {
		if cfg.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(cfg.Security.RateLimit.RPS, cfg.Security.RateLimit.Burst, a.Logger, a.ErrorHandler).Handler)
		}
		r.Use(customMiddleware.Timeout(cfg.Server.RequestTimeout))

		r.Route("/api", func(r chi.Router) {
			r.Mount("/health", healthHandler.Routes())
			r.Get("/version", healthHandler.Version)
			r.Mount("/data", dataHandler.Routes(adminAuth))
			r.Mount("/export", exportHandler.Routes())
			r.Post("/client-log", clientLogHandler.Handle)
		})

		r.Get("/", pageHandler.Index)
		r.Get("/ticker", pageHandler.Ticker)
		r.Get("/report", pageHandler.Report)
	})

	a.Router = r
	return nil
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start warms the dataset cache, starts the background loops and begins
// serving. Server failures are delivered on the returned channel.
func (a *Application) Start(ctx context.Context) <-chan error {
	a.Logger.InfoContext(ctx, "starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	// A missing file is not fatal: pages show the error until it appears
	if ds, err := a.Cache.Get(ctx); err != nil {
		a.Logger.WarnContext(ctx, "initial dataset load failed",
			slog.String("path", a.Cache.Path()),
			slog.String("error", err.Error()))
	} else {
		a.Logger.InfoContext(ctx, "dataset loaded",
			slog.String("path", ds.Path),
			slog.Int("rows", ds.Len()),
			slog.Int("tickers", len(ds.Tickers())),
			slog.String("fingerprint", ds.FingerprintHex()))
	}

	a.WebSocketHub.Start()
	a.Scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	a.Logger.InfoContext(ctx, "application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return errCh
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}

	a.Scheduler.Stop()
	a.WebSocketHub.Stop()
	a.cancel()

	if err := a.Recorder.Close(); err != nil {
		errs = append(errs, fmt.Errorf("load journal close: %w", err))
	}

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	a.Logger.InfoContext(ctx, "application shutdown complete")
	return infrastructure.CloseLogFile()
}

// Run serves until SIGINT or SIGTERM, or until the server fails
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := a.Start(ctx)

	var serveErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("received shutdown signal")
	case err, ok := <-errCh:
		if ok {
			serveErr = fmt.Errorf("server error: %w", err)
			a.Logger.Error("server failed", slog.String("error", err.Error()))
		}
	}

	// The signal context is done by now, shutdown gets its own budget
	stopCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout+5*time.Second)
	defer cancel()
	if err := a.Stop(stopCtx); err != nil {
		return errors.Join(serveErr, err)
	}
	return serveErr
}
