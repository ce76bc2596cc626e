package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apihttp "github.com/GriffinCanCode/AgentOS/launcher/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/api/ws"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/domain/catalog"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/domain/launcher"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/kvstore"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/probe"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/tracing"
)

// ShutdownTimeout bounds Close when the caller gives no deadline
const ShutdownTimeout = 15 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	http     *http.Server
	launcher *launcher.Service
	catalog  *catalog.Catalog
	store    kvstore.Store
	prober   *probe.Client
	tracer   *tracing.Tracer
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	logCfg := logging.DefaultConfig()
	if cfg.Logging.Development {
		logCfg = logging.DevelopmentConfig()
	}
	if cfg.Logging.Level != "" {
		logCfg.Level = cfg.Logging.Level
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	logger.Info("Initializing launcher",
		zap.String("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Backend),
		zap.String("catalog", cfg.Catalog.Dir))

	// Metrics first, every component reports into them
	metrics := monitoring.NewMetrics()
	tracer := tracing.New("launcher", logger.Logger)

	store, err := kvstore.New(ctx, kvstore.Config{
		Backend: kvstore.Backend(cfg.Store.Backend),
		Dir:     cfg.Store.Path,
		Redis: kvstore.RedisConfig{
			Address:  cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		},
		SQLitePath: cfg.Store.SQLitePath,
	})
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to open window state store: %w", err)
	}
	logger.Info("Window state store ready", zap.String("backend", cfg.Store.Backend))

	probeCfg := probe.DefaultConfig()
	probeCfg.Timeout = cfg.Launcher.ProbeTimeout
	probeCfg.Retries = cfg.Launcher.ProbeRetries
	probeCfg.UserAgent = cfg.Launcher.UserAgent
	prober := probe.NewClient(probeCfg, logger.Component("probe"))

	svc := launcher.NewService(prober, store, logger.Logger, launcher.Options{
		HealthInterval:      cfg.Launcher.HealthInterval,
		ProbeTimeout:        cfg.Launcher.ProbeTimeout,
		MaxConcurrentProbes: cfg.Launcher.MaxProbes,
	}).WithMetrics(metrics)

	apps := catalog.New().WithMetrics(metrics)
	if _, err := catalog.NewLoader(apps, logger.Logger).Load(ctx, cfg.Catalog.Dir); err != nil {
		logger.Warn("Failed to load catalog", zap.Error(err))
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig().WithOrigins(cfg.Server.CORSOrigins)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst))
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(svc, apps, logger, apihttp.NewHandlerMetrics(metrics))
	handlers.Register(router)

	wsHandler := ws.NewHandler(svc.Events(), logger.Logger).WithMetrics(metrics)
	router.GET("/events", wsHandler.HandleConnection)

	aggregator := apihttp.NewMetricsAggregator(metrics, svc, apps, prober)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/metrics/json", aggregator.GetAggregatedMetrics)

	logger.Info("Server initialized", zap.Int("apps", len(apps.List())))

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{
		router:   router,
		http:     httpServer,
		launcher: svc,
		catalog:  apps,
		store:    store,
		prober:   prober,
		tracer:   tracer,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// Handler exposes the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Launcher returns the supervising service
func (s *Server) Launcher() *launcher.Service {
	return s.launcher
}

// Catalog returns the application catalog
func (s *Server) Catalog() *catalog.Catalog {
	return s.catalog
}

// Start begins health monitoring and, when configured, launches the
// autostart applications.
func (s *Server) Start(ctx context.Context) {
	s.launcher.Start()
	if s.config.Catalog.Autostart {
		s.Autostart(ctx)
	}
}

// Autostart launches every catalog application flagged for it. Failures
// are logged and published on the event stream like any other launch.
func (s *Server) Autostart(ctx context.Context) {
	apps := s.catalog.Autostart()
	if len(apps) == 0 {
		return
	}

	var g errgroup.Group
	g.SetLimit(s.config.Launcher.MaxProbes)
	for _, app := range apps {
		app := app
		g.Go(func() error {
			res := s.launcher.Launch(ctx, app)
			if !res.Success {
				s.logger.Warn("Autostart failed",
					zap.String("app_id", app.ID),
					zap.String("message", res.Message))
			}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("Autostart complete", zap.Int("apps", len(apps)))
}

// Run serves HTTP until Close is called
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Close stops accepting requests, disposes the launcher (stopping every
// process and persisting window state) and closes the store.
func (s *Server) Close(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ShutdownTimeout)
		defer cancel()
	}

	var errs []error
	if err := s.http.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop http server: %w", err))
	}

	s.launcher.Dispose(ctx)

	if err := s.store.Close(); err != nil {
		s.logger.Error("Failed to close store", zap.Error(err))
		errs = append(errs, fmt.Errorf("failed to close store: %w", err))
	}
	s.tracer.Close()

	s.logger.Info("Server stopped")
	if err := s.logger.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
