package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/finder/internal/api/middleware"
	"github.com/GriffinCanCode/finder/internal/connector"
	"github.com/GriffinCanCode/finder/internal/infrastructure/config"
	"github.com/GriffinCanCode/finder/internal/infrastructure/logging"
	"github.com/GriffinCanCode/finder/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/finder/internal/infrastructure/requestid"
	"github.com/GriffinCanCode/finder/internal/volume"
	"github.com/GriffinCanCode/finder/internal/volume/local"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	http     *http.Server
	registry *volume.Registry
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// NewServer mounts the configured volumes and builds the router. A nil logger
// is built from cfg.Logging.
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		l, err := logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			Development: cfg.Logging.Development,
		})
		if err != nil {
			return nil, err
		}
		logger = l
	}

	logger.Info("Initializing file manager server",
		zap.String("port", cfg.Server.Port),
		zap.String("connector", cfg.Connector.Path),
	)

	metrics := monitoring.NewMetrics()

	registry, err := mountVolumes(cfg, logger, metrics)
	if err != nil {
		return nil, err
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(requestid.Middleware())
	router.Use(requestid.AccessLog(logger))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.CORSFromConfig(cfg.CORS)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitFromConfig(cfg.RateLimit)))
	}

	conn := connector.New(registry, connector.Options{
		UploadMaxSize:  int64(cfg.Volume.UploadMaxSize),
		MaxUploadFiles: cfg.Connector.MaxUploadFiles,
		SearchTimeout:  cfg.Connector.SearchTimeout,
	}, logger, metrics)
	conn.Register(router, cfg.Connector.Path)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"volumes": len(registry.All()),
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	var handler http.Handler = router
	if cfg.Server.Gzip {
		handler = gzhttp.GzipHandler(router)
	}

	s := &Server{
		router:   router,
		registry: registry,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}
	s.http = &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler: handler,
	}

	logger.Info("Server initialized successfully", zap.Int("volumes", len(registry.All())))
	return s, nil
}

// mountVolumes opens every configured volume. Any volume that cannot be opened
// fails startup.
func mountVolumes(cfg *config.Config, logger *logging.Logger, metrics *monitoring.Metrics) (*volume.Registry, error) {
	vols, err := cfg.Volumes()
	if err != nil {
		return nil, err
	}

	registry := volume.NewRegistry()
	for _, vc := range vols {
		v, err := local.New(local.Options{
			ID:            vc.ID,
			Root:          vc.Root,
			RootLabel:     vc.Label,
			MaxTreeDepth:  &vc.MaxTreeDepth,
			UploadMaxSize: int64(vc.UploadMaxSize),
			HiddenGlobs:   vc.HiddenGlobs,
			SearchLimit:   vc.SearchLimit,
			SniffContent:  vc.SniffContent,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("mount volume %s: %w", vc.ID, err)
		}
		if err := registry.Register(monitoring.Instrument(v, metrics)); err != nil {
			return nil, err
		}
	}
	metrics.VolumesMounted.Set(float64(len(vols)))
	return registry, nil
}

// Handler returns the root HTTP handler, including compression.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until Shutdown. It returns nil after a graceful shutdown.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests,
// bounded by the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()

	err := s.http.Shutdown(ctx)
	if err != nil {
		s.logger.Error("Graceful shutdown failed", zap.Error(err))
	}

	// Sync logger before exit
	_ = s.logger.Sync()
	return err
}
