package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "media-notes/docs" // swagger docs
	"media-notes/internal/api/middleware"
	v1routes "media-notes/internal/api/v1/routes"
	"media-notes/internal/config"
)

// Config represents API server configuration
type Config struct {
	Addr          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	Development   bool
	MaxUploadSize int64
	Secrets       v1routes.Secrets
}

// ConfigFromSettings builds the server configuration from runtime settings
func ConfigFromSettings(s *config.Settings) Config {
	return Config{
		Addr:          s.Server.Addr(),
		ReadTimeout:   s.Server.ReadTimeout,
		WriteTimeout:  s.Server.WriteTimeout,
		IdleTimeout:   2 * time.Minute,
		Development:   s.Development,
		MaxUploadSize: s.Media.MaxFileSize(),
		Secrets: v1routes.Secrets{
			JWT:     s.Auth.JWTSecret,
			Webhook: s.Auth.WebhookSecret,
		},
	}
}

// Server represents the API server
type Server struct {
	config     Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer creates a new API server. gatherer backs /metrics and may be nil.
func NewServer(
	config Config,
	container *v1routes.ServiceContainer,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
) *Server {
	if config.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	if config.MaxUploadSize > 0 {
		// keep at most one maximum-size upload in memory, the rest spills to temp files
		router.MaxMultipartMemory = config.MaxUploadSize
	}

	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogging(logger))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})

	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")
	{
		v1 := api.Group("/v1")
		v1routes.RegisterRoutes(v1, container, config.Secrets)
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":       "Media Notes API",
			"version":       "1.0",
			"documentation": "/swagger/index.html",
			"endpoints": gin.H{
				"health":         "/health",
				"metrics":        "/metrics",
				"jobs":           "/api/v1/jobs",
				"transcriptions": "/api/v1/transcriptions",
				"credits":        "/api/v1/credits",
			},
		})
	})

	httpServer := &http.Server{
		Addr:         config.Addr,
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{
		config:     config,
		router:     router,
		httpServer: httpServer,
		logger:     logger,
	}
}

// Start serves until the server is shut down. It returns nil after a
// graceful Shutdown.
func (s *Server) Start() error {
	s.logger.Info("Starting API server",
		zap.String("address", s.config.Addr),
		zap.Bool("development", s.config.Development),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Server stopped", zap.Error(err))
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	s.logger.Info("API server shutdown complete")
	return nil
}

// Router returns the Gin router (useful for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
