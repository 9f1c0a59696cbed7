package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gocomet/rider-roster/internal/api/handlers"
	"github.com/gocomet/rider-roster/internal/api/middleware"
	"github.com/gocomet/rider-roster/internal/config"
	"github.com/gocomet/rider-roster/pkg/logger"
)

// Options carries the cross-cutting dependencies of the router
type Options struct {
	Logger         *logger.Logger
	NewRelic       *newrelic.Application
	Registry       *prometheus.Registry
	Availability   middleware.AvailabilityChecker
	CORS           config.CORSConfig
	BodyLimit      int64
	RequestTimeout time.Duration
	RequestLogging bool
}

// SetupRoutes configures middleware and all API routes
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, opts Options) {
	r.Use(middleware.RequestID())
	if opts.RequestLogging {
		r.Use(middleware.Logger(opts.Logger))
	}
	r.Use(middleware.Recovery(opts.Logger))
	r.Use(cors.New(corsConfig(opts.CORS)))

	// Add New Relic middleware if enabled
	if opts.NewRelic != nil {
		r.Use(nrgin.Middleware(opts.NewRelic))
	}

	if opts.Registry != nil {
		metrics := middleware.NewMetrics(opts.Registry)
		r.Use(metrics.Handler())
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}

	// Health check
	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)

		riders := api.Group("/riders")
		riders.Use(
			middleware.Availability(opts.Availability),
			middleware.BodyLimit(opts.BodyLimit),
			middleware.Timeout(opts.RequestTimeout),
		)
		{
			riders.GET("", h.ListRiders)
			riders.POST("", h.CreateRider)
			riders.GET("/:id", h.GetRider)
			riders.PUT("/:id", h.UpdateRider)
			riders.DELETE("/:id", h.DeleteRider)
		}
	}
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowMethods:  cfg.AllowedMethods,
		AllowHeaders:  cfg.AllowedHeaders,
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = cfg.AllowedOrigins
	c.AllowCredentials = true
	return c
}
