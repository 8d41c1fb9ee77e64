package delivery

import (
	"time"

	"shieldboard/internal/delivery/middleware"
	"shieldboard/pkg/logger"
	"shieldboard/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

type HTTPRouter struct {
	handlers *HTTPHandlers
	logger   *logger.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	timeout  time.Duration
}

// NewHTTPRouter wires the handlers behind the middleware stack. gatherer
// backs the /metrics endpoint; timeout bounds each request.
func NewHTTPRouter(handlers *HTTPHandlers, logger *logger.Logger, metrics *metrics.Metrics, gatherer prometheus.Gatherer, timeout time.Duration) *HTTPRouter {
	return &HTTPRouter{
		handlers: handlers,
		logger:   logger,
		metrics:  metrics,
		gatherer: gatherer,
		timeout:  timeout,
	}
}

func (r *HTTPRouter) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.SetHTMLTemplate(dashboardTemplate)

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.Recovery(r.logger))
	router.Use(middleware.Metrics(r.metrics))
	router.Use(middleware.Timeout(r.timeout))

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Content-Type", "X-Request-ID"}
	config.ExposeHeaders = []string{"X-Request-ID"}

	router.Use(cors.New(config))

	// Health endpoint
	router.GET("/health", r.handlers.HealthCheck)

	// Dashboard page
	router.GET("/", r.handlers.Index)

	// Backend proxy; every method is routed so non-GET gets a 405 with Allow
	router.Any("/api/dashboard", r.handlers.ProxyDashboard)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/", r.handlers.GetAPIInfo)
		v1.GET("", r.handlers.GetAPIInfo)
		v1.GET("/state", r.handlers.GetState)
		v1.POST("/refresh", r.handlers.Refresh)

		filters := v1.Group("/filters")
		{
			filters.POST("", r.handlers.UpdateFilters)
			filters.POST("/apply", r.handlers.ApplyFilters)
		}

		v1.POST("/metrics/:metric/select", r.handlers.SelectMetric)
		v1.POST("/drilldown/close", r.handlers.CloseDrilldown)
	}

	// Prometheus metrics endpoint
	router.GET("/metrics", middleware.PrometheusHandler(r.gatherer))

	return router
}
