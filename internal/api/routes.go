// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/md2xlsx/webui/internal/config"
	"github.com/md2xlsx/webui/internal/metrics"
	"github.com/md2xlsx/webui/internal/policy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Policy     policy.Policy
	SessionMgr SessionManager
	Metrics    *metrics.Metrics
	Version    string

	// MaxMessageSize bounds a client WebSocket frame in bytes.
	MaxMessageSize int64

	// AllowedOrigins may open UI sessions besides the page's own origin.
	AllowedOrigins []string
}

// Handlers holds all handler instances
type Handlers struct {
	Health HealthHandler
	Policy PolicyHandler
	UI     UIHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(deps.Version, deps.SessionMgr),
		Policy: NewPolicyHandler(deps.Policy),
		UI:     NewWebSocketHandler(deps.SessionMgr, deps.MaxMessageSize, deps.Metrics, deps.AllowedOrigins),
	}
}

// RegisterRoutes registers all API routes with the Echo instance. A nil gatherer
// leaves /metrics unregistered.
func RegisterRoutes(e *echo.Echo, handlers *Handlers, gatherer prometheus.Gatherer) {
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// Upload policy
	apiGroup.GET("/policy", handlers.Policy.HandleGetPolicy)

	// UI session WebSocket
	apiGroup.GET("/ws/ui", handlers.UI.HandleWebSocket)

	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, cfg *config.AppConfig) {
	// Use custom error handler
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Skip logging if disabled in config
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return path == "/api/health" || path == "/metrics"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
	}))

	// Body limit middleware
	if cfg.Server.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	}

	// CORS configuration
	if origins := cfg.CORSOrigins(); origins != nil {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
}
