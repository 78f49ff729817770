package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/groupbuy/backend/internal/infrastructure/config"
	"github.com/groupbuy/backend/internal/infrastructure/logger"
	"github.com/groupbuy/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// MetricsProvider observes requests and exposes the scrape endpoint
type MetricsProvider interface {
	middleware.HTTPObserver
	Handler() http.Handler
}

// EngineOptions configures NewEngine
type EngineOptions struct {
	Logger      *zap.Logger
	Metrics     MetricsProvider
	ServiceName string
	HTTP        config.HTTPConfig
	Swagger     config.SwaggerConfig
	Tracing     bool
	Profiling   bool
	// RateLimiter throttles every API request by client IP; nil disables it
	RateLimiter *middleware.RateLimiter
	Health      gin.HandlerFunc
}

// NewEngine builds the gin engine with the global middleware chain and the
// operational endpoints. API routes are mounted afterwards with NewRouter.
func NewEngine(opts EngineOptions) *gin.Engine {
	engine := gin.New()
	if len(opts.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
			opts.Logger.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Recovery stays outermost.
	engine.Use(logger.Recovery(opts.Logger))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(opts.Logger))
	engine.Use(middleware.Tracing(opts.ServiceName, opts.Tracing))
	engine.Use(middleware.SpanEnricher())
	if opts.Metrics != nil {
		engine.Use(middleware.Metrics(opts.Metrics, "/metrics", "/health"))
	}
	engine.Use(middleware.Profiling(opts.Profiling))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(opts.HTTP.CORSAllowOrigins))
	engine.Use(middleware.BodyLimit(opts.HTTP.MaxBodySize))

	engine.NoRoute(middleware.NoRoute())

	if opts.Health != nil {
		engine.GET("/health", opts.Health)
	}
	if opts.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(opts.Swagger.Enabled, opts.Swagger.AllowedIPs),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)
	return engine
}

// APIMiddleware returns the middleware that applies to /api routes only
func APIMiddleware(opts EngineOptions) []gin.HandlerFunc {
	if opts.RateLimiter == nil {
		return nil
	}
	return []gin.HandlerFunc{opts.RateLimiter.Middleware(middleware.KeyByIP)}
}
