package http

import (
	"context"
	stdhttp "net/http"

	"drinks-service/internal/auth"
	"drinks-service/internal/config"
	"drinks-service/internal/http/handler"
	"drinks-service/internal/http/middleware"
	"drinks-service/pkg/metrics"
	"drinks-service/pkg/profiling"

	"github.com/go-logr/logr"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

const (
	jsonKeyStatus    = "status"
	statusOK         = "ok"
	requestBodyLimit = "1M"

	PermissionReadMetrics = "read:metrics"
)

type ServerDependencies struct {
	Config    *config.Config
	Drinks    handler.DrinkRepository
	MenuCache handler.MenuCache
	Audit     handler.AuditRecorder
	Guard     *auth.Guard
	Metrics   *metrics.Metrics
	Logger    logr.Logger
}

type Server struct {
	echo *echo.Echo
	deps *ServerDependencies
}

func NewServer(deps *ServerDependencies) *Server {
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	log := deps.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log.WithName("http"), deps.Metrics)

	e.Server.ReadTimeout = deps.Config.Server.ReadTimeout
	e.Server.WriteTimeout = deps.Config.Server.WriteTimeout

	// Request ID first, so all logs have request ID
	e.Use(middleware.RequestID())
	e.Use(deps.Metrics.Middleware())
	e.Use(middleware.SecurityHeaders())
	e.Use(accessLog(log.WithName("access")))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit(requestBodyLimit))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: deps.Config.Server.CORSAllowOrigins,
		AllowMethods: []string{
			stdhttp.MethodGet, stdhttp.MethodPost, stdhttp.MethodPatch,
			stdhttp.MethodDelete, stdhttp.MethodOptions,
		},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	rateLimiter := middleware.NewRateLimiter(deps.Config.Server.RateLimitRPS, deps.Config.Server.RateLimitBurst)
	e.Use(rateLimiter.Middleware())

	drinkHandler := handler.NewDrinkHandler(deps.Drinks, deps.MenuCache, deps.Audit, log)
	guard := deps.Guard

	e.GET("/health", healthCheck)
	e.GET("/drinks", drinkHandler.ListMenu)
	e.GET("/drinks-detail", guard.Protect(handler.PermissionGetDrinksDetail, drinkHandler.ListDetail))
	e.POST("/drinks", guard.Protect(handler.PermissionPostDrinks, drinkHandler.Create))
	e.PATCH("/drinks/:id", guard.Protect(handler.PermissionPatchDrinks, drinkHandler.Update))
	e.DELETE("/drinks/:id", guard.Protect(handler.PermissionDeleteDrinks, drinkHandler.Delete))

	// Operators are limited per token subject rather than per IP.
	operatorLimiter := middleware.NewRateLimiter(deps.Config.Server.RateLimitRPS, deps.Config.Server.RateLimitBurst)
	metricsAPI := e.Group("/metrics", guard.RequirePermission(PermissionReadMetrics), operatorLimiter.Middleware())
	metricsAPI.GET("/requests", deps.Metrics.Handler)
	metricsAPI.GET("/memory", profiling.MemoryHandler)

	if deps.Config.Server.Profiling {
		debugAPI := e.Group("/debug", guard.RequirePermission(PermissionReadMetrics))
		profiling.RegisterPprofRoutes(debugAPI)
	}

	return &Server{
		echo: e,
		deps: deps,
	}
}

func (s *Server) Handler() stdhttp.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func healthCheck(c echo.Context) error {
	return c.JSON(stdhttp.StatusOK, map[string]string{
		jsonKeyStatus: statusOK,
	})
}

func accessLog(log logr.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			log.Info("request",
				"request_id", v.RequestID,
				"method", v.Method,
				"path", v.URIPath,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"remote_ip", v.RemoteIP,
			)
			return nil
		},
	})
}
