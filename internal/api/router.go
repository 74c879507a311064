package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/webhub/admin-console/docs"
	"github.com/webhub/admin-console/internal/api/handler"
	"github.com/webhub/admin-console/internal/api/middleware"
	"github.com/webhub/admin-console/internal/core/guard"
	"github.com/webhub/admin-console/internal/infrastructure/http/handlers"
)

// RouterConfig carries what the router needs from the process wiring.
type RouterConfig struct {
	Clients   middleware.ClientProvider
	Readiness *handlers.HealthDependenciesHandler
	Cookie    middleware.CookieConfig
	Log       zerolog.Logger
	// Metrics receives the HTTP request collectors. Nil means the default
	// prometheus registry, where the domain collectors also live.
	Metrics *prometheus.Registry
}

const (
	defaultCookieName = "console_client"
	// defaultCookieMaxAge keeps the client id alive as long as a credential can be.
	defaultCookieMaxAge = 72 * time.Hour
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	if cfg.Cookie.Name == "" {
		cfg.Cookie.Name = defaultCookieName
	}
	if cfg.Cookie.MaxAge <= 0 {
		cfg.Cookie.MaxAge = defaultCookieMaxAge
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(cfg.Log))
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if cfg.Metrics != nil {
		registerer, gatherer = cfg.Metrics, cfg.Metrics
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "console",
		Registerer: registerer,
	}))

	// --- Operational routes (no client session) ---
	healthHandler := handlers.NewHealthHandler()
	e.GET("/health", healthHandler.Liveness)
	if cfg.Readiness != nil {
		e.GET("/health/ready", cfg.Readiness.Readiness)
	}
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Console routes (per-browser session) ---
	console := e.Group("", middleware.Client(cfg.Clients, cfg.Cookie))

	authHandler := handler.NewAuthHandler()
	auth := console.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/session", authHandler.Session)

	profileHandler := handler.NewProfileHandler()
	console.PUT("/profile", profileHandler.Update, middleware.RouteGuard(guard.Requirements{}))

	viewHandler := handler.NewViewHandler()
	for _, v := range guard.Views {
		render := viewHandler.Render(v.Name)
		if v.Req.AllowsAnonymous() {
			render = viewHandler.RenderGuest(v.Name)
		}
		console.GET(v.Path, render, middleware.RouteGuard(v.Req))
	}

	return e
}
