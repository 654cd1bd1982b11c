package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/hotelcontrol/staff-auth/docs"
	"github.com/hotelcontrol/staff-auth/internal/api/handler"
	"github.com/hotelcontrol/staff-auth/internal/api/middleware"
	"github.com/hotelcontrol/staff-auth/internal/core/domain"
	"github.com/hotelcontrol/staff-auth/internal/core/ports"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Auth     ports.AuthService
	Admin    ports.AdminService
	Verifier ports.TokenVerifier
	// Readiness maps a dependency name to its probe.
	Readiness map[string]handler.Pinger
	Log       zerolog.Logger
	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.BodyLimit("64K"))
	registerer, gatherer := deps.Registerer, deps.Gatherer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "hotelstaff",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	authHandler := handler.NewAuthHandler(deps.Auth)
	adminHandler := handler.NewAdminHandler(deps.Admin, deps.Auth)
	authenticated := middleware.Auth(deps.Verifier)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/verify", authHandler.Verify)
	auth.POST("/password", authHandler.ChangePassword, authenticated)
	auth.GET("/me", authHandler.Me, authenticated)

	// --- Administration routes ---
	admin := e.Group("/admin", authenticated)
	adminOnly := middleware.RBAC(domain.RoleAdministrator)
	supervisors := middleware.RBAC(domain.RoleAdministrator, domain.RoleManager)

	admin.POST("/users", adminHandler.CreateUser, adminOnly)
	admin.GET("/users", adminHandler.ListUsers, supervisors)
	admin.POST("/users/reset-password", adminHandler.ResetPassword, adminOnly)
	admin.PATCH("/users/:id", adminHandler.UpdateUser, adminOnly)
	admin.POST("/users/:id/unblock", adminHandler.UnblockUser, adminOnly)
	admin.POST("/users/:id/block", adminHandler.BlockUser, adminOnly)
	admin.GET("/roles", adminHandler.ListRoles, supervisors)

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Readiness)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger emits one structured line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
