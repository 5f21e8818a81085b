package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/bandhan/matrimony-api/docs"
	"github.com/bandhan/matrimony-api/internal/api/handler"
	"github.com/bandhan/matrimony-api/internal/api/middleware"
	"github.com/bandhan/matrimony-api/internal/core/ports"
	"github.com/bandhan/matrimony-api/internal/infrastructure/http/handlers"
)

const defaultSessionRate = 5

// Services groups the application services the HTTP layer calls into.
type Services struct {
	Session     ports.SessionService
	Roles       ports.RoleResolver
	Accounts    ports.AccountService
	Payments    ports.PaymentService
	Disclosures ports.DisclosureService
	Premium     ports.PremiumService
	Contacts    ports.ContactService
}

// RouterConfig carries the transport-level settings.
type RouterConfig struct {
	Tokens middleware.TokenParser
	// SessionRateLimit is the sustained requests per second allowed per
	// client IP on the session exchange endpoint.
	SessionRateLimit float64
	EnableSwagger    bool
	Readiness        map[string]handlers.Check
	// Registry receives the HTTP request collectors and backs /metrics.
	// nil selects the default registry, which also holds the service metrics.
	Registry *prometheus.Registry
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig, svc Services) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(cfg.Log))
	e.Use(promMiddleware(cfg.Registry))

	// --- Operational endpoints (no auth required) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewHealthDependenciesHandler(cfg.Readiness).Readiness)
	e.GET("/metrics", promHandler(cfg.Registry))
	if cfg.EnableSwagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	v1 := e.Group("/v1")

	// --- Session exchange: unauthenticated, rate limited per IP ---
	sessionRate := cfg.SessionRateLimit
	if sessionRate <= 0 {
		sessionRate = defaultSessionRate
	}
	limiter := echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(sessionRate),
			Burst:     int(sessionRate * 2),
			ExpiresIn: 3 * time.Minute,
		}),
	})
	sessionHandler := handler.NewSessionHandler(svc.Session)
	v1.POST("/session", sessionHandler.Exchange, limiter)

	// --- Authenticated routes ---
	authed := v1.Group("", middleware.Auth(cfg.Tokens))

	accountHandler := handler.NewAccountHandler(svc.Accounts)
	authed.GET("/me", accountHandler.Me)
	authed.GET("/accounts/:email", accountHandler.Get)

	paymentHandler := handler.NewPaymentHandler(svc.Payments)
	authed.POST("/payments", paymentHandler.Authorize)
	authed.POST("/payments/:ref/confirm", paymentHandler.Confirm)

	disclosureHandler := handler.NewDisclosureHandler(svc.Disclosures)
	authed.POST("/disclosures", disclosureHandler.Create)
	authed.GET("/disclosures", disclosureHandler.ListMine)
	authed.DELETE("/disclosures/:id", disclosureHandler.Delete)

	premiumHandler := handler.NewPremiumHandler(svc.Premium)
	authed.POST("/profiles/:biodata_id/premium-request", premiumHandler.Request)

	contactHandler := handler.NewContactHandler(svc.Contacts)
	authed.GET("/profiles/:biodata_id/contact", contactHandler.Get)
	authed.GET("/contacts/visibility", contactHandler.Visibility)

	// --- Admin routes: role re-checked against the account record ---
	admin := authed.Group("/admin", middleware.RequireAdmin(svc.Roles))
	admin.GET("/accounts", accountHandler.List)
	admin.PATCH("/accounts/:email/role", accountHandler.SetRole)
	admin.PATCH("/accounts/:email/premium", accountHandler.SetPremium)
	admin.GET("/disclosures", disclosureHandler.ListForAdmin)
	admin.POST("/disclosures/:id/approve", disclosureHandler.Approve)
	admin.GET("/premium-requests", premiumHandler.List)
	admin.POST("/premium-requests/:biodata_id/approve", premiumHandler.Approve)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

func promMiddleware(reg *prometheus.Registry) echo.MiddlewareFunc {
	if reg == nil {
		return echoprometheus.NewMiddleware("matrimony")
	}
	return echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "matrimony",
		Registerer: reg,
	})
}

func promHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}
