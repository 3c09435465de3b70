package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/civicpulse/grievance-portal/internal/api/handler"
	"github.com/civicpulse/grievance-portal/internal/api/middleware"
	"github.com/civicpulse/grievance-portal/internal/core/domain"
	"github.com/civicpulse/grievance-portal/internal/core/ports"
	"github.com/civicpulse/grievance-portal/internal/infrastructure/http/handlers"
	"github.com/civicpulse/grievance-portal/internal/infrastructure/ws"
	"github.com/civicpulse/grievance-portal/internal/pkg/timeline"

	_ "github.com/civicpulse/grievance-portal/docs"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Sessions  ports.SessionService
	Tokens    ports.TokenService
	Welcome   ports.WelcomeService
	Assistant ports.AssistantService
	Hub       *ws.Hub

	SplashSequence timeline.Sequence
	TypingInterval time.Duration
	CookieMaxAge   time.Duration
	SecureCookie   bool

	// Redis is required for readiness; Mongo is nil when accounts are in
	// memory.
	Redis *redis.Client
	Mongo *mongo.Database

	// Registry replaces the default Prometheus registry for HTTP metrics.
	Registry *prometheus.Registry

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	promConfig := echoprometheus.MiddlewareConfig{
		Namespace: "portal",
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/metrics" || p == "/health" || p == "/health/ready" || p == "/ws"
		},
	}
	metricsHandler := echoprometheus.NewHandler()
	if d.Registry != nil {
		promConfig.Registerer = d.Registry
		metricsHandler = echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Registry})
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(promConfig))

	// --- Operational endpoints (no session) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Redis, d.Mongo)
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", metricsHandler)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Everything below runs with a resolved session ---
	s := e.Group("", middleware.Session(middleware.SessionConfig{
		Tokens:   d.Tokens,
		Sessions: d.Sessions,
		MaxAge:   d.CookieMaxAge,
		Secure:   d.SecureCookie,
		Log:      d.Log,
	}))

	authHandler := handler.NewAuthHandler(d.Sessions)
	s.POST("/auth/login", authHandler.Login)
	s.POST("/auth/demo-login", authHandler.DemoLogin)
	s.POST("/auth/register", authHandler.Register)
	s.POST("/auth/logout", authHandler.Logout)
	s.GET("/v1/session", authHandler.Session)

	navHandler := handler.NewNavigationHandler(d.Log)
	s.GET("/v1/navigation", navHandler.Navigation)
	s.GET("/v1/shell", navHandler.Shell)
	s.GET("/dashboard", navHandler.Gate)
	s.GET(domain.PathCitizenDashboard, navHandler.Dashboard, middleware.RBAC(domain.RoleCitizen))
	s.GET(domain.PathOfficerDashboard, navHandler.Dashboard, middleware.RBAC(domain.RoleOfficer))
	s.GET(domain.PathAdminDashboard, navHandler.Dashboard, middleware.RBAC(domain.RoleAdmin))
	s.GET(domain.PathAnalystDashboard, navHandler.Dashboard, middleware.RBAC(domain.RoleAnalyst))

	welcomeHandler := handler.NewWelcomeHandler(d.Welcome, d.SplashSequence)
	s.GET("/v1/welcome", welcomeHandler.Status)
	s.POST("/v1/welcome/dismiss", welcomeHandler.Dismiss)

	assistantHandler := handler.NewAssistantHandler(d.Assistant)
	s.GET("/v1/assistant/messages", assistantHandler.Messages)
	s.POST("/v1/assistant/reply", assistantHandler.Reply)

	streamHandler := handler.NewStreamHandler(d.Hub, d.Welcome, d.Assistant, d.TypingInterval, d.Log)
	s.GET("/ws", streamHandler.Connect)

	return e
}

// requestLogger logs one line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
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
