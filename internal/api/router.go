package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/clinicdesk/booking-system/docs"
	"github.com/clinicdesk/booking-system/internal/api/handler"
	"github.com/clinicdesk/booking-system/internal/api/middleware"
	"github.com/clinicdesk/booking-system/internal/core/domain"
	"github.com/clinicdesk/booking-system/internal/core/ports"
)

// RouterConfig carries everything the HTTP layer needs; the caller owns the
// construction of services and stores.
type RouterConfig struct {
	BookingService ports.BookingService
	AuthService    ports.AuthService
	Sessions       ports.SessionStore

	SessionSecret string
	SessionTTL    time.Duration
	SecureCookies bool

	// Per-IP limit applied to the state-creating endpoints (login, book).
	RateLimitRPS   float64
	RateLimitBurst int

	HealthChecks map[string]handler.Pinger

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("clinic"))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.SessionTTL, cfg.SecureCookies)
	bookingHandler := handler.NewBookingHandler(cfg.BookingService)
	sessionMW := middleware.Session(cfg.SessionSecret, cfg.Sessions)
	adminMW := middleware.RBAC(domain.RoleAdmin)
	writeLimit := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Limit()

	// --- Auth routes ---
	e.POST("/api/login", authHandler.Login, writeLimit)
	e.POST("/api/logout", authHandler.Logout, sessionMW)
	e.GET("/api/auth/user", authHandler.Me, sessionMW)

	// --- Booking routes ---
	e.GET("/api/slots", bookingHandler.Slots) // public: the calendar is browsable before login
	e.POST("/api/book", bookingHandler.Book, sessionMW, writeLimit)
	e.GET("/api/my-bookings", bookingHandler.MyBookings, sessionMW)

	// --- Admin routes ---
	e.GET("/api/all-bookings", bookingHandler.AllBookings, sessionMW, adminMW)
	e.GET("/api/stats", bookingHandler.Stats, sessionMW, adminMW)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(cfg.HealthChecks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness)  // readiness – are dependencies up?

	// --- Operational surfaces ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
