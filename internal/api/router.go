package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/medlink/session-client/docs"
	"github.com/medlink/session-client/internal/api/handler"
	"github.com/medlink/session-client/internal/api/middleware"
	"github.com/medlink/session-client/internal/core/domain"
	"github.com/medlink/session-client/internal/core/ports"
)

// Deps is everything the shell routes are built from.
type Deps struct {
	Session      ports.SessionReader
	Auth         ports.AuthFlow
	Appointments ports.AppointmentFlow
	Screens      ports.ScreenLoader
	Checks       map[string]handler.Check
	Log          zerolog.Logger
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
	e.Use(echomiddleware.RequestLoggerWithConfig(requestLogger(d.Log)))
	e.Use(echoprometheus.NewMiddleware("medlink_shell"))

	// --- Dependencies ---
	sessionHandler := handler.NewSessionHandler(d.Auth, d.Session)
	screenHandler := handler.NewScreenHandler(d.Screens, d.Session)
	appointmentHandler := handler.NewAppointmentHandler(d.Appointments)
	healthHandler := handler.NewHealthHandler(d.Checks)

	requireSession := middleware.RequireSession(d.Session)

	// --- Session routes ---
	s := e.Group("/session")
	s.GET("", sessionHandler.Show)
	s.POST("/login", sessionHandler.Login)
	s.POST("/register/patient", sessionHandler.RegisterPatient)
	s.POST("/register/doctor", sessionHandler.RegisterDoctor)
	s.POST("/logout", sessionHandler.Logout)
	s.POST("/refresh", sessionHandler.Refresh, requireSession)

	// --- Screens, behind the navigation gate ---
	e.GET(middleware.ScreenPrefix+":"+middleware.KeyRoute, screenHandler.Show, middleware.Gate(d.Session, d.Log))

	// --- Appointment actions ---
	a := e.Group("/appointments", requireSession)
	a.POST("/book", appointmentHandler.Book, middleware.RequireRole(domain.RolePatient))
	a.POST("/slots", appointmentHandler.AddSlots, middleware.RequireRole(domain.RoleDoctor))
	a.DELETE("/slots/:id", appointmentHandler.DeleteSlot, middleware.RequireRole(domain.RoleDoctor))

	// --- Observability (no session required) ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	return e
}

func requestLogger(log zerolog.Logger) echomiddleware.RequestLoggerConfig {
	return echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
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
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	}
}
