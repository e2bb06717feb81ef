package router

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"docvault/internal/config"
	apperrors "docvault/internal/errors"
	"docvault/internal/handler"
	"docvault/internal/metrics"
)

// Handlers groups the endpoint handlers mounted by Register.
type Handlers struct {
	Users     *handler.UserHandler
	Auth      *handler.AuthHandler
	Documents *handler.DocumentHandler
	Health    *handler.HealthHandler
}

// New returns an echo instance with the full middleware chain and routes.
// m may be nil when metrics are disabled.
func New(cfg *config.Config, logger zerolog.Logger, m *metrics.Metrics, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Server.Debug
	Register(e, cfg, logger, m, h)
	return e
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, logger zerolog.Logger, m *metrics.Metrics, h Handlers) {
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler(logger)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(RequestLogger(logger))
	// outside BodyLimit and CORS so rejected bodies and preflights are counted
	if m != nil {
		e.Use(m.Middleware())
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	if cfg.Server.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	}

	e.GET("/healthz", h.Health.Live)
	e.GET("/healthz/db", h.Health.Ready)

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	users := api.Group("/users")
	users.POST("/register", h.Users.Register)
	users.POST("/login", h.Auth.Login)
	users.POST("/admin/login", h.Auth.AdminLogin)
	users.PUT("/admin/toggle-status/:id", h.Users.ToggleStatus)
	users.PUT("/admin/toggle-admin/:id", h.Users.ToggleAdmin)
	users.GET("/admin/stats", h.Users.Stats)
	users.GET("/username/:username", h.Users.GetUserByUsername)
	users.GET("", h.Users.ListUsers)
	users.GET("/:id", h.Users.GetUser)
	users.PUT("/:id", h.Users.UpdateUser)
	users.DELETE("/:id", h.Users.DeleteUser)

	docs := api.Group("/documents")
	docs.POST("/upload", h.Documents.Upload)
	docs.GET("/admin/all", h.Documents.ListAll)
	docs.GET("/admin/stats", h.Documents.Stats)
	docs.GET("/download/:id", h.Documents.Download)
	docs.GET("/user/:userId", h.Documents.ListByUser)
	docs.GET("/user/:userId/category/:category", h.Documents.ListByCategory)
	docs.GET("/user/:userId/search", h.Documents.Search)
	docs.GET("/:id", h.Documents.GetDocument)
	docs.PUT("/:id", h.Documents.UpdateDocument)
	docs.DELETE("/:id", h.Documents.DeleteDocument)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator reports field errors by their JSON names.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// RequestLogger logs one zerolog event per request.
func RequestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			ev := logger.Info()
			switch {
			case v.Status >= http.StatusInternalServerError:
				ev = logger.Error().Err(v.Error)
			case v.Status >= http.StatusBadRequest:
				ev = logger.Warn()
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("remote_ip", v.RemoteIP).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}

// ErrorHandler renders every error as {"error": "..."}, including the ones
// echo raises itself for unknown routes, wrong methods and oversized bodies.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, message := http.StatusInternalServerError, "internal server error"
		var he *echo.HTTPError
		var ae *apperrors.Error
		switch {
		case errors.As(err, &he):
			status = he.Code
			if msg, ok := he.Message.(string); ok {
				message = msg
			} else {
				message = http.StatusText(he.Code)
			}
		case errors.As(err, &ae):
			httpErr := apperrors.MapErrorToHTTP(ae)
			status, message = httpErr.StatusCode, httpErr.Message
		}
		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, apperrors.ErrorResponse{Error: message})
		}
		if err != nil {
			logger.Error().Err(err).Msg("write error response")
		}
	}
}
