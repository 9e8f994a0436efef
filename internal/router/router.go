package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"greenmarket/internal/config"
	apperrors "greenmarket/internal/errors"
	"greenmarket/internal/handler"
	authmw "greenmarket/internal/middleware"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	auth *authmw.AuthMiddleware,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	itemHandler *handler.ItemHandler,
) {
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, "X-Requested-With"},
		AllowCredentials: true,
	}))
	e.Use(echomw.BodyLimit("10M"))
	e.Use(echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.RateLimitRate / cfg.RateLimitWindow.Seconds()),
			Burst:     cfg.RateLimitBurst,
			ExpiresIn: cfg.RateLimitWindow,
		}),
	}))
	e.Use(requestTimeout(cfg.RequestTimeout))

	e.Validator = NewValidator()
	e.HTTPErrorHandler = newHTTPErrorHandler(cfg)

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"success":   true,
			"message":   "GreenMarket API is running",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// Auth
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/me", authHandler.Me, auth.Required()...)

	// Items
	api.GET("/items", itemHandler.ListItems, auth.Optional()...)
	api.GET("/items/user/:userId", itemHandler.ListUserItems, auth.Optional()...)
	api.GET("/items/:id", itemHandler.GetItem, auth.Optional()...)
	api.POST("/items", itemHandler.CreateItem, auth.Required()...)
	api.PUT("/items/:id", itemHandler.UpdateItem, auth.Required()...)
	api.DELETE("/items/:id", itemHandler.DeleteItem, auth.Required()...)

	// Users
	api.GET("/users/profile", userHandler.GetProfile, auth.Required()...)
	api.PUT("/users/profile", userHandler.UpdateProfile, auth.Required()...)
	api.GET("/users", userHandler.ListUsers, append(auth.Required(), auth.AdminOnly())...)
	api.GET("/users/:id", userHandler.GetUser, auth.Required()...)
	api.PUT("/users/:id/status", userHandler.UpdateStatus, append(auth.Required(), auth.AdminOnly())...)
}

// requestTimeout bounds every request so a stalled database call surfaces as
// a 503 instead of blocking indefinitely.
func requestTimeout(d time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), d)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

var phoneRe = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)

// CustomValidator wraps validator for Echo, reporting fields by their JSON
// (or query) names.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator builds the shared request validator.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		}
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// newHTTPErrorHandler renders every failure as the uniform envelope. Internal
// error detail is embedded only outside production.
func newHTTPErrorHandler(cfg *config.Config) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "Internal server error"
		var fields []apperrors.FieldError

		var verr *apperrors.ValidationError
		var herr *apperrors.HTTPError
		var eherr *echo.HTTPError

		switch {
		case errors.As(err, &verr):
			status = http.StatusBadRequest
			message = "Validation errors"
			fields = verr.Fields
		case errors.As(err, &herr):
			status = herr.StatusCode
			message = herr.Message
		case errors.As(err, &eherr):
			status = eherr.Code
			message = fmt.Sprintf("%v", eherr.Message)
			if status == http.StatusNotFound {
				message = "API endpoint not found"
			}
		case errors.Is(err, context.DeadlineExceeded):
			status = http.StatusServiceUnavailable
			message = "Request timed out"
		default:
			mapped := apperrors.MapErrorToHTTP(err)
			status = mapped.StatusCode
			message = mapped.Message
		}

		if status >= http.StatusInternalServerError {
			c.Logger().Error(err)
			if !cfg.IsProduction() {
				fields = append(fields, apperrors.FieldError{Field: "error", Message: err.Error()})
			}
		}

		body := echo.Map{
			"success": false,
			"message": message,
		}
		if len(fields) > 0 {
			body["errors"] = fields
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}
