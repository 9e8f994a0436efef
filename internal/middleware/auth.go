package middleware

import (
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"greenmarket/internal/auth"
	apperrors "greenmarket/internal/errors"
	"greenmarket/internal/model"
	"greenmarket/internal/service"
)

const (
	claimsContextKey = "token_claims"
	userContextKey   = "current_user"
)

// AuthMiddleware resolves bearer tokens into users. Three variants compose in
// front of routes: Required (401 on any failure), Optional (failures proceed
// anonymously) and AdminOnly (403 unless the resolved user is an admin).
type AuthMiddleware struct {
	jwtService *auth.JWTService
	users      service.UserService
}

// NewAuthMiddleware creates the middleware set.
func NewAuthMiddleware(jwtService *auth.JWTService, users service.UserService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService, users: users}
}

// Required rejects requests without a valid token or resolvable active user.
func (m *AuthMiddleware) Required() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{m.verifyToken(true), m.loadUser(true)}
}

// Optional resolves the user when a valid token is present and proceeds
// anonymously otherwise. Used by endpoints that personalize public output.
func (m *AuthMiddleware) Optional() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{m.verifyToken(false), m.loadUser(false)}
}

// AdminOnly requires a resolved user with the admin role. Must run after
// Required.
func (m *AuthMiddleware) AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil || !user.IsAdmin() {
				return apperrors.NewHTTPError(http.StatusForbidden,
					"Access denied. Admin privileges required.", "ADMIN_REQUIRED")
			}
			return next(c)
		}
	}
}

// CurrentUser returns the user resolved by the middleware, or nil.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(userContextKey).(*model.User)
	return user
}

func (m *AuthMiddleware) verifyToken(required bool) echo.MiddlewareFunc {
	cfg := echojwt.Config{
		ContextKey: claimsContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return m.jwtService.ValidateToken(token)
		},
	}
	if required {
		cfg.ErrorHandler = func(c echo.Context, err error) error {
			return tokenError(err)
		}
	} else {
		cfg.ContinueOnIgnoredError = true
		cfg.ErrorHandler = func(c echo.Context, err error) error {
			return nil
		}
	}
	return echojwt.WithConfig(cfg)
}

func (m *AuthMiddleware) loadUser(required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(claimsContextKey).(*auth.Claims)
			if !ok {
				if required {
					return apperrors.NewHTTPError(http.StatusUnauthorized,
						"No token provided, authorization denied", "NO_TOKEN")
				}
				return next(c)
			}

			user, err := m.users.GetUser(c.Request().Context(), claims.UserID)
			if err != nil || !user.IsActive {
				if required {
					return apperrors.NewHTTPError(http.StatusUnauthorized,
						"Token is not valid or user is inactive", "USER_INACTIVE")
				}
				return next(c)
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// tokenError maps verification failures onto response codes. Errors from the
// parse func mean a token was present but bad; anything else means the header
// never yielded a token at all.
func tokenError(err error) *apperrors.HTTPError {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return apperrors.NewHTTPError(http.StatusUnauthorized, "Token expired", "TOKEN_EXPIRED")
	case errors.Is(err, auth.ErrInvalidToken):
		return apperrors.NewHTTPError(http.StatusUnauthorized, "Invalid token", "INVALID_TOKEN")
	default:
		return apperrors.NewHTTPError(http.StatusUnauthorized,
			"No token provided, authorization denied", "NO_TOKEN")
	}
}
