package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"greenmarket/internal/auth"
	apperrors "greenmarket/internal/errors"
	"greenmarket/internal/model"
	"greenmarket/internal/repository"
	"greenmarket/internal/service"
)

// MockUserService is a mock implementation of service.UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID uint, update service.ProfileUpdate) (*model.User, error) {
	args := m.Called(ctx, userID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, filter repository.UserFilter, page, limit int) ([]model.User, service.Pagination, error) {
	args := m.Called(ctx, filter, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(service.Pagination), args.Error(2)
	}
	return args.Get(0).([]model.User), args.Get(1).(service.Pagination), args.Error(2)
}

func (m *MockUserService) UpdateStatus(ctx context.Context, adminID, targetID uint, isActive bool) (*model.User, error) {
	args := m.Called(ctx, adminID, targetID, isActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func chain(h echo.HandlerFunc, mws ...echo.MiddlewareFunc) echo.HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func newContext(authorization string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func okHandler(seen **model.User) echo.HandlerFunc {
	return func(c echo.Context) error {
		*seen = CurrentUser(c)
		return c.NoContent(http.StatusOK)
	}
}

func TestAuthMiddleware_Required(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)

	t.Run("missing token", func(t *testing.T) {
		users := new(MockUserService)
		m := NewAuthMiddleware(jwtService, users)

		var seen *model.User
		err := chain(okHandler(&seen), m.Required()...)(newContext(""))

		var herr *apperrors.HTTPError
		assert.ErrorAs(t, err, &herr)
		assert.Equal(t, http.StatusUnauthorized, herr.StatusCode)
		assert.Equal(t, "NO_TOKEN", herr.Code)
		assert.Nil(t, seen)
	})

	t.Run("expired token", func(t *testing.T) {
		users := new(MockUserService)
		expiredIssuer := auth.NewJWTService("test-secret", -time.Minute)
		token, _ := expiredIssuer.GenerateToken(7, "jane.doe@umn.edu")
		m := NewAuthMiddleware(jwtService, users)

		var seen *model.User
		err := chain(okHandler(&seen), m.Required()...)(newContext("Bearer " + token))

		var herr *apperrors.HTTPError
		assert.ErrorAs(t, err, &herr)
		assert.Equal(t, "TOKEN_EXPIRED", herr.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		users := new(MockUserService)
		m := NewAuthMiddleware(jwtService, users)

		var seen *model.User
		err := chain(okHandler(&seen), m.Required()...)(newContext("Bearer not-a-token"))

		var herr *apperrors.HTTPError
		assert.ErrorAs(t, err, &herr)
		assert.Equal(t, "INVALID_TOKEN", herr.Code)
	})

	t.Run("valid token resolves the user", func(t *testing.T) {
		users := new(MockUserService)
		users.On("GetUser", mock.Anything, uint(7)).Return(&model.User{ID: 7, IsActive: true}, nil)
		token, _ := jwtService.GenerateToken(7, "jane.doe@umn.edu")
		m := NewAuthMiddleware(jwtService, users)

		var seen *model.User
		err := chain(okHandler(&seen), m.Required()...)(newContext("Bearer " + token))

		assert.NoError(t, err)
		assert.NotNil(t, seen)
		assert.Equal(t, uint(7), seen.ID)
		users.AssertExpectations(t)
	})

	t.Run("deactivated user is rejected even with a valid token", func(t *testing.T) {
		users := new(MockUserService)
		users.On("GetUser", mock.Anything, uint(7)).Return(&model.User{ID: 7, IsActive: false}, nil)
		token, _ := jwtService.GenerateToken(7, "jane.doe@umn.edu")
		m := NewAuthMiddleware(jwtService, users)

		var seen *model.User
		err := chain(okHandler(&seen), m.Required()...)(newContext("Bearer " + token))

		var herr *apperrors.HTTPError
		assert.ErrorAs(t, err, &herr)
		assert.Equal(t, http.StatusUnauthorized, herr.StatusCode)
		assert.Equal(t, "USER_INACTIVE", herr.Code)
		assert.Nil(t, seen)
	})
}

func TestAuthMiddleware_Optional(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)

	t.Run("no token proceeds anonymously", func(t *testing.T) {
		users := new(MockUserService)
		m := NewAuthMiddleware(jwtService, users)

		var seen *model.User
		err := chain(okHandler(&seen), m.Optional()...)(newContext(""))

		assert.NoError(t, err)
		assert.Nil(t, seen)
	})

	t.Run("bad token proceeds anonymously", func(t *testing.T) {
		users := new(MockUserService)
		m := NewAuthMiddleware(jwtService, users)

		var seen *model.User
		err := chain(okHandler(&seen), m.Optional()...)(newContext("Bearer not-a-token"))

		assert.NoError(t, err)
		assert.Nil(t, seen)
	})

	t.Run("valid token resolves the user", func(t *testing.T) {
		users := new(MockUserService)
		users.On("GetUser", mock.Anything, uint(7)).Return(&model.User{ID: 7, IsActive: true}, nil)
		token, _ := jwtService.GenerateToken(7, "jane.doe@umn.edu")
		m := NewAuthMiddleware(jwtService, users)

		var seen *model.User
		err := chain(okHandler(&seen), m.Optional()...)(newContext("Bearer " + token))

		assert.NoError(t, err)
		assert.NotNil(t, seen)
		assert.Equal(t, uint(7), seen.ID)
	})
}

func TestAuthMiddleware_AdminOnly(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)

	t.Run("non-admin is rejected", func(t *testing.T) {
		users := new(MockUserService)
		users.On("GetUser", mock.Anything, uint(7)).Return(&model.User{ID: 7, IsActive: true, Role: model.RoleStudent}, nil)
		token, _ := jwtService.GenerateToken(7, "jane.doe@umn.edu")
		m := NewAuthMiddleware(jwtService, users)

		var seen *model.User
		mws := append(m.Required(), m.AdminOnly())
		err := chain(okHandler(&seen), mws...)(newContext("Bearer " + token))

		var herr *apperrors.HTTPError
		assert.ErrorAs(t, err, &herr)
		assert.Equal(t, http.StatusForbidden, herr.StatusCode)
		assert.Equal(t, "ADMIN_REQUIRED", herr.Code)
	})

	t.Run("admin passes", func(t *testing.T) {
		users := new(MockUserService)
		users.On("GetUser", mock.Anything, uint(1)).Return(&model.User{ID: 1, IsActive: true, Role: model.RoleAdmin}, nil)
		token, _ := jwtService.GenerateToken(1, "admin@umn.edu")
		m := NewAuthMiddleware(jwtService, users)

		var seen *model.User
		mws := append(m.Required(), m.AdminOnly())
		err := chain(okHandler(&seen), mws...)(newContext("Bearer " + token))

		assert.NoError(t, err)
		assert.NotNil(t, seen)
		assert.True(t, seen.IsAdmin())
	})
}
