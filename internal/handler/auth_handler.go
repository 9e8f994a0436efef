package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"greenmarket/internal/middleware"
	"greenmarket/internal/service"
)

// AuthHandler handles registration and login endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required,min=1,max=50"`
	LastName  string `json:"lastName" validate:"required,min=1,max=50"`
	Email     string `json:"email" validate:"required,email,max=100"`
	Password  string `json:"password" validate:"required,min=6,max=255"`
	Phone     string `json:"phone" validate:"omitempty,phone"`
	StudentID string `json:"studentId" validate:"omitempty,max=20"`
	Role      string `json:"role" validate:"omitempty,oneof=student faculty staff"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} Envelope
// @Failure 400 {object} Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, token, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		StudentID: req.StudentID,
		Role:      req.Role,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "User registered successfully", echo.Map{
		"user":  user,
		"token": token,
	})
}

// Login godoc
// @Summary Login with institutional credentials
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 401 {object} Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, token, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Login successful", echo.Map{
		"user":  user,
		"token": token,
	})
}

// Me godoc
// @Summary Current authenticated user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope
// @Failure 401 {object} Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	return respond(c, http.StatusOK, "", echo.Map{
		"user": middleware.CurrentUser(c),
	})
}
