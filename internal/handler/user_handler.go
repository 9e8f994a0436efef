package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"greenmarket/internal/middleware"
	"greenmarket/internal/repository"
	"greenmarket/internal/service"
)

// UserHandler handles profile and admin user-management endpoints.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateProfileRequest applies a partial profile update. Only fields present
// in the body are touched.
type UpdateProfileRequest struct {
	FirstName    *string `json:"firstName" validate:"omitempty,min=1,max=50"`
	LastName     *string `json:"lastName" validate:"omitempty,min=1,max=50"`
	Phone        *string `json:"phone" validate:"omitempty,phone"`
	StudentID    *string `json:"studentId" validate:"omitempty,max=20"`
	ProfileImage *string `json:"profileImage" validate:"omitempty,url,max=500"`
}

// ListUsersQuery filters the admin user listing.
type ListUsersQuery struct {
	Page   int    `query:"page" validate:"omitempty,gte=1"`
	Limit  int    `query:"limit" validate:"omitempty,gte=1,lte=50"`
	Search string `query:"search"`
	Role   string `query:"role" validate:"omitempty,oneof=student faculty staff admin"`
}

// UpdateStatusRequest toggles a user's active flag.
type UpdateStatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// GetProfile godoc
// @Summary Current user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope
// @Failure 401 {object} Envelope
// @Router /users/profile [get]
func (h *UserHandler) GetProfile(c echo.Context) error {
	return respond(c, http.StatusOK, "", echo.Map{
		"user": middleware.CurrentUser(c),
	})
}

// UpdateProfile godoc
// @Summary Update current user's profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Router /users/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), middleware.CurrentUser(c).ID, service.ProfileUpdate{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		StudentID:    req.StudentID,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Profile updated successfully", echo.Map{
		"user": user,
	})
}

// ListUsers godoc
// @Summary List users (admin)
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size (1-50)"
// @Param search query string false "Name or email substring"
// @Param role query string false "Role filter"
// @Success 200 {object} Envelope
// @Failure 403 {object} Envelope
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	var query ListUsersQuery
	if err := bindAndValidate(c, &query); err != nil {
		return err
	}
	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 10
	}

	users, pagination, err := h.userService.ListUsers(c.Request().Context(), repository.UserFilter{
		Search: query.Search,
		Role:   query.Role,
	}, query.Page, query.Limit)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "", echo.Map{
		"users":      users,
		"pagination": pagination,
	})
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	user, err := h.userService.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "", echo.Map{
		"user": user,
	})
}

// UpdateStatus godoc
// @Summary Activate or deactivate a user (admin)
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body UpdateStatusRequest true "Status"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 403 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /users/{id}/status [put]
func (h *UserHandler) UpdateStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userService.UpdateStatus(c.Request().Context(), middleware.CurrentUser(c).ID, id, *req.IsActive)
	if err != nil {
		return err
	}

	message := "User deactivated successfully"
	if *req.IsActive {
		message = "User activated successfully"
	}
	return respond(c, http.StatusOK, message, echo.Map{
		"user": user,
	})
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, invalidIDError(name)
	}
	return uint(id), nil
}
