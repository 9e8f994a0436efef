package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"greenmarket/internal/middleware"
	"greenmarket/internal/service"
)

// ItemHandler handles donation item endpoints.
type ItemHandler struct {
	itemService service.ItemService
}

// NewItemHandler creates a new item handler.
func NewItemHandler(itemService service.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// ListItemsQuery filters, sorts and paginates the public listing. Every
// invalid field is reported, not just the first.
type ListItemsQuery struct {
	Page      int      `query:"page" validate:"omitempty,gte=1"`
	Limit     int      `query:"limit" validate:"omitempty,gte=1,lte=50"`
	Search    string   `query:"search"`
	Category  string   `query:"category" validate:"omitempty,oneof=electronics books clothing furniture sports music home-garden automotive other"`
	Condition string   `query:"condition" validate:"omitempty,oneof=new like-new good fair poor"`
	MinPrice  *float64 `query:"minPrice" validate:"omitempty,gte=0"`
	MaxPrice  *float64 `query:"maxPrice" validate:"omitempty,gte=0"`
	SortBy    string   `query:"sortBy" validate:"omitempty,oneof=createdAt price title viewCount"`
	SortOrder string   `query:"sortOrder" validate:"omitempty,oneof=asc desc ASC DESC"`
}

// UserItemsQuery paginates one owner's listing.
type UserItemsQuery struct {
	Page  int `query:"page" validate:"omitempty,gte=1"`
	Limit int `query:"limit" validate:"omitempty,gte=1,lte=50"`
}

// CreateItemRequest represents a new donation listing.
type CreateItemRequest struct {
	Title         string   `json:"title" validate:"required,min=3,max=200"`
	Description   string   `json:"description" validate:"required,min=10,max=2000"`
	Price         *float64 `json:"price" validate:"required,gte=0,lte=99999.99"`
	Category      string   `json:"category" validate:"required,oneof=electronics books clothing furniture sports music home-garden automotive other"`
	Condition     string   `json:"condition" validate:"required,oneof=new like-new good fair poor"`
	ContactMethod string   `json:"contactMethod" validate:"omitempty,oneof=email phone both"`
	Tags          []string `json:"tags" validate:"omitempty,dive,max=50"`
	Location      string   `json:"location" validate:"omitempty,max=100"`
	Images        []string `json:"images" validate:"omitempty,dive,url,max=500"`
}

// UpdateItemRequest applies a partial item update. Only fields present in the
// body are touched; a non-null images array replaces the gallery.
type UpdateItemRequest struct {
	Title         *string   `json:"title" validate:"omitempty,min=3,max=200"`
	Description   *string   `json:"description" validate:"omitempty,min=10,max=2000"`
	Price         *float64  `json:"price" validate:"omitempty,gte=0,lte=99999.99"`
	Category      *string   `json:"category" validate:"omitempty,oneof=electronics books clothing furniture sports music home-garden automotive other"`
	Condition     *string   `json:"condition" validate:"omitempty,oneof=new like-new good fair poor"`
	ContactMethod *string   `json:"contactMethod" validate:"omitempty,oneof=email phone both"`
	IsAvailable   *bool     `json:"isAvailable"`
	Tags          *[]string `json:"tags" validate:"omitempty,dive,max=50"`
	Location      *string   `json:"location" validate:"omitempty,max=100"`
	Images        *[]string `json:"images" validate:"omitempty,dive,url,max=500"`
}

// ListItems godoc
// @Summary List available items
// @Tags items
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size (1-50)"
// @Param search query string false "Title/description substring"
// @Param category query string false "Category filter"
// @Param condition query string false "Condition filter"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Param sortBy query string false "createdAt, price, title or viewCount"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Router /items [get]
func (h *ItemHandler) ListItems(c echo.Context) error {
	var query ListItemsQuery
	if err := bindAndValidate(c, &query); err != nil {
		return err
	}
	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 12
	}

	items, pagination, err := h.itemService.List(c.Request().Context(), service.ListItemsInput{
		Search:    query.Search,
		Category:  query.Category,
		Condition: query.Condition,
		MinPrice:  query.MinPrice,
		MaxPrice:  query.MaxPrice,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
		Page:      query.Page,
		Limit:     query.Limit,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "", echo.Map{
		"items":      items,
		"pagination": pagination,
	})
}

// GetItem godoc
// @Summary Get a single item
// @Tags items
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /items/{id} [get]
func (h *ItemHandler) GetItem(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	item, err := h.itemService.Get(c.Request().Context(), id, middleware.CurrentUser(c))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "", echo.Map{
		"item": item,
	})
}

// CreateItem godoc
// @Summary Create a donation listing
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateItemRequest true "Item data"
// @Success 201 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 401 {object} Envelope
// @Router /items [post]
func (h *ItemHandler) CreateItem(c echo.Context) error {
	var req CreateItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	item, err := h.itemService.Create(c.Request().Context(), middleware.CurrentUser(c), service.CreateItemInput{
		Title:         req.Title,
		Description:   req.Description,
		Price:         *req.Price,
		Category:      req.Category,
		Condition:     req.Condition,
		ContactMethod: req.ContactMethod,
		Tags:          req.Tags,
		Location:      req.Location,
		Images:        req.Images,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "Item created successfully", echo.Map{
		"item": item,
	})
}

// UpdateItem godoc
// @Summary Update an item (owner or admin)
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Param request body UpdateItemRequest true "Fields to update"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Failure 403 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /items/{id} [put]
func (h *ItemHandler) UpdateItem(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	item, err := h.itemService.Update(c.Request().Context(), id, middleware.CurrentUser(c), service.UpdateItemInput{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		Category:      req.Category,
		Condition:     req.Condition,
		ContactMethod: req.ContactMethod,
		IsAvailable:   req.IsAvailable,
		Tags:          req.Tags,
		Location:      req.Location,
		Images:        req.Images,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Item updated successfully", echo.Map{
		"item": item,
	})
}

// DeleteItem godoc
// @Summary Delete an item (owner or admin)
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Success 200 {object} Envelope
// @Failure 403 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /items/{id} [delete]
func (h *ItemHandler) DeleteItem(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.itemService.Delete(c.Request().Context(), id, middleware.CurrentUser(c)); err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Item deleted successfully", nil)
}

// ListUserItems godoc
// @Summary List items posted by one user
// @Tags items
// @Produce json
// @Param userId path int true "Owner user ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size (1-50)"
// @Success 200 {object} Envelope
// @Failure 400 {object} Envelope
// @Router /items/user/{userId} [get]
func (h *ItemHandler) ListUserItems(c echo.Context) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return err
	}

	var query UserItemsQuery
	if err := bindAndValidate(c, &query); err != nil {
		return err
	}
	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 12
	}

	items, pagination, err := h.itemService.ListByUser(c.Request().Context(), userID, query.Page, query.Limit, middleware.CurrentUser(c))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "", echo.Map{
		"items":      items,
		"pagination": pagination,
	})
}
