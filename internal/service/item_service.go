package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "greenmarket/internal/errors"
	"greenmarket/internal/model"
	"greenmarket/internal/repository"
)

// ListItemsInput carries the validated listing query into the service layer.
type ListItemsInput struct {
	Search    string
	Category  string
	Condition string
	MinPrice  *float64
	MaxPrice  *float64
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// CreateItemInput carries a validated create request.
type CreateItemInput struct {
	Title         string
	Description   string
	Price         float64
	Category      string
	Condition     string
	ContactMethod string
	Tags          []string
	Location      string
	Images        []string
}

// UpdateItemInput is the statically typed partial update for an item. Nil
// fields are left untouched; a non-nil Images slice replaces the gallery.
type UpdateItemInput struct {
	Title         *string
	Description   *string
	Price         *float64
	Category      *string
	Condition     *string
	ContactMethod *string
	IsAvailable   *bool
	Tags          *[]string
	Location      *string
	Images        *[]string
}

// ItemService exposes listing and mutation operations on donation items.
type ItemService interface {
	List(ctx context.Context, input ListItemsInput) ([]model.Item, Pagination, error)
	ListByUser(ctx context.Context, userID uint, page, limit int, caller *model.User) ([]model.Item, Pagination, error)
	Get(ctx context.Context, id uint, caller *model.User) (*model.Item, error)
	Create(ctx context.Context, owner *model.User, input CreateItemInput) (*model.Item, error)
	Update(ctx context.Context, id uint, caller *model.User, input UpdateItemInput) (*model.Item, error)
	Delete(ctx context.Context, id uint, caller *model.User) error
}

type itemService struct {
	repo repository.ItemRepository
}

// NewItemService creates a new item service.
func NewItemService(repo repository.ItemRepository) ItemService {
	return &itemService{repo: repo}
}

// List returns available items matching the filters, with owner summaries.
func (s *itemService) List(ctx context.Context, input ListItemsInput) ([]model.Item, Pagination, error) {
	filter := repository.ItemFilter{
		Search:        input.Search,
		Category:      input.Category,
		Condition:     input.Condition,
		AvailableOnly: true,
	}
	if input.MinPrice != nil {
		min := decimal.NewFromFloat(*input.MinPrice)
		filter.MinPrice = &min
	}
	if input.MaxPrice != nil {
		max := decimal.NewFromFloat(*input.MaxPrice)
		filter.MaxPrice = &max
	}

	sort := repository.ItemSort{
		Field: input.SortBy,
		Desc:  input.SortOrder != "asc" && input.SortOrder != "ASC",
	}

	items, total, err := s.repo.List(ctx, filter, sort, (input.Page-1)*input.Limit, input.Limit)
	if err != nil {
		return nil, Pagination{}, err
	}
	attachSellers(items)
	return items, NewPagination(total, input.Page, input.Limit), nil
}

// ListByUser returns one owner's items. Unavailable items are visible only to
// that owner.
func (s *itemService) ListByUser(ctx context.Context, userID uint, page, limit int, caller *model.User) ([]model.Item, Pagination, error) {
	filter := repository.ItemFilter{
		UserID:        &userID,
		AvailableOnly: caller == nil || caller.ID != userID,
	}
	sort := repository.ItemSort{Field: "createdAt", Desc: true}

	items, total, err := s.repo.List(ctx, filter, sort, (page-1)*limit, limit)
	if err != nil {
		return nil, Pagination{}, err
	}
	attachSellers(items)
	return items, NewPagination(total, page, limit), nil
}

// Get loads a single item with its gallery and owner contact details. Reads by
// anyone but the owner bump the view counter exactly once.
func (s *itemService) Get(ctx context.Context, id uint, caller *model.User) (*model.Item, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrItemNotFound
		}
		return nil, err
	}

	if caller == nil || caller.ID != item.UserID {
		if err := s.repo.IncrementViewCount(ctx, id); err != nil {
			return nil, fmt.Errorf("increment view count: %w", err)
		}
		item.ViewCount++
	}

	seller := item.User.DetailSummary()
	item.Seller = &seller
	return item, nil
}

// Create persists a new item owned by the caller, gallery included.
func (s *itemService) Create(ctx context.Context, owner *model.User, input CreateItemInput) (*model.Item, error) {
	contactMethod := model.ContactMethod(input.ContactMethod)
	if input.ContactMethod == "" {
		contactMethod = model.ContactEmail
	}
	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	item := &model.Item{
		Title:         input.Title,
		Description:   input.Description,
		Price:         decimal.NewFromFloat(input.Price),
		Category:      model.Category(input.Category),
		Condition:     model.Condition(input.Condition),
		IsAvailable:   true,
		Tags:          tags,
		Location:      input.Location,
		ContactMethod: contactMethod,
		UserID:        owner.ID,
	}

	if err := s.repo.CreateWithImages(ctx, item, input.Images); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	created, err := s.repo.FindByID(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("reload item: %w", err)
	}
	seller := created.User.Summary()
	created.Seller = &seller
	return created, nil
}

// Update applies the present fields of the update. Only the owner or an admin
// may mutate an item.
func (s *itemService) Update(ctx context.Context, id uint, caller *model.User, input UpdateItemInput) (*model.Item, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrItemNotFound
		}
		return nil, err
	}

	if item.UserID != caller.ID && !caller.IsAdmin() {
		return nil, apperrors.ErrNotOwner
	}

	if input.Title != nil {
		item.Title = *input.Title
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.Price != nil {
		item.Price = decimal.NewFromFloat(*input.Price)
	}
	if input.Category != nil {
		item.Category = model.Category(*input.Category)
	}
	if input.Condition != nil {
		item.Condition = model.Condition(*input.Condition)
	}
	if input.ContactMethod != nil {
		item.ContactMethod = model.ContactMethod(*input.ContactMethod)
	}
	if input.IsAvailable != nil {
		item.IsAvailable = *input.IsAvailable
	}
	if input.Tags != nil {
		item.Tags = *input.Tags
	}
	if input.Location != nil {
		item.Location = *input.Location
	}

	if err := s.repo.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	if input.Images != nil {
		if err := s.repo.ReplaceImages(ctx, id, *input.Images); err != nil {
			return nil, fmt.Errorf("replace images: %w", err)
		}
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload item: %w", err)
	}
	seller := updated.User.Summary()
	updated.Seller = &seller
	return updated, nil
}

// Delete removes an item and cascades the gallery deletion. Only the owner or
// an admin may delete.
func (s *itemService) Delete(ctx context.Context, id uint, caller *model.User) error {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.ErrItemNotFound
		}
		return err
	}

	if item.UserID != caller.ID && !caller.IsAdmin() {
		return apperrors.ErrNotOwner
	}

	return s.repo.DeleteWithImages(ctx, id)
}

func attachSellers(items []model.Item) {
	for i := range items {
		seller := items[i].User.Summary()
		items[i].Seller = &seller
	}
}
