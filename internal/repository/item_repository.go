package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"greenmarket/internal/model"
)

// ItemFilter narrows item listings. Nil/zero fields are ignored.
type ItemFilter struct {
	Search        string
	Category      string
	Condition     string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	UserID        *uint
	AvailableOnly bool
}

// ItemSort orders item listings. Field must be one of the allowed sort keys;
// anything else falls back to creation time.
type ItemSort struct {
	Field string
	Desc  bool
}

func (s ItemSort) column() string {
	switch s.Field {
	case "price":
		return "price"
	case "title":
		return "title"
	case "viewCount":
		return "view_count"
	default:
		return "created_at"
	}
}

func (s ItemSort) clause() string {
	if s.Desc {
		return s.column() + " DESC"
	}
	return s.column() + " ASC"
}

// ItemRepository defines item persistence operations. The image cascade is an
// explicit contract here: creating, replacing and deleting gallery rows happens
// inside the same transaction as the parent item.
type ItemRepository interface {
	CreateWithImages(ctx context.Context, item *model.Item, imageURLs []string) error
	Save(ctx context.Context, item *model.Item) error
	ReplaceImages(ctx context.Context, itemID uint, imageURLs []string) error
	FindByID(ctx context.Context, id uint) (*model.Item, error)
	List(ctx context.Context, filter ItemFilter, sort ItemSort, offset, limit int) ([]model.Item, int64, error)
	IncrementViewCount(ctx context.Context, id uint) error
	DeleteWithImages(ctx context.Context, id uint) error
	ListImages(ctx context.Context, itemID uint) ([]model.ItemImage, error)
}

type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates a new item repository.
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

// CreateWithImages persists the item and its gallery in one transaction.
// Display order follows the input order of the URLs, starting at 0.
func (r *itemRepository) CreateWithImages(ctx context.Context, item *model.Item, imageURLs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		return insertImages(tx, item.ID, imageURLs)
	})
}

func (r *itemRepository) Save(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// ReplaceImages swaps the entire gallery of an item atomically.
func (r *itemRepository) ReplaceImages(ctx context.Context, itemID uint, imageURLs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", itemID).Delete(&model.ItemImage{}).Error; err != nil {
			return err
		}
		return insertImages(tx, itemID, imageURLs)
	})
}

func insertImages(tx *gorm.DB, itemID uint, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	images := make([]model.ItemImage, 0, len(urls))
	for i, url := range urls {
		images = append(images, model.ItemImage{
			ItemID:       itemID,
			URL:          url,
			DisplayOrder: i,
		})
	}
	return tx.Create(&images).Error
}

// FindByID loads an item with its owner and gallery ordered by display order.
func (r *itemRepository) FindByID(ctx context.Context, id uint) (*model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns a page of items plus the total count matching the filter.
func (r *itemRepository) List(ctx context.Context, filter ItemFilter, sort ItemSort, offset, limit int) ([]model.Item, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Item{})

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Condition != "" {
		query = query.Where("`condition` = ?", filter.Condition)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.AvailableOnly {
		query = query.Where("is_available = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.Item
	err := query.
		Preload("User").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Order(sort.clause()).
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// IncrementViewCount bumps the counter in a single UPDATE so concurrent reads
// do not lose updates.
func (r *itemRepository) IncrementViewCount(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.Item{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

// DeleteWithImages removes the item and its gallery inside one transaction;
// a failure on either side rolls back both.
func (r *itemRepository) DeleteWithImages(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&model.ItemImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Item{}, id).Error
	})
}

// ListImages returns the gallery of an item ordered by display order.
func (r *itemRepository) ListImages(ctx context.Context, itemID uint) ([]model.ItemImage, error) {
	var images []model.ItemImage
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("display_order ASC").
		Find(&images).Error
	if err != nil {
		return nil, err
	}
	return images, nil
}
