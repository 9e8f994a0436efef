package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is the closed set of item categories.
type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryBooks       Category = "books"
	CategoryClothing    Category = "clothing"
	CategoryFurniture   Category = "furniture"
	CategorySports      Category = "sports"
	CategoryMusic       Category = "music"
	CategoryHomeGarden  Category = "home-garden"
	CategoryAutomotive  Category = "automotive"
	CategoryOther       Category = "other"
)

// Condition is the closed set of item conditions.
type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionLikeNew Condition = "like-new"
	ConditionGood    Condition = "good"
	ConditionFair    Condition = "fair"
	ConditionPoor    Condition = "poor"
)

// ContactMethod is how a donor prefers to be reached.
type ContactMethod string

const (
	ContactEmail ContactMethod = "email"
	ContactPhone ContactMethod = "phone"
	ContactBoth  ContactMethod = "both"
)

// Item represents a donation listing.
type Item struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	Title         string          `json:"title" gorm:"size:200;not null"`
	Description   string          `json:"description" gorm:"type:text;not null"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Category      Category        `json:"category" gorm:"type:varchar(20);not null;index"`
	Condition     Condition       `json:"condition" gorm:"type:varchar(20);not null"`
	IsAvailable   bool            `json:"isAvailable" gorm:"default:true;index"`
	IsFeatured    bool            `json:"isFeatured" gorm:"default:false"`
	Tags          []string        `json:"tags" gorm:"serializer:json"`
	Location      string          `json:"location,omitempty" gorm:"size:100"`
	ContactMethod ContactMethod   `json:"contactMethod" gorm:"type:varchar(10);not null;default:'email'"`
	ViewCount     int             `json:"viewCount" gorm:"default:0"`
	UserID        uint            `json:"userId" gorm:"not null;index"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`

	// Relations
	User   User        `json:"-" gorm:"foreignKey:UserID"`
	Images []ItemImage `json:"images,omitempty" gorm:"foreignKey:ItemID"`

	// Seller is the owner summary shaped into responses; not persisted.
	Seller *OwnerSummary `json:"seller,omitempty" gorm:"-"`
}

// ValidCategory reports whether v is a known category.
func ValidCategory(v string) bool {
	switch Category(v) {
	case CategoryElectronics, CategoryBooks, CategoryClothing, CategoryFurniture,
		CategorySports, CategoryMusic, CategoryHomeGarden, CategoryAutomotive, CategoryOther:
		return true
	}
	return false
}

// ValidCondition reports whether v is a known condition.
func ValidCondition(v string) bool {
	switch Condition(v) {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// ValidContactMethod reports whether v is a known contact method.
func ValidContactMethod(v string) bool {
	switch ContactMethod(v) {
	case ContactEmail, ContactPhone, ContactBoth:
		return true
	}
	return false
}
