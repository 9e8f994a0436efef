package model

import "time"

// ItemImage is one entry of an item's gallery. Images have no lifecycle of
// their own: they are created with the item (or a gallery replacement) and
// removed when the parent item is deleted.
type ItemImage struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ItemID       uint      `json:"itemId" gorm:"not null;index"`
	URL          string    `json:"url" gorm:"size:500;not null"`
	DisplayOrder int       `json:"displayOrder" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
