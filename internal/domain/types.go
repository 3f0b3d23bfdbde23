package domain

import "time"

// InventoryItem is one inventory record. AttachmentRef is the opaque storage
// key of the item's photo; nil means the item has no photo.
type InventoryItem struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	AttachmentRef *string   `json:"attachment_ref,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
