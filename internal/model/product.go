package model

import (
	"time"

	"gorm.io/gorm"

	"marketplace-service/internal/role"
)

// Category groups products for browsing. Managed by admins only; products hold
// a weak reference, so deleting a category never deletes products.
type Category struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null;unique"`
	Icon      string         `json:"icon" gorm:"type:varchar(255)"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// Product represents the product master data behind a listing. MediaURL is an
// opaque reference handed to us by the object store; the engine never inspects
// it.
type Product struct {
	ID          uint           `json:"id" gorm:"primarykey"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	Description string         `json:"description" gorm:"type:text"`
	MediaURL    string         `json:"media_url" gorm:"type:varchar(512)"`
	CategoryID  *uint          `json:"category_id" gorm:"index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// Listing is a seller's priced, stocked offer of a product to one downstream
// tier. TargetTier and IsBulkOffer are derived from the seller's tier at
// creation and are immutable afterwards except by privileged correction.
type Listing struct {
	ID               uint           `json:"id" gorm:"primarykey"`
	ProductID        uint           `json:"product_id" gorm:"not null;index"`
	Product          Product        `json:"product"`
	SellerID         uint           `json:"seller_id" gorm:"not null;index"`
	Price            float64        `json:"price" gorm:"not null"`
	StockQuantity    int            `json:"stock_quantity" gorm:"not null;default:0"`
	TargetTier       role.Tier      `json:"target_tier" gorm:"type:varchar(20);not null;index"`
	IsBulkOffer      bool           `json:"is_bulk_offer" gorm:"default:false"`
	MinOrderQuantity int            `json:"min_order_quantity" gorm:"not null;default:1"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
