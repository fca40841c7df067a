package model

import (
	"time"

	"marketplace-service/internal/lifecycle"
)

// OrderB2C is a cash-on-delivery order placed against a customer-lane listing.
// The buyer may be anonymous; BuyerUserID is set only when a registered
// customer was signed in at checkout.
type OrderB2C struct {
	ID           uint             `json:"id" gorm:"primarykey"`
	BuyerName    string           `json:"buyer_name" gorm:"type:varchar(255);not null"`
	BuyerAddress string           `json:"buyer_address" gorm:"type:text;not null"`
	BuyerPhone   string           `json:"buyer_phone" gorm:"type:varchar(50);not null"`
	BuyerUserID  *uint            `json:"buyer_user_id" gorm:"index"`
	Status       lifecycle.Status `json:"status" gorm:"type:varchar(20);not null;index"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Items        []OrderItemB2C   `json:"items" gorm:"foreignKey:OrderID"`
}

// TableName pins the table name; gorm's derived name for the B2C/B2B suffix
// is not stable across naming strategies.
func (OrderB2C) TableName() string { return "b2c_orders" }

// OrderItemB2C snapshots one listing purchase. PriceAtPurchase is written once
// at order creation and never re-read from the live listing.
type OrderItemB2C struct {
	ID              uint    `json:"id" gorm:"primarykey"`
	OrderID         uint    `json:"order_id" gorm:"not null;index"`
	ListingID       uint    `json:"listing_id" gorm:"not null;index"`
	Quantity        int     `json:"quantity" gorm:"not null"`
	PriceAtPurchase float64 `json:"price_at_purchase" gorm:"not null"`
}

func (OrderItemB2C) TableName() string { return "b2c_order_items" }

// OrderB2B is a bulk order between one registered buyer and one seller. A
// multi-seller cart is partitioned before order creation, so the seller id is
// single-valued here.
type OrderB2B struct {
	ID         uint             `json:"id" gorm:"primarykey"`
	BuyerID    uint             `json:"buyer_id" gorm:"not null;index"`
	SellerID   uint             `json:"seller_id" gorm:"not null;index"`
	TotalPrice float64          `json:"total_price" gorm:"not null"`
	Status     lifecycle.Status `json:"status" gorm:"type:varchar(20);not null;index"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	Items      []OrderItemB2B   `json:"items" gorm:"foreignKey:OrderID"`
}

func (OrderB2B) TableName() string { return "b2b_orders" }

// OrderItemB2B mirrors its B2C counterpart. The listing reference is kept for
// audit even after the listing is deleted, so it is deliberately not a hard
// foreign key.
type OrderItemB2B struct {
	ID              uint    `json:"id" gorm:"primarykey"`
	OrderID         uint    `json:"order_id" gorm:"not null;index"`
	ListingID       uint    `json:"listing_id" gorm:"not null;index"`
	Quantity        int     `json:"quantity" gorm:"not null"`
	PriceAtPurchase float64 `json:"price_at_purchase" gorm:"not null"`
}

func (OrderItemB2B) TableName() string { return "b2b_order_items" }
