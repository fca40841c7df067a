package model

import (
	"time"

	"gorm.io/gorm"

	"marketplace-service/internal/role"
)

// Profile represents a marketplace participant. Authentication lives in the
// external identity provider; this record exists so the engine can resolve
// seller/buyer tiers and the admin can supervise accounts.
type Profile struct {
	ID           uint           `json:"id" gorm:"primarykey"`
	Email        string         `json:"email" gorm:"type:varchar(255);unique;not null"`
	BusinessName string         `json:"business_name" gorm:"type:varchar(255)"`
	Tier         role.Tier      `json:"tier" gorm:"type:varchar(20);not null;index"`
	Balance      float64        `json:"balance" gorm:"default:0"`
	DueAmount    float64        `json:"due_amount" gorm:"default:0"`
	Banned       bool           `json:"banned" gorm:"default:false"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
