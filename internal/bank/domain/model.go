package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// BankConfig is static reference data describing a supported bank. Rows are
// seeded at setup time and treated as read-only by the payment flow.
type BankConfig struct {
	ID               snowflake.ID   `json:"id" gorm:"primaryKey"`
	BankName         string         `json:"bank_name" gorm:"type:text;not null;uniqueIndex"`
	Code             string         `json:"code" gorm:"type:varchar(10);not null"`
	SupportedMethods datatypes.JSON `json:"supported_methods" gorm:"not null"`
	IsActive         bool           `json:"is_active" gorm:"default:true"`
	Config           datatypes.JSON `json:"config,omitempty"`
	CreatedAt        time.Time      `json:"created_at" gorm:"not null"`
	UpdatedAt        time.Time      `json:"updated_at" gorm:"not null"`
}

func (BankConfig) TableName() string { return "bank_configs" }
