package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Customer struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Email     string       `json:"email" gorm:"type:text;not null;uniqueIndex"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Phone     string       `json:"phone" gorm:"type:text;not null"`
	Address   string       `json:"address,omitempty" gorm:"type:text"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null"`
}

func (Customer) TableName() string { return "customers" }
