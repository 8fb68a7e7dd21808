package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, bank *BankConfig) error
	ListActive(ctx context.Context, db *gorm.DB) ([]BankConfig, error)
	// IsSupported reports whether bankName matches an active bank.
	// Matching is case-insensitive.
	IsSupported(ctx context.Context, db *gorm.DB, bankName string) (bool, error)
}
