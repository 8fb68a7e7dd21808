package repository

import (
	"context"
	"strings"

	"github.com/foodcourtlabs/foodcourt/internal/bank/domain"
	"gorm.io/gorm"
)

type bankRepo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &bankRepo{db: db}
}

func (r *bankRepo) Insert(ctx context.Context, db *gorm.DB, bank *domain.BankConfig) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Create(bank).Error
}

func (r *bankRepo) ListActive(ctx context.Context, db *gorm.DB) ([]domain.BankConfig, error) {
	if db == nil {
		db = r.db
	}
	var banks []domain.BankConfig
	if err := db.WithContext(ctx).Where("is_active = ?", true).Order("bank_name").Find(&banks).Error; err != nil {
		return nil, err
	}
	return banks, nil
}

func (r *bankRepo) IsSupported(ctx context.Context, db *gorm.DB, bankName string) (bool, error) {
	if db == nil {
		db = r.db
	}
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.BankConfig{}).
		Where("LOWER(bank_name) = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(bankName)), true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
