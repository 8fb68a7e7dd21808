package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/foodcourtlabs/foodcourt/internal/order/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type orderRepo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Create(order).Error
}

func (r *orderRepo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Order, error) {
	if db == nil {
		db = r.db
	}
	var order domain.Order
	err := db.WithContext(ctx).
		Preload("Customer").
		Preload("Transactions", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at ASC")
		}).
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Order, error) {
	if db == nil {
		db = r.db
	}
	tx := db.WithContext(ctx)
	// sqlite has no row locks; the write transaction itself serializes there.
	if tx.Dialector.Name() == "postgres" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var order domain.Order
	if err := tx.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]domain.Order, error) {
	if db == nil {
		db = r.db
	}
	var orders []domain.Order
	err := db.WithContext(ctx).
		Preload("Transactions", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at ASC")
		}).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.Status) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}
