package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/foodcourtlabs/foodcourt/internal/customer/domain"
	"gorm.io/gorm"
)

type customerRepo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &customerRepo{db: db}
}

func (r *customerRepo) Insert(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Create(customer).Error
}

func (r *customerRepo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Customer, error) {
	if db == nil {
		db = r.db
	}
	var customer domain.Customer
	if err := db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Customer, error) {
	if db == nil {
		db = r.db
	}
	var customer domain.Customer
	err := db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	return &customer, nil
}
