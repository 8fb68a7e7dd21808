package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	// FindByID loads the order with its customer and transaction history.
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	// FindByIDForUpdate locks the order row for the duration of the
	// surrounding transaction (SELECT ... FOR UPDATE on postgres). It does
	// not preload associations.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]Order, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status) error
}
