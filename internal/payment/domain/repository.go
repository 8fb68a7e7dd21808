package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, txn *Transaction) error
	Update(ctx context.Context, db *gorm.DB, txn *Transaction) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Transaction, error)
	// FindByIDForUpdate locks the transaction row on postgres.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Transaction, error)
	FindByProviderIntentID(ctx context.Context, db *gorm.DB, providerIntentID string) (*Transaction, error)
	InsertEvent(ctx context.Context, db *gorm.DB, event *EventRecord) error
}
