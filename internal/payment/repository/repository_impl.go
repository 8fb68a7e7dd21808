package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/foodcourtlabs/foodcourt/internal/payment/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type transactionRepo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) Insert(ctx context.Context, db *gorm.DB, txn *domain.Transaction) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Create(txn).Error
}

func (r *transactionRepo) Update(ctx context.Context, db *gorm.DB, txn *domain.Transaction) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Save(txn).Error
}

func (r *transactionRepo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Transaction, error) {
	if db == nil {
		db = r.db
	}
	var txn domain.Transaction
	if err := db.WithContext(ctx).First(&txn, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func (r *transactionRepo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Transaction, error) {
	if db == nil {
		db = r.db
	}
	tx := db.WithContext(ctx)
	if tx.Dialector.Name() == "postgres" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var txn domain.Transaction
	if err := tx.First(&txn, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func (r *transactionRepo) FindByProviderIntentID(ctx context.Context, db *gorm.DB, providerIntentID string) (*domain.Transaction, error) {
	if db == nil {
		db = r.db
	}
	var txn domain.Transaction
	err := db.WithContext(ctx).
		Where("provider_intent_id = ?", providerIntentID).
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func (r *transactionRepo) InsertEvent(ctx context.Context, db *gorm.DB, event *domain.EventRecord) error {
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Create(event).Error
}
