package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"

	bankdomain "github.com/foodcourtlabs/foodcourt/internal/bank/domain"
)

type bankSeed struct {
	name string
	code string
}

// Banks supported by the transfer rail. Reference data, inserted once.
var banks = []bankSeed{
	{"Banco de Venezuela", "0102"},
	{"Banco Mercantil", "0105"},
	{"BBVA Provincial", "0108"},
	{"Banesco", "0134"},
	{"Bancamiga", "0172"},
	{"Banco Nacional de Credito", "0191"},
}

func SeedBanks(ctx context.Context, db *gorm.DB, genID *snowflake.Node, log *zap.Logger) error {
	now := time.Now().UTC()
	created := 0
	for _, b := range banks {
		var existing bankdomain.BankConfig
		err := db.WithContext(ctx).Where("bank_name = ?", b.name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		bank := bankdomain.BankConfig{
			ID:               genID.Generate(),
			BankName:         b.name,
			Code:             b.code,
			SupportedMethods: []byte(`["bank_transfer"]`),
			IsActive:         true,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := db.WithContext(ctx).Create(&bank).Error; err != nil {
			return err
		}
		created++
	}
	log.Info("bank configs seeded", zap.Int("created", created), zap.Int("total", len(banks)))
	return nil
}
