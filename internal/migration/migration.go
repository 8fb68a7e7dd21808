package migration

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/gorm"

	bankdomain "github.com/foodcourtlabs/foodcourt/internal/bank/domain"
	"github.com/foodcourtlabs/foodcourt/internal/config"
	customerdomain "github.com/foodcourtlabs/foodcourt/internal/customer/domain"
	orderdomain "github.com/foodcourtlabs/foodcourt/internal/order/domain"
	paymentdomain "github.com/foodcourtlabs/foodcourt/internal/payment/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Run applies the schema. Postgres goes through versioned SQL migrations;
// sqlite (dev/test) uses gorm AutoMigrate since the SQL files target
// postgres types.
func Run(cfg config.Config, gdb *gorm.DB, log *zap.Logger) error {
	if cfg.Database.Driver == "postgres" {
		return runVersioned(gdb, log)
	}
	return AutoMigrate(gdb)
}

func runVersioned(gdb *gorm.DB, log *zap.Logger) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("migration: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migration: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}

	version, dirty, _ := m.Version()
	log.Info("migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// AutoMigrate creates the schema from the domain models. Used for sqlite and
// by the test suites.
func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&customerdomain.Customer{},
		&orderdomain.Order{},
		&paymentdomain.Transaction{},
		&paymentdomain.EventRecord{},
		&bankdomain.BankConfig{},
	)
}
