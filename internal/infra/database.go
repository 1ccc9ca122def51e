package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Afa-Tecnologia/alfa360-sub004/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate,
// then applies the partial unique indexes GORM cannot express. Those two
// indexes ARE the concurrency story of the register engine: the store, not
// any client-side cache, decides whether a second open or a duplicate
// settlement wins a race.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := db.AutoMigrate(
		&model.CashRegister{},
		&model.Movement{},
		&model.Order{},
		&model.Payment{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := applyConstraints(db); err != nil {
		return nil, fmt.Errorf("constraints: %w", err)
	}

	return db, nil
}

// applyConstraints creates the idempotent partial unique indexes:
//   - at most one open register system-wide;
//   - at most one settlement movement per (register, order).
func applyConstraints(db *gorm.DB) error {
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_cash_registers_single_open
		   ON cash_registers ((status)) WHERE status = 'open'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_movements_register_order
		   ON movements (register_id, order_id) WHERE order_id IS NOT NULL`,
	}
	for _, s := range stmts {
		if err := db.Exec(s).Error; err != nil {
			return err
		}
	}
	return nil
}
