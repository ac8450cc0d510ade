package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Waesta/Wapos-sub001/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx, migrates the tables
// this service owns, then applies the idempotent SQL patches GORM cannot
// express. The sales/sale_payments/sale_voids tables belong to the sales
// engine and are deliberately NOT migrated here — this service only reads them.
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

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates/updates the register tables and applies schema patches.
// Also used by the integration test suite against a throwaway database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.RegisterSession{},
		&model.ReportClosure{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// The partial unique index is the cross-process backstop of the
// one-open-session-per-register invariant: two racing inserts cannot both
// commit an open row for the same register_code.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uni_register_sessions_open
		    ON register_sessions (register_code)
		    WHERE status = 'open'`,
		// Finalized-Z baseline lookup: last reset per register, newest first.
		`CREATE INDEX IF NOT EXISTS idx_report_closures_baseline
		    ON report_closures (register_code, range_end DESC)
		    WHERE closure_type = 'z' AND reset_applied = true`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
