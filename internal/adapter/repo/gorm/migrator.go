package gormrepo

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"gorm.io/gorm"

	"skirmish/migrations"
)

const createSchemaMigrations = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// ApplyMigrations runs the files under dir that schema_migrations does not
// list yet. Each file and its bookkeeping row share one transaction.
func ApplyMigrations(ctx context.Context, db *gorm.DB, fsys fs.FS, dir string) error {
	db = db.WithContext(ctx)
	if err := db.Exec(createSchemaMigrations).Error; err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	pending, err := migrations.Pending(fsys, dir, func(version string) (bool, error) {
		var count int64
		err := db.Table("schema_migrations").Where("version = ?", version).Count(&count).Error
		return count > 0, err
	})
	if err != nil {
		return err
	}
	for _, m := range pending {
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(m.SQL).Error; err != nil {
				return fmt.Errorf("apply migration %s: %w", m.Version, err)
			}
			return tx.Exec(`INSERT INTO schema_migrations(version, applied_at) VALUES (?, ?)`, m.Version, time.Now()).Error
		})
		if err != nil {
			return err
		}
	}
	return nil
}
