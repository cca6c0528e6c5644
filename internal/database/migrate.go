package database

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/forkful/backend/internal/logging"
	"github.com/pageza/forkful/backend/internal/models"
	"github.com/pageza/forkful/backend/migrations"
)

// AllModels lists every table, parents before children
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Follow{},
		&models.Recipe{},
		&models.SavedRecipe{},
		&models.Rating{},
		&models.Comment{},
	}
}

// RunMigrations brings the schema up to date. SQLite uses GORM auto-migration;
// PostgreSQL applies the embedded SQL files not yet recorded in schema_migrations.
func RunMigrations(db *gorm.DB) error {
	if db.Dialector.Name() == "sqlite" {
		logging.Info().Msg("using GORM auto-migration for SQLite")
		return db.AutoMigrate(AllModels()...)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	files, err := MigrationFiles(migrations.FS)
	if err != nil {
		return err
	}

	for _, name := range files {
		var count int64
		if err := db.Table("schema_migrations").Where("name = ?", name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if count > 0 {
			logging.Debug().Str("migration", name).Msg("skipping migration (already applied)")
			continue
		}

		content, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(content)).Error; err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", name, err)
			}
			return tx.Exec("INSERT INTO schema_migrations (name) VALUES (?)", name).Error
		})
		if err != nil {
			return err
		}

		logging.Info().Str("migration", name).Msg("applied migration")
	}

	return nil
}

// MigrationFiles returns the forward migration files in apply order
func MigrationFiles(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") || strings.HasSuffix(name, "_rollback.sql") {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

// RollbackFile names the file that undoes migration name
func RollbackFile(name string) string {
	return strings.TrimSuffix(name, ".sql") + "_rollback.sql"
}
