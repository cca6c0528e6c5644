package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	_ "github.com/lib/pq"

	"github.com/pageza/forkful/backend/config"
	"github.com/pageza/forkful/backend/internal/database"
	"github.com/pageza/forkful/backend/internal/logging"
	"github.com/pageza/forkful/backend/migrations"
)

const createMigrationsTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE,
		applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	flag.Parse()

	logging.Init(logging.Config{Level: os.Getenv("LOG_LEVEL"), Format: config.GetEnvironment().DefaultLogFormat()})

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			logging.Fatal().Err(err).Msg("DATABASE_URL is not set and configuration is invalid")
		}
		dsn = cfg.DSN()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if _, err := db.Exec(createMigrationsTable); err != nil {
		logging.Fatal().Err(err).Msg("failed to create migrations table")
	}

	if *rollback {
		name, err := rollbackLast(db)
		if err != nil {
			logging.Fatal().Err(err).Msg("rollback failed")
		}
		logging.Info().Str("migration", name).Msg("rolled back migration")
		return
	}

	applied, err := applyPending(db)
	if err != nil {
		logging.Fatal().Err(err).Msg("migration failed")
	}
	logging.Info().Int("applied", applied).Msg("all migrations applied")
}

func applyPending(db *sql.DB) (int, error) {
	files, err := database.MigrationFiles(migrations.FS)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, name := range files {
		var exists bool
		if err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)", name).Scan(&exists); err != nil {
			return applied, fmt.Errorf("failed to check migration status: %w", err)
		}
		if exists {
			logging.Debug().Str("migration", name).Msg("already applied")
			continue
		}

		content, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return applied, fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if err := inTx(db, string(content), "INSERT INTO schema_migrations (name) VALUES ($1)", name); err != nil {
			return applied, fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
		logging.Info().Str("migration", name).Msg("applied migration")
		applied++
	}
	return applied, nil
}

func rollbackLast(db *sql.DB) (string, error) {
	var name string
	err := db.QueryRow("SELECT name FROM schema_migrations ORDER BY applied_at DESC, id DESC LIMIT 1").Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.New("no migrations to rollback")
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last migration: %w", err)
	}

	content, err := fs.ReadFile(migrations.FS, database.RollbackFile(name))
	if err != nil {
		return "", fmt.Errorf("rollback file not found for %s: %w", name, err)
	}
	if err := inTx(db, string(content), "DELETE FROM schema_migrations WHERE name = $1", name); err != nil {
		return "", err
	}
	return name, nil
}

// inTx runs script and the bookkeeping statement in one transaction
func inTx(db *sql.DB, script, record, name string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	if _, err := tx.Exec(script); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec(record, name); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return tx.Commit()
}
