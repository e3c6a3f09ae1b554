package db

import (
	"errors"
	"fmt"

	"github.com/diewo77/go-orders/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/gorm"
)

// MigrationsSource is where the versioned SQL migrations live.
const MigrationsSource = "file://migrations"

// AutoMigrate creates or updates the schema from the GORM models.
// Used for SQLite and for development databases.
func AutoMigrate(conn *gorm.DB) error {
	for _, m := range models.All() {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// MigrateSQL applies the versioned SQL migrations to a PostgreSQL database.
// databaseURL must be a postgres:// URL.
func MigrateSQL(databaseURL string) error {
	m, err := migrate.New(MigrationsSource, databaseURL)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// CheckSchema verifies the core tables exist after migration.
func CheckSchema(conn *gorm.DB) error {
	for _, m := range models.All() {
		if !conn.Migrator().HasTable(m) {
			return fmt.Errorf("missing table for %T after migration", m)
		}
	}
	return nil
}
