package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// MigrationURL converts a driver DSN into the database URL golang-migrate expects.
func MigrationURL(driver, dsn string) (string, error) {
	switch driver {
	case DriverMySQL:
		return "mysql://" + dsn, nil
	case DriverPostgres:
		for _, scheme := range []string{"postgres://", "postgresql://"} {
			if strings.HasPrefix(dsn, scheme) {
				return "pgx5://" + strings.TrimPrefix(dsn, scheme), nil
			}
		}
		return "", fmt.Errorf("postgres dsn must be a URL, got %q", dsn)
	}
	return "", fmt.Errorf("driver %q has no migrations", driver)
}

// MigrateUp applies every pending migration in dir/<driver>.
func MigrateUp(dir, driver, dsn string) error {
	dbURL, err := MigrationURL(driver, dsn)
	if err != nil {
		return err
	}

	m, err := migrate.New(fmt.Sprintf("file://%s/%s", strings.TrimSuffix(dir, "/"), driver), dbURL)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		slog.Info("no change in migration", "driver", driver)
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}

	version, _, _ := m.Version()
	slog.Info("migrated up", "driver", driver, "version", version)
	return nil
}
