package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
)

const versionTimeFormat = "20060102150405"

func migrateUpCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-up",
		Short: "migrate all the way up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.MigrateUp(cfg.MigrationsDir, cfg.Driver, cfg.DSN())
		},
	}
}

func createMigrationCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-create [name]",
		Short: "create empty sql migrations for every driver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := createMigration(cfg.MigrationsDir, args[0], time.Now())
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), "Created SQL script:", f)
			}
			return nil
		},
	}
}

func createMigration(root, name string, now time.Time) ([]string, error) {
	version := now.UTC().Format(versionTimeFormat)

	var created []string
	for _, driver := range []string{storage.DriverMySQL, storage.DriverPostgres} {
		dir := filepath.Join(root, driver)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return created, fmt.Errorf("create %s: %w", dir, err)
		}
		for _, direction := range []string{"up", "down"} {
			path := filepath.Join(dir, fmt.Sprintf("%s_%s.%s.sql", version, name, direction))
			if err := os.WriteFile(path, []byte{}, 0o644); err != nil {
				return created, fmt.Errorf("write %s: %w", path, err)
			}
			created = append(created, path)
		}
	}
	return created, nil
}
