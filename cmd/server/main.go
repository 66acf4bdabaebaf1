package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rl1809/storefront/internal/config"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:           "storefront",
		Short:         "storefront catalog, cart and checkout server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.Driver, "driver", cfg.Driver, "inventory store: mysql, postgres or memory")
	flags.StringVar(&cfg.MySQLDSN, "mysql-dsn", cfg.MySQLDSN, "MySQL data source name")
	flags.StringVar(&cfg.PostgresDSN, "postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection URL")
	flags.StringVar(&cfg.MigrationsDir, "migrations", cfg.MigrationsDir, "migrations root directory")
	flags.StringVar(&cfg.SeedCatalog, "seed", cfg.SeedCatalog, "catalog file loaded when serve starts")

	rootCmd.AddCommand(
		serveCommand(&cfg),
		migrateUpCommand(&cfg),
		createMigrationCommand(&cfg),
		seedCommand(&cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}
