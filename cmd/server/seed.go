package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/pricing"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/port"
)

// catalogEntry mirrors a row of the seed file. Prices may be formatted
// strings such as "₱5,500.00".
type catalogEntry struct {
	ID          int64  `json:"id"`
	Name        string `json:"item_name"`
	UnitPrice   string `json:"unit_price"`
	Color       string `json:"color"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Bought      int    `json:"qty_initial_bought"`
	Sold        int    `json:"qty_sold"`
}

func seedCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "seed [catalog.json]",
		Short: "insert catalog items that are not in the store yet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *cfg, args[0])
		},
	}
}

var errVolatileStore = errors.New("the memory store does not outlive this command; use serve --seed instead")

func runSeed(ctx context.Context, cfg config.Config, path string) error {
	if cfg.Driver == storage.DriverMemory {
		return errVolatileStore
	}

	inventory, closeStore, err := openInventory(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	return seedCatalog(ctx, inventory, path)
}

// seedCatalog loads the catalog file at path into inventory.
func seedCatalog(ctx context.Context, inventory port.InventoryRepository, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	items, err := readCatalog(f)
	if err != nil {
		return err
	}

	inserted, err := service.NewInventoryService(inventory, nil).Seed(ctx, items)
	if err != nil {
		return err
	}
	slog.Info("seeded catalog", "path", path, "inserted", inserted, "skipped", len(items)-inserted)
	return nil
}

func readCatalog(r io.Reader) ([]domain.Item, error) {
	var entries []catalogEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	items := make([]domain.Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, domain.Item{
			ID:          e.ID,
			Name:        e.Name,
			UnitPrice:   pricing.NormalizePrice(e.UnitPrice),
			Color:       e.Color,
			Description: e.Description,
			Image:       e.Image,
			Bought:      e.Bought,
			Sold:        e.Sold,
		})
	}
	return items, nil
}
