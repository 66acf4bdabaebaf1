package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
)

func TestReadCatalog(t *testing.T) {
	items, err := readCatalog(strings.NewReader(`[
		{"id": 103, "item_name": "Little Black Dress", "unit_price": "₱2,700.00", "qty_initial_bought": 10},
		{"id": 104, "item_name": "Scarf", "unit_price": "n/a", "qty_initial_bought": 3, "qty_sold": 1}
	]`))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.True(t, items[0].UnitPrice.Equal(decimal.NewFromInt(2700)))
	assert.Equal(t, 10, items[0].Available())
	assert.True(t, items[1].UnitPrice.IsZero())
	assert.Equal(t, 2, items[1].Available())
}

func TestReadCatalog_SeedFile(t *testing.T) {
	f, err := os.Open("../../seed/catalog.json")
	require.NoError(t, err)
	defer f.Close()

	items, err := readCatalog(f)
	require.NoError(t, err)
	assert.Len(t, items, 13)
	for _, item := range items {
		assert.True(t, item.UnitPrice.IsPositive(), "item %d", item.ID)
	}
}

func TestReadCatalog_Malformed(t *testing.T) {
	_, err := readCatalog(strings.NewReader(`{"id": 1}`))
	assert.Error(t, err)
}

func TestCreateMigration(t *testing.T) {
	root := t.TempDir()

	files, err := createMigration(root, "add_sku", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, files, 4)
	assert.FileExists(t, filepath.Join(root, "mysql", "20240301120000_add_sku.up.sql"))
	assert.FileExists(t, filepath.Join(root, "postgres", "20240301120000_add_sku.down.sql"))
}

func TestOpenSeededInventory_MemoryStoreServesCatalog(t *testing.T) {
	cfg := config.Default
	cfg.Driver = storage.DriverMemory
	cfg.SeedCatalog = "../../seed/catalog.json"

	inventory, closeStore, err := openSeededInventory(context.Background(), cfg)
	require.NoError(t, err)
	defer closeStore()

	items, err := inventory.ListItems(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 13)

	item, err := inventory.GetItem(context.Background(), 103)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(2700)))
}

func TestOpenSeededInventory_MissingCatalog(t *testing.T) {
	cfg := config.Default
	cfg.Driver = storage.DriverMemory
	cfg.SeedCatalog = filepath.Join(t.TempDir(), "missing.json")

	_, _, err := openSeededInventory(context.Background(), cfg)
	assert.Error(t, err)
}

func TestRunSeed_RejectsMemoryStore(t *testing.T) {
	cfg := config.Default
	cfg.Driver = storage.DriverMemory

	err := runSeed(context.Background(), cfg, "../../seed/catalog.json")
	assert.ErrorIs(t, err, errVolatileStore)
}
