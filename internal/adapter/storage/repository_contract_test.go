package storage

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// Ids in this range are owned by the tests and removed before each run.
const (
	contractItemA int64 = 900001
	contractItemB int64 = 900002
)

var errAbort = errors.New("abort")

func contractItems() []domain.Item {
	return []domain.Item{
		{ID: contractItemA, Name: "Contract Gown", UnitPrice: decimal.RequireFromString("5500.00"), Color: "Red", Bought: 10},
		{ID: contractItemB, Name: "Contract Scarf", UnitPrice: decimal.RequireFromString("1500.50"), Bought: 5, Sold: 2},
	}
}

// runRepositoryContract checks the behaviour every InventoryRepository shares.
func runRepositoryContract(t *testing.T, repo port.InventoryRepository) {
	ctx := context.Background()

	for _, item := range contractItems() {
		inserted, err := repo.InsertItem(ctx, item)
		if err != nil {
			t.Fatalf("InsertItem failed: %v", err)
		}
		if !inserted {
			t.Fatalf("expected item %d to be inserted", item.ID)
		}
	}

	t.Run("InsertIgnoresExisting", func(t *testing.T) {
		inserted, err := repo.InsertItem(ctx, domain.Item{ID: contractItemA, Name: "Other", Bought: 1})
		if err != nil {
			t.Fatalf("InsertItem failed: %v", err)
		}
		if inserted {
			t.Error("expected duplicate insert to be ignored")
		}
	})

	t.Run("GetItem", func(t *testing.T) {
		item, err := repo.GetItem(ctx, contractItemB)
		if err != nil {
			t.Fatalf("GetItem failed: %v", err)
		}
		if item == nil {
			t.Fatal("expected item, got nil")
		}
		if item.Name != "Contract Scarf" {
			t.Errorf("expected name 'Contract Scarf', got %s", item.Name)
		}
		if !item.UnitPrice.Equal(decimal.RequireFromString("1500.50")) {
			t.Errorf("expected price 1500.50, got %s", item.UnitPrice)
		}
		if item.Available() != 3 {
			t.Errorf("expected available 3, got %d", item.Available())
		}
	})

	t.Run("GetItem_NotFound", func(t *testing.T) {
		item, err := repo.GetItem(ctx, 999999)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item != nil {
			t.Error("expected nil for nonexistent item")
		}
	})

	t.Run("GetItems_SkipsMissing", func(t *testing.T) {
		items, err := repo.GetItems(ctx, []int64{contractItemB, 999999, contractItemA})
		if err != nil {
			t.Fatalf("GetItems failed: %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}
		if items[0].ID != contractItemA || items[1].ID != contractItemB {
			t.Errorf("expected ascending ids, got %d, %d", items[0].ID, items[1].ID)
		}
	})

	t.Run("IncreaseBought", func(t *testing.T) {
		if err := repo.IncreaseBought(ctx, contractItemB, 5); err != nil {
			t.Fatalf("IncreaseBought failed: %v", err)
		}
		item, _ := repo.GetItem(ctx, contractItemB)
		if item.Bought != 10 {
			t.Errorf("expected bought 10, got %d", item.Bought)
		}
		if err := repo.IncreaseBought(ctx, 999999, 1); !errors.Is(err, port.ErrItemNotFound) {
			t.Errorf("expected ErrItemNotFound, got: %v", err)
		}
	})

	t.Run("IncreaseBought_Bounded", func(t *testing.T) {
		for _, delta := range []int{domain.MaxUnits, math.MaxInt} {
			if err := repo.IncreaseBought(ctx, contractItemB, delta); !errors.Is(err, port.ErrCounterOverflow) {
				t.Errorf("delta %d: expected ErrCounterOverflow, got: %v", delta, err)
			}
		}
		item, _ := repo.GetItem(ctx, contractItemB)
		if item.Bought != 10 {
			t.Errorf("expected bought to stay 10, got %d", item.Bought)
		}
	})

	t.Run("IncreaseSold_Guarded", func(t *testing.T) {
		if err := repo.IncreaseSold(ctx, contractItemA, 4); err != nil {
			t.Fatalf("IncreaseSold failed: %v", err)
		}
		if err := repo.IncreaseSold(ctx, contractItemA, 7); !errors.Is(err, port.ErrInsufficientStock) {
			t.Errorf("expected ErrInsufficientStock, got: %v", err)
		}
		if err := repo.IncreaseSold(ctx, 999999, 1); !errors.Is(err, port.ErrItemNotFound) {
			t.Errorf("expected ErrItemNotFound, got: %v", err)
		}

		item, _ := repo.GetItem(ctx, contractItemA)
		if item.Sold != 4 {
			t.Errorf("expected sold 4, got %d", item.Sold)
		}
		if item.Sold > item.Bought {
			t.Errorf("sold %d exceeds bought %d", item.Sold, item.Bought)
		}
	})

	t.Run("WithinTx_Rollback", func(t *testing.T) {
		err := repo.WithinTx(ctx, func(tx port.InventoryRepository) error {
			if err := tx.IncreaseSold(ctx, contractItemA, 1); err != nil {
				return err
			}
			item, err := tx.GetItem(ctx, contractItemA)
			if err != nil {
				return err
			}
			if item.Sold != 5 {
				t.Errorf("expected sold 5 inside tx, got %d", item.Sold)
			}
			return errAbort
		})
		if !errors.Is(err, errAbort) {
			t.Fatalf("expected errAbort, got: %v", err)
		}

		item, _ := repo.GetItem(ctx, contractItemA)
		if item.Sold != 4 {
			t.Errorf("expected sold 4 after rollback, got %d", item.Sold)
		}
	})

	t.Run("WithinTx_Commit", func(t *testing.T) {
		err := repo.WithinTx(ctx, func(tx port.InventoryRepository) error {
			if err := tx.IncreaseSold(ctx, contractItemA, 1); err != nil {
				return err
			}
			return tx.IncreaseSold(ctx, contractItemB, 1)
		})
		if err != nil {
			t.Fatalf("WithinTx failed: %v", err)
		}

		items, _ := repo.GetItems(ctx, []int64{contractItemA, contractItemB})
		if items[0].Sold != 5 || items[1].Sold != 3 {
			t.Errorf("expected sold 5 and 3, got %d and %d", items[0].Sold, items[1].Sold)
		}
	})

	t.Run("ListItems_Ordered", func(t *testing.T) {
		items, err := repo.ListItems(ctx)
		if err != nil {
			t.Fatalf("ListItems failed: %v", err)
		}
		for i := 1; i < len(items); i++ {
			if items[i-1].ID >= items[i].ID {
				t.Fatalf("items not ordered by id at %d", i)
			}
		}
	})
}
