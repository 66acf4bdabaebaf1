package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// InventoryService serves product browsing and the admin stock pages.
type InventoryService struct {
	inventory port.InventoryRepository
	events    *EventDispatcher
}

func NewInventoryService(inventory port.InventoryRepository, events *EventDispatcher) *InventoryService {
	return &InventoryService{
		inventory: inventory,
		events:    events,
	}
}

func (s *InventoryService) ListProducts(ctx context.Context) ([]domain.Item, error) {
	items, err := s.inventory.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (s *InventoryService) GetProduct(ctx context.Context, id int64) (*domain.Item, error) {
	if id < 1 {
		return nil, ErrInvalidItem
	}

	item, err := s.inventory.GetItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item %d: %w", id, err)
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	return item, nil
}

func (s *InventoryService) Report(ctx context.Context) ([]domain.StockReport, error) {
	items, err := s.inventory.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	report := make([]domain.StockReport, 0, len(items))
	for _, item := range items {
		report = append(report, domain.NewStockReport(item))
	}
	return report, nil
}

// Restock adds quantity units to the bought counter of an item.
func (s *InventoryService) Restock(ctx context.Context, id int64, quantity int) error {
	if id < 1 {
		return ErrInvalidItem
	}
	if quantity < 1 || quantity > domain.MaxUnits {
		return ErrInvalidQuantity
	}

	if err := s.inventory.IncreaseBought(ctx, id, quantity); err != nil {
		switch {
		case errors.Is(err, port.ErrItemNotFound):
			return ErrItemNotFound
		case errors.Is(err, port.ErrCounterOverflow):
			return ErrInvalidQuantity
		}
		return fmt.Errorf("increase bought %d: %w", id, err)
	}

	if s.events != nil {
		s.events.Enqueue(domain.Event{
			ID:         uuid.NewString(),
			Type:       domain.EventInventoryRestock,
			Lines:      []domain.EventLine{{ItemID: id, Quantity: quantity}},
			OccurredAt: time.Now().UTC(),
		})
	}
	return nil
}

// Seed inserts catalog items that do not exist yet and returns how many were written.
func (s *InventoryService) Seed(ctx context.Context, items []domain.Item) (int, error) {
	inserted := 0
	for _, item := range items {
		if item.ID < 1 || item.Bought < 0 || item.Sold < 0 || item.Sold > item.Bought || item.Bought > domain.MaxUnits {
			return inserted, fmt.Errorf("item %d: %w", item.ID, ErrInvalidItem)
		}
		ok, err := s.inventory.InsertItem(ctx, item)
		if err != nil {
			return inserted, fmt.Errorf("insert item %d: %w", item.ID, err)
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}
