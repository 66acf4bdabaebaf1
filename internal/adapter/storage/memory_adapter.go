package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// MemoryAdapter keeps inventory in process. Transactions hold the lock for
// their whole duration and work on a copy that replaces the live map on
// commit.
type MemoryAdapter struct {
	mu    *sync.Mutex
	items map[int64]domain.Item
	tx    bool
}

func NewMemoryAdapter(items ...domain.Item) *MemoryAdapter {
	m := &MemoryAdapter{
		mu:    &sync.Mutex{},
		items: make(map[int64]domain.Item, len(items)),
	}
	for _, item := range items {
		m.items[item.ID] = item
	}
	return m
}

func (m *MemoryAdapter) lock() func() {
	if m.tx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *MemoryAdapter) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	defer m.lock()()

	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (m *MemoryAdapter) GetItems(ctx context.Context, ids []int64) ([]domain.Item, error) {
	defer m.lock()()

	var items []domain.Item
	for _, id := range ids {
		if item, ok := m.items[id]; ok {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *MemoryAdapter) ListItems(ctx context.Context) ([]domain.Item, error) {
	defer m.lock()()

	items := make([]domain.Item, 0, len(m.items))
	for _, item := range m.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *MemoryAdapter) InsertItem(ctx context.Context, item domain.Item) (bool, error) {
	defer m.lock()()

	if _, ok := m.items[item.ID]; ok {
		return false, nil
	}
	m.items[item.ID] = item
	return true, nil
}

func (m *MemoryAdapter) IncreaseBought(ctx context.Context, id int64, delta int) error {
	defer m.lock()()

	item, ok := m.items[id]
	if !ok {
		return port.ErrItemNotFound
	}
	if item.Bought > domain.MaxUnits-delta {
		return port.ErrCounterOverflow
	}
	item.Bought += delta
	m.items[id] = item
	return nil
}

func (m *MemoryAdapter) IncreaseSold(ctx context.Context, id int64, delta int) error {
	defer m.lock()()

	item, ok := m.items[id]
	if !ok {
		return port.ErrItemNotFound
	}
	if item.Sold+delta > item.Bought {
		return port.ErrInsufficientStock
	}
	item.Sold += delta
	m.items[id] = item
	return nil
}

func (m *MemoryAdapter) WithinTx(ctx context.Context, fn func(repo port.InventoryRepository) error) error {
	if m.tx {
		return fn(m)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	work := make(map[int64]domain.Item, len(m.items))
	for id, item := range m.items {
		work[id] = item
	}

	if err := fn(&MemoryAdapter{mu: m.mu, items: work, tx: true}); err != nil {
		return err
	}

	m.items = work
	return nil
}
