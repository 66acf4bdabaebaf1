package port

import (
	"context"
	"errors"

	"github.com/rl1809/storefront/internal/core/domain"
)

var (
	ErrItemNotFound      = errors.New("item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCounterOverflow   = errors.New("counter out of range")
)

type InventoryRepository interface {
	// GetItem returns nil without error when the item does not exist
	GetItem(ctx context.Context, id int64) (*domain.Item, error)

	// GetItems returns the items that exist; missing ids are simply absent
	GetItems(ctx context.Context, ids []int64) ([]domain.Item, error)

	// ListItems returns every item ordered by id
	ListItems(ctx context.Context) ([]domain.Item, error)

	// InsertItem inserts the item unless its id is taken, reports whether a row was written
	InsertItem(ctx context.Context, item domain.Item) (bool, error)

	// IncreaseBought adds delta to the bought counter (restock), refusing to
	// push it past domain.MaxUnits
	IncreaseBought(ctx context.Context, id int64, delta int) error

	// IncreaseSold adds delta to the sold counter, refusing to push sold past bought
	IncreaseSold(ctx context.Context, id int64, delta int) error

	// WithinTx runs fn against a repository bound to one transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(repo InventoryRepository) error) error
}
