package service

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/pricing"
	"github.com/rl1809/storefront/internal/port"
)

// CartService applies cart mutations against current stock. It never stores
// the cart; callers persist the returned value.
type CartService struct {
	inventory  port.InventoryRepository
	feePerUnit decimal.Decimal
}

func NewCartService(inventory port.InventoryRepository, feePerUnit decimal.Decimal) *CartService {
	return &CartService{
		inventory:  inventory,
		feePerUnit: feePerUnit,
	}
}

// AddItem increases the quantity of itemID by quantity. On any error the
// original cart is returned.
func (s *CartService) AddItem(ctx context.Context, cart domain.Cart, itemID int64, quantity int) (domain.Cart, *domain.Item, error) {
	if itemID < 1 {
		return cart, nil, ErrInvalidItem
	}
	if quantity < 1 {
		return cart, nil, ErrInvalidQuantity
	}

	item, err := s.lookup(ctx, itemID)
	if err != nil {
		return cart, nil, err
	}

	inCart := cart.Quantity(itemID)
	remaining := max(0, item.Available()-inCart)
	if quantity > remaining {
		return cart, item, &StockError{
			Item:      *item,
			Requested: addCapped(inCart, quantity),
			Remaining: remaining,
		}
	}

	return cart.With(itemID, inCart+quantity), item, nil
}

// SetItem overwrites the quantity of itemID. A quantity of zero or less
// removes the entry.
func (s *CartService) SetItem(ctx context.Context, cart domain.Cart, itemID int64, quantity int) (domain.Cart, error) {
	if itemID < 1 {
		return cart, ErrInvalidItem
	}
	if quantity <= 0 {
		return cart.Without(itemID), nil
	}

	item, err := s.lookup(ctx, itemID)
	if err != nil {
		return cart, err
	}

	if quantity > item.Available() {
		return cart, &StockError{
			Item:      *item,
			Requested: quantity,
			Remaining: max(0, item.Available()),
		}
	}

	return cart.With(itemID, quantity), nil
}

func (s *CartService) Clear() domain.Cart {
	return domain.Cart{}
}

func (s *CartService) View(ctx context.Context, cart domain.Cart) (pricing.Quote, error) {
	if cart.IsEmpty() {
		return pricing.NewQuote(cart, nil, s.feePerUnit), nil
	}

	items, err := s.inventory.GetItems(ctx, cart.IDs())
	if err != nil {
		return pricing.Quote{}, fmt.Errorf("get items: %w", err)
	}

	return pricing.NewQuote(cart, items, s.feePerUnit), nil
}

func (s *CartService) lookup(ctx context.Context, itemID int64) (*domain.Item, error) {
	item, err := s.inventory.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get item %d: %w", itemID, err)
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	return item, nil
}

// addCapped adds two non-negative counts, saturating at math.MaxInt.
func addCapped(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}
