package service

import (
	"errors"
	"fmt"

	"github.com/rl1809/storefront/internal/core/domain"
)

var (
	ErrInvalidItem     = errors.New("invalid item")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrItemNotFound    = errors.New("item not found")
	ErrStockExceeded   = errors.New("stock exceeded")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrCheckoutFailed  = errors.New("checkout failed")
)

// StockError is returned when a cart write asks for more than is available.
// Remaining is how many more units the shopper may still add.
type StockError struct {
	Item      domain.Item
	Requested int
	Remaining int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("stock exceeded for item %d: requested %d, %d remaining", e.Item.ID, e.Requested, e.Remaining)
}

func (e *StockError) Unwrap() error {
	return ErrStockExceeded
}

// CheckoutError describes the line that aborted a checkout.
type CheckoutError struct {
	ItemID    int64
	ItemName  string
	Available int
	Shortfall int
	Reason    error
}

func (e *CheckoutError) Error() string {
	if errors.Is(e.Reason, ErrStockExceeded) {
		return fmt.Sprintf("checkout failed: item %d short by %d", e.ItemID, e.Shortfall)
	}
	return fmt.Sprintf("checkout failed: item %d: %v", e.ItemID, e.Reason)
}

func (e *CheckoutError) Unwrap() []error {
	return []error{ErrCheckoutFailed, e.Reason}
}
