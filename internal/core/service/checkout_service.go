package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/pricing"
	"github.com/rl1809/storefront/internal/port"
)

const (
	msgCheckoutSuccess = "Checkout successful!"
	msgCheckoutError   = "Error during checkout."
	msgEmptyCart       = "Your cart is empty."
	msgInvalidLine     = "Invalid item or quantity."
)

type CheckoutService struct {
	inventory  port.InventoryRepository
	events     *EventDispatcher
	feePerUnit decimal.Decimal
}

// NewCheckoutService builds the service. events may be nil.
func NewCheckoutService(inventory port.InventoryRepository, events *EventDispatcher, feePerUnit decimal.Decimal) *CheckoutService {
	return &CheckoutService{
		inventory:  inventory,
		events:     events,
		feePerUnit: feePerUnit,
	}
}

// Preview prices the cart for the confirmation step. It has no side effects.
func (s *CheckoutService) Preview(ctx context.Context, cart domain.Cart) (pricing.Quote, error) {
	if cart.IsEmpty() {
		return pricing.Quote{}, ErrEmptyCart
	}

	items, err := s.inventory.GetItems(ctx, cart.IDs())
	if err != nil {
		return pricing.Quote{}, fmt.Errorf("get items: %w", err)
	}
	return pricing.NewQuote(cart, items, s.feePerUnit), nil
}

// Checkout converts the cart into sold units in one transaction. Lines are
// processed in ascending item id; the first line that cannot be fulfilled
// aborts the whole attempt and nothing is written.
func (s *CheckoutService) Checkout(ctx context.Context, cart domain.Cart) (domain.CheckoutResult, error) {
	result := domain.CheckoutResult{
		ID:    uuid.NewString(),
		Total: decimal.Zero,
	}
	if cart.IsEmpty() {
		result.Message = msgEmptyCart
		return result, ErrEmptyCart
	}
	for _, id := range cart.IDs() {
		if id < 1 || cart.Quantity(id) < 1 {
			result.FailingItemID = id
			result.Message = msgInvalidLine
			return result, fmt.Errorf("item %d quantity %d: %w", id, cart.Quantity(id), ErrInvalidQuantity)
		}
	}

	var lines []domain.CheckoutLine
	err := s.inventory.WithinTx(ctx, func(tx port.InventoryRepository) error {
		lines = lines[:0]
		for _, id := range cart.IDs() {
			qty := cart.Quantity(id)

			item, err := tx.GetItem(ctx, id)
			if err != nil {
				return fmt.Errorf("get item %d: %w", id, err)
			}
			if item == nil {
				return &CheckoutError{ItemID: id, Reason: ErrItemNotFound}
			}

			available := item.Available()
			if available < qty {
				return shortfall(item, available, qty)
			}

			if err := tx.IncreaseSold(ctx, id, qty); err != nil {
				switch {
				case errors.Is(err, port.ErrInsufficientStock):
					// sold moved between our read and the write
					return shortfall(item, available, qty)
				case errors.Is(err, port.ErrItemNotFound):
					return &CheckoutError{ItemID: id, ItemName: item.Name, Reason: ErrItemNotFound}
				}
				return fmt.Errorf("increase sold %d: %w", id, err)
			}

			lines = append(lines, domain.CheckoutLine{
				ItemID:   id,
				Name:     item.Name,
				Quantity: qty,
				Subtotal: pricing.LineTotal(item.UnitPrice, qty),
			})
		}
		return nil
	})

	if err != nil {
		var cerr *CheckoutError
		if errors.As(err, &cerr) {
			result.FailingItemID = cerr.ItemID
			result.FailingItemName = cerr.ItemName
			result.Shortfall = cerr.Shortfall
			result.Message = checkoutMessage(cerr)
			return result, cerr
		}

		slog.Error("checkout transaction failed", "checkout_id", result.ID, "err", err)
		result.Message = msgCheckoutError
		return result, fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
	}

	units := 0
	for _, line := range lines {
		result.Total = result.Total.Add(line.Subtotal)
		units += line.Quantity
	}
	result.Total = result.Total.Add(pricing.Shipping(units, s.feePerUnit))
	result.Success = true
	result.Lines = lines
	result.Message = msgCheckoutSuccess

	s.publish(result)
	return result, nil
}

func (s *CheckoutService) publish(result domain.CheckoutResult) {
	if s.events == nil {
		return
	}

	evt := domain.Event{
		ID:         result.ID,
		Type:       domain.EventCheckoutCompleted,
		Total:      result.Total,
		OccurredAt: time.Now().UTC(),
	}
	for _, line := range result.Lines {
		evt.Lines = append(evt.Lines, domain.EventLine{ItemID: line.ItemID, Quantity: line.Quantity})
	}
	s.events.Enqueue(evt)
}

func shortfall(item *domain.Item, available, requested int) *CheckoutError {
	return &CheckoutError{
		ItemID:    item.ID,
		ItemName:  item.Name,
		Available: available,
		Shortfall: requested - available,
		Reason:    ErrStockExceeded,
	}
}

func checkoutMessage(err *CheckoutError) string {
	if errors.Is(err.Reason, ErrStockExceeded) {
		return fmt.Sprintf("%s only has %d left.", err.ItemName, max(0, err.Available))
	}
	return fmt.Sprintf("Item %d is no longer available.", err.ItemID)
}
