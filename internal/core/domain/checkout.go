package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CheckoutLine struct {
	ItemID   int64           `json:"item_id"`
	Name     string          `json:"item_name"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CheckoutResult struct {
	ID              string          `json:"id"`
	Success         bool            `json:"success"`
	FailingItemID   int64           `json:"failing_item_id,omitempty"`
	FailingItemName string          `json:"failing_item_name,omitempty"`
	Shortfall       int             `json:"shortfall,omitempty"`
	Message         string          `json:"message"`
	Lines           []CheckoutLine  `json:"lines,omitempty"`
	Total           decimal.Decimal `json:"total"`
}

type EventType string

const (
	EventCheckoutCompleted EventType = "checkout.completed"
	EventInventoryRestock  EventType = "inventory.restocked"
)

type EventLine struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

type Event struct {
	ID         string          `json:"id"`
	Type       EventType       `json:"type"`
	Lines      []EventLine     `json:"lines"`
	Total      decimal.Decimal `json:"total"`
	OccurredAt time.Time       `json:"occurred_at"`
}
