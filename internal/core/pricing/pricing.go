// Package pricing turns a cart and the matching inventory rows into line
// totals, shipping and a grand total.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
)

// NormalizePrice parses a display-formatted price such as "₱2,700.00" by
// keeping only digits and the decimal point. Empty or unparsable input yields
// zero.
func NormalizePrice(raw string) decimal.Decimal {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}

	price, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	return price
}

type Line struct {
	ItemID    int64           `json:"id"`
	Name      string          `json:"item_name"`
	Image     string          `json:"image,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"total"`
	Available int             `json:"current_stock"`
}

type Quote struct {
	Lines      []Line          `json:"cart_items"`
	Missing    []int64         `json:"missing_items,omitempty"`
	TotalUnits int             `json:"total_cart_items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Shipping   decimal.Decimal `json:"shipping"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// NewQuote prices every cart entry that has an inventory row. Quantities are
// reported as stored; stock is only enforced when the cart is written.
func NewQuote(cart domain.Cart, items []domain.Item, feePerUnit decimal.Decimal) Quote {
	byID := make(map[int64]domain.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	q := Quote{
		Lines:    []Line{},
		Subtotal: decimal.Zero,
	}
	for _, id := range cart.IDs() {
		item, ok := byID[id]
		if !ok {
			q.Missing = append(q.Missing, id)
			continue
		}
		qty := cart.Quantity(id)
		subtotal := LineTotal(item.UnitPrice, qty)
		q.Lines = append(q.Lines, Line{
			ItemID:    item.ID,
			Name:      item.Name,
			Image:     item.Image,
			UnitPrice: item.UnitPrice,
			Quantity:  qty,
			Subtotal:  subtotal,
			Available: item.Available(),
		})
		q.Subtotal = q.Subtotal.Add(subtotal)
		q.TotalUnits += qty
	}

	q.Shipping = Shipping(q.TotalUnits, feePerUnit)
	q.GrandTotal = q.Subtotal.Add(q.Shipping)
	return q
}

func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Shipping is a flat fee per unit.
func Shipping(totalUnits int, feePerUnit decimal.Decimal) decimal.Decimal {
	return feePerUnit.Mul(decimal.NewFromInt(int64(totalUnits)))
}
