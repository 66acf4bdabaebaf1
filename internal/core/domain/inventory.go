package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// MaxUnits bounds the bought and sold counters; they are INT columns.
const MaxUnits = math.MaxInt32

type Item struct {
	ID          int64           `db:"id"`
	Name        string          `db:"item_name"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	Color       string          `db:"color"`
	Description string          `db:"description"`
	Image       string          `db:"image"`
	Bought      int             `db:"qty_initial_bought"`
	Sold        int             `db:"qty_sold"`
}

// Available is the number of units that can still be sold.
func (i Item) Available() int {
	return i.Bought - i.Sold
}

func (i Item) Revenue() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Sold)))
}

type StockReport struct {
	ID      int64           `json:"id"`
	Name    string          `json:"item_name"`
	Bought  int             `json:"qty_bought"`
	Sold    int             `json:"qty_sold"`
	Stock   int             `json:"qty_stock"`
	Revenue decimal.Decimal `json:"revenue"`
}

func NewStockReport(item Item) StockReport {
	return StockReport{
		ID:      item.ID,
		Name:    item.Name,
		Bought:  item.Bought,
		Sold:    item.Sold,
		Stock:   item.Available(),
		Revenue: item.Revenue(),
	}
}
