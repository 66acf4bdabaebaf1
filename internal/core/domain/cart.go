package domain

import "sort"

// Cart maps item id to the quantity the shopper wants. Values are treated as
// immutable: With and Without return modified copies.
type Cart map[int64]int

func (c Cart) Quantity(itemID int64) int {
	return c[itemID]
}

func (c Cart) IsEmpty() bool {
	return len(c) == 0
}

func (c Cart) TotalUnits() int {
	total := 0
	for _, qty := range c {
		total += qty
	}
	return total
}

// IDs returns the item ids in ascending order.
func (c Cart) IDs() []int64 {
	ids := make([]int64, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for id, qty := range c {
		out[id] = qty
	}
	return out
}

func (c Cart) With(itemID int64, quantity int) Cart {
	out := c.Clone()
	out[itemID] = quantity
	return out
}

func (c Cart) Without(itemID int64) Cart {
	out := c.Clone()
	delete(out, itemID)
	return out
}
