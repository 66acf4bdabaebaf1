package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCart_WithDoesNotMutateReceiver(t *testing.T) {
	cart := Cart{101: 2}

	next := cart.With(102, 3)

	assert.Equal(t, Cart{101: 2}, cart)
	assert.Equal(t, Cart{101: 2, 102: 3}, next)
}

func TestCart_WithoutIsIdempotent(t *testing.T) {
	cart := Cart{101: 2, 102: 1}

	next := cart.Without(102).Without(102)

	assert.Equal(t, Cart{101: 2}, next)
	assert.Len(t, cart, 2)
}

func TestCart_IDsAscending(t *testing.T) {
	cart := Cart{402: 1, 101: 1, 301: 4}

	assert.Equal(t, []int64{101, 301, 402}, cart.IDs())
	assert.Equal(t, 6, cart.TotalUnits())
}

func TestCart_Empty(t *testing.T) {
	var cart Cart

	assert.True(t, cart.IsEmpty())
	assert.Equal(t, 0, cart.Quantity(101))
	assert.Empty(t, cart.IDs())
	assert.Equal(t, Cart{101: 1}, cart.With(101, 1))
}
