package entity

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_UpsertReplacesExistingLine(t *testing.T) {
	cart := NewCart(uuid.New())
	itemID := uuid.New()

	cart.Upsert(CartLine{CatalogItemID: itemID, Name: "Soup", Quantity: 2, UnitPrice: 300})
	cart.Upsert(CartLine{CatalogItemID: itemID, Name: "Soup", Quantity: 1, UnitPrice: 350})

	assert.Len(t, cart.Lines, 1)
	line, ok := cart.Line(itemID)
	assert.True(t, ok)
	assert.Equal(t, int64(1), line.Quantity)
	assert.Equal(t, int64(350), line.UnitPrice)
	assert.Equal(t, int64(350), cart.Total())
}

func TestCart_TotalIsDerived(t *testing.T) {
	cart := NewCart(uuid.New())
	cart.Upsert(CartLine{CatalogItemID: uuid.New(), Quantity: 2, UnitPrice: 500})
	cart.Upsert(CartLine{CatalogItemID: uuid.New(), Quantity: 3, UnitPrice: 150})

	assert.Equal(t, int64(1450), cart.Total())

	cart.Clear()
	assert.True(t, cart.IsEmpty())
	assert.Equal(t, int64(0), cart.Total())
}

func TestCart_Remove(t *testing.T) {
	cart := NewCart(uuid.New())
	keep, drop := uuid.New(), uuid.New()
	cart.Upsert(CartLine{CatalogItemID: keep, Quantity: 1, UnitPrice: 100})
	cart.Upsert(CartLine{CatalogItemID: drop, Quantity: 1, UnitPrice: 200})

	assert.True(t, cart.Remove(drop))
	assert.False(t, cart.Remove(drop))
	assert.Equal(t, int64(100), cart.Total())
}

func TestNewOrderFromCart_FreezesLines(t *testing.T) {
	cart := NewCart(uuid.New())
	itemID := uuid.New()
	cart.Upsert(CartLine{CatalogItemID: itemID, Name: "Pizza", Quantity: 2, UnitPrice: 500})

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	order, err := NewOrderFromCart(cart, 100, "1 Main St", "+15550001111", PaymentCash, now)
	require.NoError(t, err)

	assert.Equal(t, OrderStatusPending, order.Status)
	assert.Equal(t, int64(1000), order.Subtotal)
	assert.Equal(t, int64(1100), order.Total)
	assert.Equal(t, now, order.CreatedAt)

	cart.Lines[0].UnitPrice = 9999
	assert.Equal(t, int64(500), order.Lines[0].UnitPrice)
}

func TestCart_CheckedTotalOverflow(t *testing.T) {
	tests := []struct {
		name  string
		lines []CartLine
		want  int64
		err   error
	}{
		{
			name:  "fits",
			lines: []CartLine{{CatalogItemID: uuid.New(), Quantity: 3, UnitPrice: 500}},
			want:  1500,
		},
		{
			name:  "line product overflows",
			lines: []CartLine{{CatalogItemID: uuid.New(), Quantity: math.MaxInt64 / 250, UnitPrice: 500}},
			err:   ErrAmountOverflow,
		},
		{
			name: "sum of lines overflows",
			lines: []CartLine{
				{CatalogItemID: uuid.New(), Quantity: 1, UnitPrice: math.MaxInt64 - 10},
				{CatalogItemID: uuid.New(), Quantity: 1, UnitPrice: 11},
			},
			err: ErrAmountOverflow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := &Cart{AccountID: uuid.New(), Lines: tt.lines}

			total, err := cart.CheckedTotal()
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, total)
		})
	}
}

func TestNewOrderFromCart_RejectsOverflowingTotal(t *testing.T) {
	cart := NewCart(uuid.New())
	cart.Upsert(CartLine{CatalogItemID: uuid.New(), Quantity: 1, UnitPrice: math.MaxInt64 - 50})

	order, err := NewOrderFromCart(cart, 100, "1 Main St", "+15550001111", PaymentCash, time.Now())

	assert.ErrorIs(t, err, ErrAmountOverflow)
	assert.Nil(t, order)
}
