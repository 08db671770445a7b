package cart

import (
	"math"
	"testing"

	"github.com/samber/mo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCart(t *testing.T) {
	c := NewCart(7)

	assert.Equal(t, StatusActive, c.Status)
	assert.True(t, c.TotalPrice.IsZero())
	assert.True(t, c.IsEmpty())
	assert.True(t, c.IsOwnedBy(7))
	assert.False(t, c.IsOwnedBy(8))
}

func TestNewLineItem(t *testing.T) {
	li, err := NewLineItem(1, 2, 3, decimal.RequireFromString("9.90"))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("29.70").Equal(li.TotalPrice))

	_, err = NewLineItem(1, 2, 0, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestLineItem_Increase(t *testing.T) {
	li := LineItem{Quantity: 2, Price: decimal.NewFromInt(10), TotalPrice: decimal.NewFromInt(20)}

	draft, err := li.Increase(3)
	require.NoError(t, err)
	draft.Apply(&li)

	assert.Equal(t, 5, li.Quantity)
	assert.True(t, decimal.NewFromInt(50).Equal(li.TotalPrice))
}

func TestLineItem_IncreaseOverflow(t *testing.T) {
	li := LineItem{ID: 4, Quantity: 1, Price: decimal.NewFromInt(10), TotalPrice: decimal.NewFromInt(10)}

	_, err := li.Increase(math.MaxInt)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	draft, err := li.Increase(math.MaxInt - 1)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, draft.Quantity.MustGet())
}

func TestLineItem_Remove(t *testing.T) {
	newItem := func() LineItem {
		return LineItem{Quantity: 2, Price: decimal.NewFromInt(10), TotalPrice: decimal.NewFromInt(20)}
	}

	t.Run("部分移除按新数量重算小计", func(t *testing.T) {
		li := newItem()
		r, err := li.Remove(1)
		require.NoError(t, err)

		assert.False(t, r.Delete)
		assert.True(t, decimal.NewFromInt(10).Equal(r.Credited))
		assert.Equal(t, mo.Some(1), r.Draft.Quantity)
		assert.True(t, decimal.NewFromInt(10).Equal(r.Draft.TotalPrice.MustGet()))
	})

	t.Run("移除数量等于当前数量时删除整行", func(t *testing.T) {
		li := newItem()
		r, err := li.Remove(2)
		require.NoError(t, err)
		assert.True(t, r.Delete)
		assert.True(t, decimal.NewFromInt(20).Equal(r.Credited))
	})

	t.Run("移除数量超过当前数量时删除整行", func(t *testing.T) {
		li := newItem()
		r, err := li.Remove(5)
		require.NoError(t, err)
		assert.True(t, r.Delete)
		assert.True(t, decimal.NewFromInt(20).Equal(r.Credited))
	})

	t.Run("数量必须为正", func(t *testing.T) {
		li := newItem()
		_, err := li.Remove(0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})
}

func TestUpdateDraft_OnlyPresentFieldsApplied(t *testing.T) {
	c := NewCart(1)
	c.BillingAddressID = mo.Some(uint(3))

	draft := UpdateDraft{
		ShippingAddressID: mo.Some(uint(4)),
		DeliveryMethod:    mo.Some(DeliveryExpress),
	}
	draft.Apply(c)

	assert.Equal(t, mo.Some(uint(3)), c.BillingAddressID, "未提供的字段保持不变")
	assert.Equal(t, mo.Some(uint(4)), c.ShippingAddressID)
	assert.Equal(t, mo.Some(DeliveryExpress), c.DeliveryMethod)
	assert.Equal(t, StatusActive, c.Status)

	assert.Equal(t, map[string]interface{}{
		"shipping_address_id": uint(4),
		"delivery_method":     "express",
	}, draft.Columns())
	assert.False(t, draft.IsEmpty())
	assert.True(t, UpdateDraft{}.IsEmpty())
}

func TestSumTotals(t *testing.T) {
	items := []LineItem{
		{TotalPrice: decimal.RequireFromString("20.00")},
		{TotalPrice: decimal.RequireFromString("5.50")},
	}
	assert.True(t, decimal.RequireFromString("25.50").Equal(SumTotals(items)))
	assert.True(t, SumTotals(nil).IsZero())
}
