package cart

import (
	"context"
	"math"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshop/internal/domain/address"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/cart"
	"github.com/xiebiao/bookshop/internal/testutil/memstore"
)

type fixture struct {
	store  *memstore.Store
	add    *AddLineItemUseCase
	remove *RemoveLineItemUseCase
	update *UpdateCartUseCase
	manage *ManageCartUseCase
}

func newFixture() *fixture {
	s := memstore.New()
	return &fixture{
		store:  s,
		add:    NewAddLineItemUseCase(s, s.Carts(), s.LineItems(), s.Books()),
		remove: NewRemoveLineItemUseCase(s, s.Carts(), s.LineItems()),
		update: NewUpdateCartUseCase(s, s.Carts(), s.Addresses()),
		manage: NewManageCartUseCase(s, s.Carts()),
	}
}

// assertTotalConsistent 购物车总价等于明细小计之和,且没有数量<=0的明细
func assertTotalConsistent(t *testing.T, s *memstore.Store, cartID uint) {
	t.Helper()
	c := s.CartOf(t, cartID)
	assert.True(t, c.TotalPrice.Equal(c.LineItemsTotal()), "total=%s sum=%s", c.TotalPrice, c.LineItemsTotal())
	for _, li := range c.LineItems {
		assert.Positive(t, li.Quantity)
	}
}

func TestAddLineItem_NewAndExisting(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	c := f.store.SeedCart(t, 1)
	b := f.store.SeedBook(t, "10.00")

	resp, err := f.add.Execute(ctx, AddLineItemRequest{CartID: c.ID, CustomerID: 1, BookID: b.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, resp.LineItems, 1)
	assert.Equal(t, "20.00", resp.TotalPrice)
	assert.Equal(t, "10.00", resp.LineItems[0].Price)

	resp, err = f.add.Execute(ctx, AddLineItemRequest{CartID: c.ID, CustomerID: 1, BookID: b.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, resp.LineItems, 1, "同一本书合并为一行")
	assert.Equal(t, 3, resp.LineItems[0].Quantity)
	assert.Equal(t, "30.00", resp.TotalPrice)
	assertTotalConsistent(t, f.store, c.ID)
}

func TestAddLineItem_Rejections(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	c := f.store.SeedCart(t, 1)
	b := f.store.SeedBook(t, "10.00")

	inactive := f.store.SeedCart(t, 1)
	_, err := f.store.Carts().Update(ctx, inactive.ID, cart.UpdateDraft{Status: mo.Some(cart.StatusInactive)})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  AddLineItemRequest
		want error
	}{
		{"数量为0", AddLineItemRequest{CartID: c.ID, CustomerID: 1, BookID: b.ID, Quantity: 0}, cart.ErrInvalidQuantity},
		{"购物车不存在", AddLineItemRequest{CartID: 9999, CustomerID: 1, BookID: b.ID, Quantity: 1}, cart.ErrCartNotFound},
		{"他人购物车", AddLineItemRequest{CartID: c.ID, CustomerID: 2, BookID: b.ID, Quantity: 1}, cart.ErrCartAccessDenied},
		{"已结算购物车", AddLineItemRequest{CartID: inactive.ID, CustomerID: 1, BookID: b.ID, Quantity: 1}, cart.ErrCartNotActive},
		{"图书不存在", AddLineItemRequest{CartID: c.ID, CustomerID: 1, BookID: 9999, Quantity: 1}, book.ErrBookNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.add.Execute(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Empty(t, f.store.CartOf(t, c.ID).LineItems)
}

func TestAddLineItem_QuantityOverflowRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	c := f.store.SeedCart(t, 1)
	b := f.store.SeedBook(t, "10.00")

	_, err := f.add.Execute(ctx, AddLineItemRequest{CartID: c.ID, CustomerID: 1, BookID: b.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = f.add.Execute(ctx, AddLineItemRequest{CartID: c.ID, CustomerID: 1, BookID: b.ID, Quantity: math.MaxInt})
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)

	stored := f.store.CartOf(t, c.ID)
	require.Len(t, stored.LineItems, 1)
	assert.Equal(t, 1, stored.LineItems[0].Quantity, "失败的加购不应改变明细")
	assert.Equal(t, "10.00", stored.TotalPrice.StringFixed(2))
	assertTotalConsistent(t, f.store, c.ID)
}

func TestRemoveLineItem_Partial(t *testing.T) {
	f := newFixture()
	c := f.store.SeedCart(t, 1)
	li := f.store.SeedLineItem(t, c.ID, f.store.SeedBook(t, "10.00"), 2)

	resp, err := f.remove.Execute(context.Background(), RemoveLineItemRequest{
		CartID: c.ID, CustomerID: 1, LineItemID: li.ID, Quantity: 1,
	})
	require.NoError(t, err)

	require.Len(t, resp.LineItems, 1)
	assert.Equal(t, 1, resp.LineItems[0].Quantity)
	assert.Equal(t, "10.00", resp.LineItems[0].TotalPrice)
	assert.Equal(t, "10.00", resp.TotalPrice, "总价减少10")
	assertTotalConsistent(t, f.store, c.ID)
}

func TestRemoveLineItem_RemovesWholeLineWhenQuantityExceeds(t *testing.T) {
	f := newFixture()
	c := f.store.SeedCart(t, 1)
	li := f.store.SeedLineItem(t, c.ID, f.store.SeedBook(t, "10.00"), 2)
	f.store.SeedLineItem(t, c.ID, f.store.SeedBook(t, "5.00"), 1)

	resp, err := f.remove.Execute(context.Background(), RemoveLineItemRequest{
		CartID: c.ID, CustomerID: 1, LineItemID: li.ID, Quantity: 5,
	})
	require.NoError(t, err)

	require.Len(t, resp.LineItems, 1)
	assert.Equal(t, "5.00", resp.TotalPrice)
	_, err = f.store.LineItems().FindByID(context.Background(), li.ID)
	assert.ErrorIs(t, err, cart.ErrLineItemNotFound)
	assertTotalConsistent(t, f.store, c.ID)
}

func TestRemoveLineItem_NotFound(t *testing.T) {
	f := newFixture()
	c := f.store.SeedCart(t, 1)
	other := f.store.SeedCart(t, 1)
	foreign := f.store.SeedLineItem(t, other.ID, f.store.SeedBook(t, "10.00"), 1)

	_, err := f.remove.Execute(context.Background(), RemoveLineItemRequest{
		CartID: c.ID, CustomerID: 1, LineItemID: 9999, Quantity: 1,
	})
	assert.ErrorIs(t, err, cart.ErrLineItemNotFound)

	_, err = f.remove.Execute(context.Background(), RemoveLineItemRequest{
		CartID: c.ID, CustomerID: 1, LineItemID: foreign.ID, Quantity: 1,
	})
	assert.ErrorIs(t, err, cart.ErrLineItemNotFound, "其他购物车的明细按不存在处理")
	assert.Equal(t, 1, f.store.CartOf(t, other.ID).LineItems[0].Quantity)
}

// 任意加购/移除序列之后总价都等于明细小计之和
func TestMutations_TotalPriceInvariant(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	c := f.store.SeedCart(t, 1)
	books := []*book.Book{
		f.store.SeedBook(t, "10.00"),
		f.store.SeedBook(t, "5.50"),
		f.store.SeedBook(t, "0.99"),
	}
	faker := gofakeit.New(42)

	for i := 0; i < 60; i++ {
		current := f.store.CartOf(t, c.ID)
		if len(current.LineItems) > 0 && faker.Bool() {
			li := current.LineItems[faker.IntRange(0, len(current.LineItems)-1)]
			_, err := f.remove.Execute(ctx, RemoveLineItemRequest{
				CartID: c.ID, CustomerID: 1, LineItemID: li.ID, Quantity: faker.IntRange(1, 4),
			})
			require.NoError(t, err)
		} else {
			b := books[faker.IntRange(0, len(books)-1)]
			_, err := f.add.Execute(ctx, AddLineItemRequest{
				CartID: c.ID, CustomerID: 1, BookID: b.ID, Quantity: faker.IntRange(1, 3),
			})
			require.NoError(t, err)
		}
		assertTotalConsistent(t, f.store, c.ID)
	}
}

func TestUpdateCart_PartialUpdate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	c := f.store.SeedCart(t, 1)
	billing := f.store.SeedAddress(t, 1)
	shipping := f.store.SeedAddress(t, 1)

	resp, err := f.update.Execute(ctx, UpdateCartRequest{CartID: c.ID, CustomerID: 1, Draft: cart.UpdateDraft{
		BillingAddressID: mo.Some(billing.ID),
	}})
	require.NoError(t, err)
	assert.Equal(t, billing.ID, *resp.BillingAddressID)
	assert.Nil(t, resp.ShippingAddressID)

	resp, err = f.update.Execute(ctx, UpdateCartRequest{CartID: c.ID, CustomerID: 1, Draft: cart.UpdateDraft{
		ShippingAddressID: mo.Some(shipping.ID),
		DeliveryMethod:    mo.Some(cart.DeliveryPickup),
	}})
	require.NoError(t, err)
	assert.Equal(t, billing.ID, *resp.BillingAddressID, "未提供的字段保持不变")
	assert.Equal(t, shipping.ID, *resp.ShippingAddressID)
	assert.Equal(t, "pickup", *resp.DeliveryMethod)
}

func TestUpdateCart_Rejections(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	c := f.store.SeedCart(t, 1)
	foreignAddr := f.store.SeedAddress(t, 2)

	tests := []struct {
		name  string
		draft cart.UpdateDraft
		want  error
	}{
		{"空draft", cart.UpdateDraft{}, cart.ErrEmptyDraft},
		{"地址不存在", cart.UpdateDraft{BillingAddressID: mo.Some(uint(9999))}, address.ErrAddressNotFound},
		{"他人地址", cart.UpdateDraft{ShippingAddressID: mo.Some(foreignAddr.ID)}, address.ErrAddressNotFound},
		{"不能手动结算", cart.UpdateDraft{Status: mo.Some(cart.StatusInactive)}, cart.ErrInvalidStatusTransition},
		{"未知状态", cart.UpdateDraft{Status: mo.Some(cart.Status("paid"))}, cart.ErrInvalidStatus},
		{"未知配送方式", cart.UpdateDraft{DeliveryMethod: mo.Some(cart.DeliveryMethod("drone"))}, cart.ErrInvalidDeliveryMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.update.Execute(ctx, UpdateCartRequest{CartID: c.ID, CustomerID: 1, Draft: tt.draft})
			assert.ErrorIs(t, err, tt.want)
		})
	}

	got := f.store.CartOf(t, c.ID)
	assert.True(t, got.BillingAddressID.IsAbsent())
	assert.True(t, got.ShippingAddressID.IsAbsent())
	assert.Equal(t, cart.StatusActive, got.Status)
}

func TestUpdateCart_TotalPriceOverride(t *testing.T) {
	f := newFixture()
	c := f.store.SeedCart(t, 1)

	resp, err := f.update.Execute(context.Background(), UpdateCartRequest{CartID: c.ID, CustomerID: 1, Draft: cart.UpdateDraft{
		TotalPrice: mo.Some(decimal.NewFromInt(999)),
	}})
	require.NoError(t, err)
	assert.Equal(t, "999.00", resp.TotalPrice)
}

func TestManageCart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.manage.Create(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "active", created.Status)
	assert.Equal(t, "0.00", created.TotalPrice)

	got, err := f.manage.Get(ctx, created.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = f.manage.Get(ctx, created.ID, 6)
	assert.ErrorIs(t, err, cart.ErrCartAccessDenied)

	f.store.SeedLineItem(t, created.ID, f.store.SeedBook(t, "1.00"), 1)
	assert.ErrorIs(t, f.manage.Delete(ctx, created.ID, 5), cart.ErrCartNotEmpty)

	empty, err := f.manage.Create(ctx, 5)
	require.NoError(t, err)
	require.NoError(t, f.manage.Delete(ctx, empty.ID, 5))
	_, err = f.manage.Get(ctx, empty.ID, 5)
	assert.ErrorIs(t, err, cart.ErrCartNotFound)
}
