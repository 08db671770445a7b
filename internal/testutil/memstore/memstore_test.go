package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshop/internal/domain/inventory"
)

func TestTransaction_RollbackRestoresSnapshot(t *testing.T) {
	s := New()
	b := s.SeedBook(t, "10.00")
	s.SeedInventory(t, b.ID, 5)
	boom := errors.New("boom")

	err := s.Transaction(context.Background(), func(ctx context.Context) error {
		require.NoError(t, s.Inventories().DecrementInventory(ctx, b.ID, 2))
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 5, s.InventoryOf(t, b.ID))
	assert.Equal(t, 1, s.Rollbacks())
	assert.Equal(t, 0, s.Commits())
}

func TestTransaction_PanicRestoresAndPropagates(t *testing.T) {
	s := New()
	b := s.SeedBook(t, "10.00")
	s.SeedInventory(t, b.ID, 5)

	assert.PanicsWithValue(t, "boom", func() {
		_ = s.Transaction(context.Background(), func(ctx context.Context) error {
			_ = s.Inventories().DecrementInventory(ctx, b.ID, 2)
			panic("boom")
		})
	})
	assert.Equal(t, 5, s.InventoryOf(t, b.ID))
}

func TestTransaction_NestedJoinsOuter(t *testing.T) {
	s := New()
	b := s.SeedBook(t, "10.00")
	s.SeedInventory(t, b.ID, 5)

	err := s.Transaction(context.Background(), func(ctx context.Context) error {
		return s.Transaction(ctx, func(ctx context.Context) error {
			return s.Inventories().DecrementInventory(ctx, b.ID, 1)
		})
	})

	require.NoError(t, err)
	assert.Equal(t, 4, s.InventoryOf(t, b.ID))
	assert.Equal(t, 1, s.Commits())
}

func TestDecrement_GuardsQuantity(t *testing.T) {
	s := New()
	b := s.SeedBook(t, "10.00")
	s.SeedInventory(t, b.ID, 1)

	err := s.Inventories().DecrementInventory(context.Background(), b.ID, 2)
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
	assert.Equal(t, 1, s.InventoryOf(t, b.ID))
}

func TestSeedReadyCart(t *testing.T) {
	s := New()
	rc := s.SeedReadyCart(t, 5, 3)

	assert.Len(t, rc.Cart.LineItems, 2)
	assert.Equal(t, "25", rc.Cart.TotalPrice.String())
	assert.True(t, rc.Cart.LineItemsTotal().Equal(rc.Cart.TotalPrice))
}
