package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshop/internal/domain/order"
)

func TestGetOrder(t *testing.T) {
	f := newCheckoutFixture()
	rc := f.store.SeedReadyCart(t, 5, 3)
	created, err := f.checkout(rc)
	require.NoError(t, err)

	uc := NewGetOrderUseCase(f.store.Orders(), f.store.Carts())

	got, err := uc.Execute(context.Background(), created.ID, rc.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, created.OrderNo, got.OrderNo)
	assert.Equal(t, "25.00", got.TotalPrice)

	_, err = uc.Execute(context.Background(), created.ID, rc.CustomerID+1)
	assert.ErrorIs(t, err, order.ErrOrderNotFound, "他人订单按不存在处理")

	_, err = uc.Execute(context.Background(), 9999, rc.CustomerID)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}
