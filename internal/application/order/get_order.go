package order

import (
	"context"
	"errors"

	"github.com/samber/mo"
	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookshop/internal/domain/cart"
	"github.com/xiebiao/bookshop/internal/domain/order"
)

// GetOrderUseCase 查询订单
type GetOrderUseCase struct {
	orders order.Repository
	carts  cart.Repository
}

// NewGetOrderUseCase 创建查询订单用例
func NewGetOrderUseCase(orders order.Repository, carts cart.Repository) *GetOrderUseCase {
	return &GetOrderUseCase{orders: orders, carts: carts}
}

// Execute 只能查询自己的订单,他人订单按不存在处理
// 金额取自结算时的购物车(结算后购物车只读)
func (uc *GetOrderUseCase) Execute(ctx context.Context, orderID, customerID uint) (*OrderResponse, error) {
	o, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(customerID) {
		return nil, order.ErrOrderNotFound.With("order_id", orderID)
	}

	total := mo.None[decimal.Decimal]()
	c, err := uc.carts.FindByID(ctx, o.CartID)
	switch {
	case err == nil:
		total = mo.Some(c.TotalPrice)
	case !errors.Is(err, cart.ErrCartNotFound):
		return nil, err
	}
	return newOrderResponse(o, total), nil
}
