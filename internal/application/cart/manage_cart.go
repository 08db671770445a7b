package cart

import (
	"context"

	"github.com/xiebiao/bookshop/internal/application"
	"github.com/xiebiao/bookshop/internal/domain/cart"
	"github.com/xiebiao/bookshop/pkg/metrics"
)

// ManageCartUseCase 购物车的创建、查询和删除
type ManageCartUseCase struct {
	tx    application.Transactor
	carts cart.Repository
}

// NewManageCartUseCase 创建购物车管理用例
func NewManageCartUseCase(tx application.Transactor, carts cart.Repository) *ManageCartUseCase {
	metrics.InitMetrics()
	return &ManageCartUseCase{tx: tx, carts: carts}
}

// Create 为顾客创建一个空购物车
func (uc *ManageCartUseCase) Create(ctx context.Context, customerID uint) (resp *CartResponse, err error) {
	ctx, done := observe(ctx, "create")
	defer func() { done(err) }()

	c := cart.NewCart(customerID)
	if err := uc.carts.Create(ctx, c); err != nil {
		return nil, err
	}
	return NewCartResponse(c), nil
}

// Get 查询购物车(只能查询自己的)
func (uc *ManageCartUseCase) Get(ctx context.Context, cartID, customerID uint) (*CartResponse, error) {
	c, err := uc.carts.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if !c.IsOwnedBy(customerID) {
		return nil, cart.ErrCartAccessDenied.With("cart_id", cartID)
	}
	return NewCartResponse(c), nil
}

// Delete 删除购物车
// 只能删除自己的、未结算且没有明细的购物车
func (uc *ManageCartUseCase) Delete(ctx context.Context, cartID, customerID uint) (err error) {
	ctx, done := observe(ctx, "delete")
	defer func() { done(err) }()

	return uc.tx.Transaction(ctx, func(ctx context.Context) error {
		c, err := lockForMutation(ctx, uc.carts, cartID, customerID)
		if err != nil {
			return err
		}
		if !c.IsEmpty() {
			return cart.ErrCartNotEmpty.With("cart_id", cartID)
		}
		return uc.carts.Delete(ctx, cartID)
	})
}
