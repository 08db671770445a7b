package cart

import (
	"context"

	"github.com/xiebiao/bookshop/internal/application"
	"github.com/xiebiao/bookshop/internal/domain/address"
	"github.com/xiebiao/bookshop/internal/domain/cart"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/metrics"
)

// UpdateCartUseCase 部分更新购物车(地址、配送方式等)
type UpdateCartUseCase struct {
	tx        application.Transactor
	carts     cart.Repository
	addresses address.Repository
}

// NewUpdateCartUseCase 创建更新用例
func NewUpdateCartUseCase(tx application.Transactor, carts cart.Repository, addresses address.Repository) *UpdateCartUseCase {
	metrics.InitMetrics()
	return &UpdateCartUseCase{tx: tx, carts: carts, addresses: addresses}
}

// UpdateCartRequest 更新请求,Draft中只有Some的字段会被写入
type UpdateCartRequest struct {
	CartID     uint
	CustomerID uint
	Draft      cart.UpdateDraft
}

// Execute 执行更新
// 1. 参数校验(不开事务)
// 2. 锁定购物车,检查归属和状态
// 3. 出现的地址ID必须存在且属于当前顾客
// 4. 只写入出现的字段
func (uc *UpdateCartUseCase) Execute(ctx context.Context, req UpdateCartRequest) (resp *CartResponse, err error) {
	ctx, done := observe(ctx, "update")
	defer func() { done(err) }()

	if err := validateDraft(req.Draft); err != nil {
		return nil, err
	}

	var updated *cart.Cart
	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		c, err := lockForMutation(ctx, uc.carts, req.CartID, req.CustomerID)
		if err != nil {
			return err
		}

		for _, opt := range []struct {
			id      uint
			present bool
		}{
			{req.Draft.BillingAddressID.OrEmpty(), req.Draft.BillingAddressID.IsPresent()},
			{req.Draft.ShippingAddressID.OrEmpty(), req.Draft.ShippingAddressID.IsPresent()},
		} {
			if !opt.present {
				continue
			}
			addr, err := uc.addresses.FindByID(ctx, opt.id)
			if err != nil {
				return err
			}
			if addr.CustomerID != c.CustomerID {
				return address.ErrAddressNotFound.With("address_id", opt.id)
			}
		}

		updated, err = uc.carts.Update(ctx, c.ID, req.Draft)
		return err
	})
	if err != nil {
		return nil, err
	}
	return NewCartResponse(updated), nil
}

// validateDraft 状态只能写active,inactive只能由结算写入
func validateDraft(d cart.UpdateDraft) error {
	if d.IsEmpty() {
		return cart.ErrEmptyDraft
	}
	if s, ok := d.Status.Get(); ok {
		if !s.Valid() {
			return cart.ErrInvalidStatus.With("status", string(s))
		}
		if s != cart.StatusActive {
			return cart.ErrInvalidStatusTransition.With("status", string(s))
		}
	}
	if m, ok := d.DeliveryMethod.Get(); ok && !m.Valid() {
		return cart.ErrInvalidDeliveryMethod.With("delivery_method", string(m))
	}
	if p, ok := d.TotalPrice.Get(); ok && p.IsNegative() {
		return apperrors.ErrInvalidParams.With("total_price", p.String())
	}
	return nil
}
