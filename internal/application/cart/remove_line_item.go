package cart

import (
	"context"

	"github.com/samber/mo"

	"github.com/xiebiao/bookshop/internal/application"
	"github.com/xiebiao/bookshop/internal/domain/cart"
	"github.com/xiebiao/bookshop/pkg/metrics"
)

// RemoveLineItemUseCase 减少/移除明细用例
type RemoveLineItemUseCase struct {
	tx        application.Transactor
	carts     cart.Repository
	lineItems cart.LineItemRepository
}

// NewRemoveLineItemUseCase 创建移除明细用例
func NewRemoveLineItemUseCase(tx application.Transactor, carts cart.Repository, lineItems cart.LineItemRepository) *RemoveLineItemUseCase {
	metrics.InitMetrics()
	return &RemoveLineItemUseCase{tx: tx, carts: carts, lineItems: lineItems}
}

// RemoveLineItemRequest 移除请求
type RemoveLineItemRequest struct {
	CartID     uint
	CustomerID uint
	LineItemID uint
	Quantity   int // 减少的数量,>=当前数量时整行删除
}

// Execute 执行移除
// 购物车总价减去退回的金额:整行删除退回整行小计,部分减少退回差额
func (uc *RemoveLineItemUseCase) Execute(ctx context.Context, req RemoveLineItemRequest) (resp *CartResponse, err error) {
	ctx, done := observe(ctx, "remove_line_item")
	defer func() { done(err) }()

	if req.Quantity <= 0 {
		return nil, cart.ErrInvalidQuantity
	}

	var updated *cart.Cart
	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		c, err := lockForMutation(ctx, uc.carts, req.CartID, req.CustomerID)
		if err != nil {
			return err
		}

		li, err := uc.lineItems.FindByID(ctx, req.LineItemID)
		if err != nil {
			return err
		}
		if li.CartID != c.ID {
			// 其他购物车的明细按不存在处理
			return cart.ErrLineItemNotFound.With("line_item_id", req.LineItemID).With("cart_id", c.ID)
		}

		removal, err := li.Remove(req.Quantity)
		if err != nil {
			return err
		}
		if removal.Delete {
			err = uc.lineItems.Delete(ctx, li.ID)
		} else {
			_, err = uc.lineItems.Update(ctx, li.ID, removal.Draft)
		}
		if err != nil {
			return err
		}

		updated, err = uc.carts.Update(ctx, c.ID, cart.UpdateDraft{
			TotalPrice: mo.Some(c.TotalPrice.Sub(removal.Credited)),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return NewCartResponse(updated), nil
}
