package cart

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/xiebiao/bookshop/internal/domain/inventory"
)

// InventoryLookup 校验所需的库存查询能力
type InventoryLookup interface {
	FindInventory(ctx context.Context, q inventory.Query) (*inventory.Inventory, error)
}

// Validator 结算前置校验(领域服务)
// 只读:不修改购物车,也不修改库存
type Validator struct {
	inventories InventoryLookup
	concurrency int
}

// NewValidator 创建校验器,concurrency限制库存并发查询数(<=0表示不限制)
func NewValidator(inventories InventoryLookup, concurrency int) *Validator {
	return &Validator{
		inventories: inventories,
		concurrency: concurrency,
	}
}

// Validate 按固定顺序检查购物车能否结算,返回第一个不满足的条件
//  1. 下单人是购物车所有者
//  2. 购物车未结算
//  3. 已填写账单地址
//  4. 已填写收货地址
//  5. 已选择配送方式
//  6. 至少一条明细
//  7. 总价等于明细小计之和
//  8. 每条明细库存充足(并发查询,最先失败的错误胜出)
func (v *Validator) Validate(ctx context.Context, c *Cart, orderCreatorID uint) error {
	if !c.IsOwnedBy(orderCreatorID) {
		return ErrOrderCreatorMismatch.With("cart_id", c.ID).With("order_creator_id", orderCreatorID)
	}
	if c.Status == StatusInactive {
		return ErrCartNotActive.With("cart_id", c.ID)
	}
	if c.BillingAddressID.IsAbsent() {
		return ErrBillingAddressMissing.With("cart_id", c.ID)
	}
	if c.ShippingAddressID.IsAbsent() {
		return ErrShippingAddressMissing.With("cart_id", c.ID)
	}
	if c.DeliveryMethod.IsAbsent() {
		return ErrDeliveryMethodMissing.With("cart_id", c.ID)
	}
	if c.IsEmpty() {
		return ErrLineItemsMissing.With("cart_id", c.ID)
	}
	if !c.TotalPrice.Equal(c.LineItemsTotal()) {
		return ErrInvalidTotalPrice.
			With("cart_id", c.ID).
			With("total_price", c.TotalPrice.StringFixed(2)).
			With("line_items_total", c.LineItemsTotal().StringFixed(2))
	}
	return v.checkInventory(ctx, c)
}

func (v *Validator) checkInventory(ctx context.Context, c *Cart) error {
	g, gctx := errgroup.WithContext(ctx)
	if v.concurrency > 0 {
		g.SetLimit(v.concurrency)
	}

	for _, li := range c.LineItems {
		g.Go(func() error {
			inv, err := v.inventories.FindInventory(gctx, inventory.ByBookID(li.BookID))
			if err != nil {
				return err
			}
			if !inv.HasEnough(li.Quantity) {
				return ErrLineItemOutOfInventory.
					With("line_item_id", li.ID).
					With("book_id", li.BookID).
					With("requested", li.Quantity).
					With("available", inv.Quantity)
			}
			return nil
		})
	}
	return g.Wait()
}
