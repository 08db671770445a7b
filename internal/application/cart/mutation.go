package cart

import (
	"context"

	"github.com/samber/mo"
	"go.opentelemetry.io/otel/trace"

	"github.com/xiebiao/bookshop/internal/domain/cart"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

// lockForMutation 锁定购物车并检查归属和状态
// 同一购物车的变更和结算在行锁上串行
func lockForMutation(ctx context.Context, carts cart.Repository, cartID, customerID uint) (*cart.Cart, error) {
	c, err := carts.LockByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if !c.IsOwnedBy(customerID) {
		return nil, cart.ErrCartAccessDenied.With("cart_id", cartID)
	}
	if !c.IsActive() {
		return nil, cart.ErrCartNotActive.With("cart_id", cartID)
	}
	return c, nil
}

// recomputeTotal 重新读取明细,把总价写成明细小计之和
func recomputeTotal(ctx context.Context, carts cart.Repository, cartID uint) (*cart.Cart, error) {
	c, err := carts.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return carts.Update(ctx, cartID, cart.UpdateDraft{TotalPrice: mo.Some(c.LineItemsTotal())})
}

// observe 开启span,返回结束时调用的函数(记录错误和变更指标)
func observe(ctx context.Context, operation string) (context.Context, func(err error)) {
	ctx, span := tracing.StartSpan(ctx, tracing.TracerName, "cart."+operation)
	return ctx, func(err error) {
		finish(span, operation, err)
	}
}

func finish(span trace.Span, operation string, err error) {
	tracing.RecordError(span, err)
	span.End()
	metrics.CartMutationsTotal.WithLabelValues(operation, metrics.Result(err)).Inc()
}
