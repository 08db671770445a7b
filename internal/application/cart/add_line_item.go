package cart

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/xiebiao/bookshop/internal/application"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/cart"
	"github.com/xiebiao/bookshop/pkg/metrics"
)

// AddLineItemUseCase 加入购物车用例
type AddLineItemUseCase struct {
	tx        application.Transactor
	carts     cart.Repository
	lineItems cart.LineItemRepository
	prices    book.PriceLookup
}

// NewAddLineItemUseCase 创建加购用例
func NewAddLineItemUseCase(
	tx application.Transactor,
	carts cart.Repository,
	lineItems cart.LineItemRepository,
	prices book.PriceLookup,
) *AddLineItemUseCase {
	metrics.InitMetrics()
	return &AddLineItemUseCase{
		tx:        tx,
		carts:     carts,
		lineItems: lineItems,
		prices:    prices,
	}
}

// AddLineItemRequest 加购请求
type AddLineItemRequest struct {
	CartID     uint
	CustomerID uint // 从JWT中提取
	BookID     uint
	Quantity   int
}

// Execute 执行加购
// 同一本书已在购物车中时增加数量,否则按当前价格新建明细;
// 最后把购物车总价重算为明细小计之和
func (uc *AddLineItemUseCase) Execute(ctx context.Context, req AddLineItemRequest) (resp *CartResponse, err error) {
	ctx, done := observe(ctx, "add_line_item")
	defer func() { done(err) }()
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int64("cart.id", int64(req.CartID)),
		attribute.Int64("book.id", int64(req.BookID)),
		attribute.Int("quantity", req.Quantity),
	)

	if req.Quantity <= 0 {
		return nil, cart.ErrInvalidQuantity
	}

	var updated *cart.Cart
	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		c, err := lockForMutation(ctx, uc.carts, req.CartID, req.CustomerID)
		if err != nil {
			return err
		}

		existing, err := uc.lineItems.FindByCartAndBook(ctx, c.ID, req.BookID)
		switch {
		case errors.Is(err, cart.ErrLineItemNotFound):
			// 单价在加入时确定,之后调价不影响已有明细
			price, err := uc.prices.CurrentPrice(ctx, req.BookID)
			if err != nil {
				return err
			}
			li, err := cart.NewLineItem(c.ID, req.BookID, req.Quantity, price)
			if err != nil {
				return err
			}
			if err := uc.lineItems.Create(ctx, li); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			draft, err := existing.Increase(req.Quantity)
			if err != nil {
				return err
			}
			if _, err := uc.lineItems.Update(ctx, existing.ID, draft); err != nil {
				return err
			}
		}

		updated, err = recomputeTotal(ctx, uc.carts, c.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return NewCartResponse(updated), nil
}
