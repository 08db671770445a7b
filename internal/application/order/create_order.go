package order

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/samber/mo"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/application"
	"github.com/xiebiao/bookshop/internal/domain/cart"
	"github.com/xiebiao/bookshop/internal/domain/inventory"
	"github.com/xiebiao/bookshop/internal/domain/order"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/mq"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

// CreateOrderUseCase 结算用例:把校验通过的购物车转换成订单
// 涉及:事务处理、并发控制、业务规则校验
type CreateOrderUseCase struct {
	tx          application.Transactor
	carts       cart.Repository
	orders      order.Repository
	inventories inventory.Gateway
	validator   *cart.Validator
	publisher   mq.EventPublisher
	logger      *zap.Logger
}

// NewCreateOrderUseCase 创建结算用例
func NewCreateOrderUseCase(
	tx application.Transactor,
	carts cart.Repository,
	orders order.Repository,
	inventories inventory.Gateway,
	validator *cart.Validator,
	publisher mq.EventPublisher,
	logger *zap.Logger,
) *CreateOrderUseCase {
	metrics.InitMetrics()
	return &CreateOrderUseCase{
		tx:          tx,
		carts:       carts,
		orders:      orders,
		inventories: inventories,
		validator:   validator,
		publisher:   publisher,
		logger:      logger,
	}
}

// CreateOrderRequest 结算请求
type CreateOrderRequest struct {
	CartID        uint
	CustomerID    uint // 下单人(从JWT中提取)
	PaymentMethod string
}

// OrderResponse 订单响应DTO
type OrderResponse struct {
	ID            uint   `json:"id"`
	OrderNo       string `json:"order_no"`
	CustomerID    uint   `json:"customer_id"`
	CartID        uint   `json:"cart_id"`
	PaymentMethod string `json:"payment_method"`
	Status        string `json:"status"`
	TotalPrice    string `json:"total_price,omitempty"`
	CreatedAt     string `json:"created_at"`
}

func newOrderResponse(o *order.Order, total mo.Option[decimal.Decimal]) *OrderResponse {
	resp := &OrderResponse{
		ID:            o.ID,
		OrderNo:       o.OrderNo,
		CustomerID:    o.CustomerID,
		CartID:        o.CartID,
		PaymentMethod: string(o.PaymentMethod),
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
	}
	if t, ok := total.Get(); ok {
		resp.TotalPrice = t.StringFixed(2)
	}
	return resp
}

// Execute 执行结算
//
// 整个流程在一个事务中:
//  1. SELECT ... FOR UPDATE 锁定购物车,同一购物车的并发结算在这里排队
//  2. 按固定顺序校验购物车(归属、状态、地址、配送方式、明细、总价、库存)
//  3. 创建订单(orders.cart_id唯一)
//  4. 逐条扣减库存:UPDATE ... WHERE quantity >= n,
//     校验之后库存被其他请求扣走时这里失败,整个事务回滚
//  5. 购物车置为inactive,之后不能再修改或结算
//
// 事务提交后才记录指标、日志并发布order.created事件
func (uc *CreateOrderUseCase) Execute(ctx context.Context, req CreateOrderRequest) (resp *OrderResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, tracing.TracerName, "checkout.create_order")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("cart.id", int64(req.CartID)),
		attribute.Int64("customer.id", int64(req.CustomerID)),
	)

	start := time.Now()
	metrics.CheckoutInProgress.Inc()
	defer func() {
		metrics.CheckoutInProgress.Dec()
		metrics.ObserveSince(metrics.CheckoutDuration, start)
		tracing.RecordError(span, err)
		if err != nil {
			uc.recordFailure(ctx, req, err)
		}
	}()

	method := order.PaymentMethod(req.PaymentMethod)
	if !method.Valid() {
		return nil, order.ErrInvalidPaymentMethod.With("payment_method", req.PaymentMethod)
	}

	var (
		created *order.Order
		total   decimal.Decimal
	)
	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		c, err := uc.carts.LockByID(ctx, req.CartID)
		if err != nil {
			return err
		}

		if err := uc.validator.Validate(ctx, c, req.CustomerID); err != nil {
			return err
		}

		orderNo, err := order.GenerateOrderNo()
		if err != nil {
			return err
		}
		o := order.NewOrder(orderNo, c.CustomerID, c.ID, method)
		if err := uc.orders.Create(ctx, o); err != nil {
			return err
		}

		for _, li := range c.LineItems {
			if err := uc.inventories.DecrementInventory(ctx, li.BookID, li.Quantity); err != nil {
				if errors.Is(err, inventory.ErrInsufficientStock) {
					return cart.ErrLineItemOutOfInventory.
						With("line_item_id", li.ID).
						With("book_id", li.BookID).
						With("requested", li.Quantity)
				}
				return err
			}
		}

		if _, err := uc.carts.Update(ctx, c.ID, cart.UpdateDraft{Status: mo.Some(cart.StatusInactive)}); err != nil {
			return err
		}

		created = o
		total = c.TotalPrice
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.CheckoutOrdersCreatedTotal.Inc()
	span.SetAttributes(attribute.String("order.no", created.OrderNo))
	uc.logger.Info("订单创建成功",
		zap.String("order_no", created.OrderNo),
		zap.Uint("order_id", created.ID),
		zap.Uint("cart_id", created.CartID),
		zap.Uint("customer_id", created.CustomerID),
		zap.String("total_price", total.StringFixed(2)),
		zap.String("trace_id", tracing.ExtractTraceID(ctx)),
	)
	uc.publishCreated(ctx, created, total)

	return newOrderResponse(created, mo.Some(total)), nil
}

// publishCreated 事件发布失败不影响已提交的订单
func (uc *CreateOrderUseCase) publishCreated(ctx context.Context, o *order.Order, total decimal.Decimal) {
	event := order.CreatedEvent{
		OrderID:       o.ID,
		OrderNo:       o.OrderNo,
		CustomerID:    o.CustomerID,
		CartID:        o.CartID,
		PaymentMethod: string(o.PaymentMethod),
		TotalPrice:    total.StringFixed(2),
		CreatedAt:     o.CreatedAt,
	}
	if err := uc.publisher.Publish(ctx, order.RoutingKeyOrderCreated, event); err != nil {
		trace.SpanFromContext(ctx).AddEvent("publish order.created failed")
		uc.logger.Warn("发布订单创建事件失败",
			zap.String("order_no", o.OrderNo),
			zap.String("trace_id", tracing.ExtractTraceID(ctx)),
			zap.Error(err),
		)
	}
}

func (uc *CreateOrderUseCase) recordFailure(ctx context.Context, req CreateOrderRequest, err error) {
	appErr := apperrors.GetAppError(err)
	metrics.CheckoutFailedTotal.WithLabelValues(strconv.Itoa(appErr.Code)).Inc()

	fields := []zap.Field{
		zap.Uint("cart_id", req.CartID),
		zap.Uint("customer_id", req.CustomerID),
		zap.Int("code", appErr.Code),
		zap.String("trace_id", tracing.ExtractTraceID(ctx)),
		zap.Error(err),
	}
	if apperrors.IsInternal(err) {
		uc.logger.Error("结算失败", fields...)
		return
	}
	uc.logger.Info("结算被拒绝", fields...)
}
