package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/order"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// orderRepository 订单仓储实现(MySQL)
// 设计说明:
// 1. 订单不保存明细,明细留在已结算(inactive)的购物车上
// 2. orders.cart_id唯一索引是"一个购物车最多一个订单"的最后一道防线
// 3. 事务通过context传递
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 创建订单
// 必须在结算事务中调用
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)
	err := run(ctx, r.db, func(db *gorm.DB) error {
		return db.Create(model).Error
	})
	if err != nil {
		if isDuplicateKey(err, "cart_id") {
			return order.ErrOrderExists.With("cart_id", o.CartID)
		}
		return apperrors.Wrap(err, "创建订单失败")
	}

	o.ID = model.ID
	o.CreatedAt = model.CreatedAt
	o.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	err := run(ctx, r.db, func(db *gorm.DB) error {
		return db.First(&model, id).Error
	})
	if err != nil {
		if isNotFound(err) {
			return nil, order.ErrOrderNotFound.With("order_id", id)
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}
	return toOrderEntity(&model), nil
}

func (r *orderRepository) FindByCartID(ctx context.Context, cartID uint) (*order.Order, error) {
	var model OrderModel
	err := run(ctx, r.db, func(db *gorm.DB) error {
		return db.Where("cart_id = ?", cartID).First(&model).Error
	})
	if err != nil {
		if isNotFound(err) {
			return nil, order.ErrOrderNotFound.With("cart_id", cartID)
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}
	return toOrderEntity(&model), nil
}

func toOrderModel(o *order.Order) *OrderModel {
	return &OrderModel{
		ID:            o.ID,
		OrderNo:       o.OrderNo,
		CustomerID:    o.CustomerID,
		CartID:        o.CartID,
		PaymentMethod: string(o.PaymentMethod),
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func toOrderEntity(m *OrderModel) *order.Order {
	return &order.Order{
		ID:            m.ID,
		OrderNo:       m.OrderNo,
		CustomerID:    m.CustomerID,
		CartID:        m.CartID,
		PaymentMethod: order.PaymentMethod(m.PaymentMethod),
		Status:        order.Status(m.Status),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
