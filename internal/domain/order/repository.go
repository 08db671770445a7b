package order

import (
	"context"
)

// Repository 订单仓储接口(依赖倒置原则)
type Repository interface {
	// Create 创建订单,同一购物车重复创建返回ErrOrderExists
	Create(ctx context.Context, o *Order) error

	// FindByID 根据ID查找订单
	FindByID(ctx context.Context, id uint) (*Order, error)

	// FindByCartID 查找购物车生成的订单
	FindByCartID(ctx context.Context, cartID uint) (*Order, error)
}
