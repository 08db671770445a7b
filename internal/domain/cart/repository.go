package cart

import (
	"context"
)

// Repository 购物车仓储接口
// 所有方法通过ctx参与调用方的工作单元
type Repository interface {
	// Create 创建购物车,回填ID
	Create(ctx context.Context, c *Cart) error

	// FindByID 查询购物车(包含明细)
	FindByID(ctx context.Context, id uint) (*Cart, error)

	// LockByID 悲观锁查询购物车(包含明细)
	// SELECT ... FOR UPDATE,同一购物车的变更和结算串行执行
	LockByID(ctx context.Context, id uint) (*Cart, error)

	// Update 只写入draft中存在的字段,返回更新后的购物车
	Update(ctx context.Context, id uint, draft UpdateDraft) (*Cart, error)

	// Delete 删除购物车
	Delete(ctx context.Context, id uint) error
}

// LineItemRepository 购物车明细仓储接口
type LineItemRepository interface {
	FindByID(ctx context.Context, id uint) (*LineItem, error)

	// FindByCartAndBook 查询购物车中某本书的明细,不存在返回ErrLineItemNotFound
	FindByCartAndBook(ctx context.Context, cartID, bookID uint) (*LineItem, error)

	Create(ctx context.Context, li *LineItem) error

	// Update 只写入draft中存在的字段
	Update(ctx context.Context, id uint, draft LineItemDraft) (*LineItem, error)

	Delete(ctx context.Context, id uint) error
}
