package inventory

import (
	"context"
)

// Gateway 库存访问接口
// 库存也会被库存管理流程直接修改,结算只依赖这里的原子扣减
type Gateway interface {
	// FindInventory 按ID或BookID查询,不存在返回ErrInventoryNotFound
	FindInventory(ctx context.Context, q Query) (*Inventory, error)

	// UpdateInventory 直接设置库存数量(库存管理使用)
	UpdateInventory(ctx context.Context, id uint, quantity int) (*Inventory, error)

	// DecrementInventory 条件扣减
	// UPDATE ... SET quantity = quantity - n WHERE book_id = ? AND quantity >= n
	// 影响行数为0时返回ErrInsufficientStock(记录不存在返回ErrInventoryNotFound)
	DecrementInventory(ctx context.Context, bookID uint, quantity int) error

	// Create 创建库存记录,同一本书重复创建返回ErrDuplicateBook
	Create(ctx context.Context, inv *Inventory) error
}
