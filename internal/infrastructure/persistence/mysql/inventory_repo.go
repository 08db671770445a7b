package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/inventory"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// inventoryRepository 库存访问实现(MySQL)
// 设计说明:
// 1. 结算扣减使用条件UPDATE,一条语句完成"检查+扣减",不依赖读取时的快照
// 2. 影响行数为0再区分"记录不存在"和"库存不足"
type inventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository 创建库存仓储
func NewInventoryRepository(db *gorm.DB) inventory.Gateway {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) FindInventory(ctx context.Context, q inventory.Query) (*inventory.Inventory, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var model InventoryModel
	err := run(ctx, r.db, func(db *gorm.DB) error {
		if id, ok := q.ID.Get(); ok {
			db = db.Where("id = ?", id)
		}
		if bookID, ok := q.BookID.Get(); ok {
			db = db.Where("book_id = ?", bookID)
		}
		return db.First(&model).Error
	})
	if err != nil {
		if isNotFound(err) {
			appErr := inventory.ErrInventoryNotFound
			if bookID, ok := q.BookID.Get(); ok {
				appErr = appErr.With("book_id", bookID)
			}
			if id, ok := q.ID.Get(); ok {
				appErr = appErr.With("inventory_id", id)
			}
			return nil, appErr
		}
		return nil, apperrors.Wrap(err, "查询库存失败")
	}
	return toInventoryEntity(&model), nil
}

func (r *inventoryRepository) UpdateInventory(ctx context.Context, id uint, quantity int) (*inventory.Inventory, error) {
	if quantity < 0 {
		return nil, inventory.ErrInvalidQuantity
	}
	err := run(ctx, r.db, func(db *gorm.DB) error {
		return db.Model(&InventoryModel{}).Where("id = ?", id).Update("quantity", quantity).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "更新库存失败")
	}
	return r.FindInventory(ctx, inventory.ByID(id))
}

// DecrementInventory 条件扣减
// UPDATE inventories SET quantity = quantity - ? WHERE book_id = ? AND quantity >= ?
// 并发结算同一本书时,后到的语句等待行锁,拿到锁后重新判断quantity >= ?
func (r *inventoryRepository) DecrementInventory(ctx context.Context, bookID uint, quantity int) error {
	if quantity <= 0 {
		return inventory.ErrInvalidQuantity
	}

	var affected, exists int64
	err := run(ctx, r.db, func(db *gorm.DB) error {
		result := db.Model(&InventoryModel{}).
			Where("book_id = ? AND quantity >= ?", bookID, quantity).
			Update("quantity", gorm.Expr("quantity - ?", quantity))
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		if affected > 0 {
			return nil
		}
		return db.Model(&InventoryModel{}).Where("book_id = ?", bookID).Count(&exists).Error
	})
	if err != nil {
		return apperrors.Wrap(err, "扣减库存失败")
	}
	if affected > 0 {
		return nil
	}
	if exists == 0 {
		return inventory.ErrInventoryNotFound.With("book_id", bookID)
	}
	return inventory.ErrInsufficientStock.With("book_id", bookID).With("requested", quantity)
}

func (r *inventoryRepository) Create(ctx context.Context, inv *inventory.Inventory) error {
	if inv.Quantity < 0 {
		return inventory.ErrInvalidQuantity
	}
	model := &InventoryModel{
		BookID:   inv.BookID,
		Quantity: inv.Quantity,
	}
	err := run(ctx, r.db, func(db *gorm.DB) error {
		return db.Create(model).Error
	})
	if err != nil {
		if isDuplicateError(err) {
			return inventory.ErrDuplicateBook.With("book_id", inv.BookID)
		}
		return apperrors.Wrap(err, "创建库存失败")
	}

	inv.ID = model.ID
	inv.CreatedAt = model.CreatedAt
	inv.UpdatedAt = model.UpdatedAt
	return nil
}

func toInventoryEntity(m *InventoryModel) *inventory.Inventory {
	return &inventory.Inventory{
		ID:        m.ID,
		BookID:    m.BookID,
		Quantity:  m.Quantity,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
