package mysql

import (
	"context"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookshop/internal/domain/cart"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// cartRepository 购物车仓储实现(MySQL)
// 设计说明:
// 1. 购物车和明细是聚合关系,查询时Preload明细(按id排序保持加入顺序)
// 2. 明细的增删改由lineItemRepository负责,这里不级联保存
// 3. 事务通过context传递
type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Create(ctx context.Context, c *cart.Cart) error {
	model := toCartModel(c)
	err := run(ctx, r.db, func(db *gorm.DB) error {
		return db.Omit(clause.Associations).Create(model).Error
	})
	if err != nil {
		return apperrors.Wrap(err, "创建购物车失败")
	}

	c.ID = model.ID
	c.CreatedAt = model.CreatedAt
	c.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *cartRepository) FindByID(ctx context.Context, id uint) (*cart.Cart, error) {
	return r.find(ctx, id, false)
}

// LockByID 悲观锁查询
// SELECT * FROM carts WHERE id = ? FOR UPDATE
// 必须在事务中调用,否则锁在语句结束时立即释放
func (r *cartRepository) LockByID(ctx context.Context, id uint) (*cart.Cart, error) {
	return r.find(ctx, id, true)
}

func (r *cartRepository) find(ctx context.Context, id uint, lock bool) (*cart.Cart, error) {
	var model CartModel
	err := run(ctx, r.db, func(db *gorm.DB) error {
		if lock {
			db = db.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		return db.Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).First(&model, id).Error
	})
	if err != nil {
		if isNotFound(err) {
			return nil, cart.ErrCartNotFound.With("cart_id", id)
		}
		return nil, apperrors.Wrap(err, "查询购物车失败")
	}
	return toCartEntity(&model), nil
}

// Update 按列更新
// MySQL对值未变化的行返回影响行数0,所以不用RowsAffected判断是否存在,而是重新查询
func (r *cartRepository) Update(ctx context.Context, id uint, draft cart.UpdateDraft) (*cart.Cart, error) {
	if cols := draft.Columns(); len(cols) > 0 {
		err := run(ctx, r.db, func(db *gorm.DB) error {
			return db.Model(&CartModel{}).Where("id = ?", id).Updates(cols).Error
		})
		if err != nil {
			return nil, apperrors.Wrap(err, "更新购物车失败")
		}
	}
	return r.FindByID(ctx, id)
}

func (r *cartRepository) Delete(ctx context.Context, id uint) error {
	var affected int64
	err := run(ctx, r.db, func(db *gorm.DB) error {
		result := db.Delete(&CartModel{}, id)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return apperrors.Wrap(err, "删除购物车失败")
	}
	if affected == 0 {
		return cart.ErrCartNotFound.With("cart_id", id)
	}
	return nil
}

// ========== 模型转换 ==========

func toCartModel(c *cart.Cart) *CartModel {
	var method *string
	if m, ok := c.DeliveryMethod.Get(); ok {
		method = lo.ToPtr(string(m))
	}
	return &CartModel{
		ID:                c.ID,
		CustomerID:        c.CustomerID,
		Status:            string(c.Status),
		TotalPrice:        c.TotalPrice,
		BillingAddressID:  optionalPtr(c.BillingAddressID.Get()),
		ShippingAddressID: optionalPtr(c.ShippingAddressID.Get()),
		DeliveryMethod:    method,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func toCartEntity(m *CartModel) *cart.Cart {
	c := &cart.Cart{
		ID:                m.ID,
		CustomerID:        m.CustomerID,
		Status:            cart.Status(m.Status),
		TotalPrice:        m.TotalPrice,
		BillingAddressID:  mo.PointerToOption(m.BillingAddressID),
		ShippingAddressID: mo.PointerToOption(m.ShippingAddressID),
		LineItems: lo.Map(m.LineItems, func(li LineItemModel, _ int) cart.LineItem {
			return *toLineItemEntity(&li)
		}),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.DeliveryMethod != nil {
		c.DeliveryMethod = mo.Some(cart.DeliveryMethod(*m.DeliveryMethod))
	}
	return c
}
