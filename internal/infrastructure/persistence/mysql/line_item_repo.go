package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/cart"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// lineItemRepository 购物车明细仓储实现(MySQL)
type lineItemRepository struct {
	db *gorm.DB
}

// NewLineItemRepository 创建明细仓储
func NewLineItemRepository(db *gorm.DB) cart.LineItemRepository {
	return &lineItemRepository{db: db}
}

func (r *lineItemRepository) FindByID(ctx context.Context, id uint) (*cart.LineItem, error) {
	var model LineItemModel
	err := run(ctx, r.db, func(db *gorm.DB) error {
		return db.First(&model, id).Error
	})
	if err != nil {
		if isNotFound(err) {
			return nil, cart.ErrLineItemNotFound.With("line_item_id", id)
		}
		return nil, apperrors.Wrap(err, "查询购物车明细失败")
	}
	return toLineItemEntity(&model), nil
}

func (r *lineItemRepository) FindByCartAndBook(ctx context.Context, cartID, bookID uint) (*cart.LineItem, error) {
	var model LineItemModel
	err := run(ctx, r.db, func(db *gorm.DB) error {
		return db.Where("cart_id = ? AND book_id = ?", cartID, bookID).First(&model).Error
	})
	if err != nil {
		if isNotFound(err) {
			return nil, cart.ErrLineItemNotFound.With("cart_id", cartID).With("book_id", bookID)
		}
		return nil, apperrors.Wrap(err, "查询购物车明细失败")
	}
	return toLineItemEntity(&model), nil
}

// Create 创建明细
// (cart_id, book_id)唯一索引冲突说明调用方没有先锁购物车
func (r *lineItemRepository) Create(ctx context.Context, li *cart.LineItem) error {
	model := toLineItemModel(li)
	err := run(ctx, r.db, func(db *gorm.DB) error {
		return db.Create(model).Error
	})
	if err != nil {
		if isDuplicateError(err) {
			return apperrors.WrapCode(err, apperrors.ErrCodeBusinessError, "购物车中已有该图书").
				With("cart_id", li.CartID).With("book_id", li.BookID)
		}
		return apperrors.Wrap(err, "创建购物车明细失败")
	}

	li.ID = model.ID
	li.CreatedAt = model.CreatedAt
	li.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *lineItemRepository) Update(ctx context.Context, id uint, draft cart.LineItemDraft) (*cart.LineItem, error) {
	if cols := draft.Columns(); len(cols) > 0 {
		err := run(ctx, r.db, func(db *gorm.DB) error {
			return db.Model(&LineItemModel{}).Where("id = ?", id).Updates(cols).Error
		})
		if err != nil {
			return nil, apperrors.Wrap(err, "更新购物车明细失败")
		}
	}
	return r.FindByID(ctx, id)
}

func (r *lineItemRepository) Delete(ctx context.Context, id uint) error {
	var affected int64
	err := run(ctx, r.db, func(db *gorm.DB) error {
		result := db.Delete(&LineItemModel{}, id)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return apperrors.Wrap(err, "删除购物车明细失败")
	}
	if affected == 0 {
		return cart.ErrLineItemNotFound.With("line_item_id", id)
	}
	return nil
}

func toLineItemModel(li *cart.LineItem) *LineItemModel {
	return &LineItemModel{
		ID:         li.ID,
		CartID:     li.CartID,
		BookID:     li.BookID,
		Quantity:   li.Quantity,
		Price:      li.Price,
		TotalPrice: li.TotalPrice,
		CreatedAt:  li.CreatedAt,
		UpdatedAt:  li.UpdatedAt,
	}
}

func toLineItemEntity(m *LineItemModel) *cart.LineItem {
	return &cart.LineItem{
		ID:         m.ID,
		CartID:     m.CartID,
		BookID:     m.BookID,
		Quantity:   m.Quantity,
		Price:      m.Price,
		TotalPrice: m.TotalPrice,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
