package mysql

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/book"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// bookRepository 图书仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 同时实现book.PriceLookup,作为价格缓存的回源
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// NewBookPriceSource 价格回源(直接查books表)
func NewBookPriceSource(db *gorm.DB) book.PriceLookup {
	return &bookRepository{db: db}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := &BookModel{
		ISBN:   b.ISBN,
		Title:  b.Title,
		Author: b.Author,
		Price:  b.Price,
	}
	err := run(ctx, r.db, func(db *gorm.DB) error {
		return db.Create(model).Error
	})
	if err != nil {
		if isDuplicateError(err) {
			return apperrors.WrapCode(err, apperrors.ErrCodeBusinessError, "ISBN已存在").With("isbn", b.ISBN)
		}
		return apperrors.Wrap(err, "创建图书失败")
	}

	// 回填自增ID
	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := run(ctx, r.db, func(db *gorm.DB) error {
		return db.First(&model, id).Error
	})
	if err != nil {
		if isNotFound(err) {
			return nil, book.ErrBookNotFound.With("book_id", id)
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return &book.Book{
		ID:        model.ID,
		ISBN:      model.ISBN,
		Title:     model.Title,
		Author:    model.Author,
		Price:     model.Price,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}, nil
}

// CurrentPrice 只查询price列
func (r *bookRepository) CurrentPrice(ctx context.Context, bookID uint) (decimal.Decimal, error) {
	var model BookModel
	err := run(ctx, r.db, func(db *gorm.DB) error {
		return db.Select("id", "price").First(&model, bookID).Error
	})
	if err != nil {
		if isNotFound(err) {
			return decimal.Zero, book.ErrBookNotFound.With("book_id", bookID)
		}
		return decimal.Zero, apperrors.Wrap(err, "查询图书价格失败")
	}
	return model.Price, nil
}
