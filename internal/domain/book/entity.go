package book

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book 图书(目录只读视图)
// 价格使用decimal,与购物车明细的单价快照保持同一精度(两位小数)
type Book struct {
	ID        uint
	ISBN      string
	Title     string
	Author    string
	Price     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBook 创建图书(工厂方法),价格必须>0
func NewBook(isbn, title, author string, price decimal.Decimal) (*Book, error) {
	if !price.IsPositive() {
		return nil, ErrInvalidPrice
	}
	now := time.Now()
	return &Book{
		ISBN:      isbn,
		Title:     title,
		Author:    author,
		Price:     price.Round(2),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
