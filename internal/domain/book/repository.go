package book

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository 图书仓储接口
// 目录维护不在本服务,这里只需要查询和测试数据准备
type Repository interface {
	// Create 创建图书
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id uint) (*Book, error)
}

// PriceLookup 查询图书当前价格
// 加入购物车时以此价格生成单价快照
type PriceLookup interface {
	CurrentPrice(ctx context.Context, bookID uint) (decimal.Decimal, error)
}

// RoutingKeyPriceChanged 价格变更事件的路由键
const RoutingKeyPriceChanged = "book.price_changed"

// PriceChangedEvent 目录服务发布的价格变更事件(book.price_changed)
type PriceChangedEvent struct {
	BookID   uint            `json:"book_id"`
	OldPrice decimal.Decimal `json:"old_price"`
	NewPrice decimal.Decimal `json:"new_price"`
}
