package book

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/pkg/mq"
)

// PriceInvalidator 价格缓存失效
type PriceInvalidator interface {
	Invalidate(ctx context.Context, bookID uint) error
}

// PriceChangeListener 处理book.price_changed事件
// 目录服务调价后删除价格缓存,之后加购按新价格生成单价快照;
// 已在购物车中的明细保持加入时的单价
type PriceChangeListener struct {
	cache  PriceInvalidator
	logger *zap.Logger
}

// NewPriceChangeListener 创建价格变更监听
func NewPriceChangeListener(cache PriceInvalidator, logger *zap.Logger) *PriceChangeListener {
	return &PriceChangeListener{cache: cache, logger: logger}
}

// Handle 实现mq.Handler
// 消息格式错误不会因为重试而变正确,用mq.Permanent丢弃;缓存删除失败重新入队
func (l *PriceChangeListener) Handle(ctx context.Context, body []byte) error {
	var event book.PriceChangedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return mq.Permanent(fmt.Errorf("解析价格变更事件失败: %w", err))
	}
	if event.BookID == 0 {
		return mq.Permanent(fmt.Errorf("价格变更事件缺少book_id"))
	}

	if err := l.cache.Invalidate(ctx, event.BookID); err != nil {
		return err
	}

	l.logger.Info("图书价格已变更,缓存已失效",
		zap.Uint("book_id", event.BookID),
		zap.String("old_price", event.OldPrice.StringFixed(2)),
		zap.String("new_price", event.NewPrice.StringFixed(2)),
	)
	return nil
}

// Run 阻塞消费直到ctx取消
func (l *PriceChangeListener) Run(ctx context.Context, consumer *mq.Consumer) error {
	return consumer.Consume(ctx, l.Handle)
}
