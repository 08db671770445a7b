package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/pkg/metrics"
)

// PriceCache 图书价格缓存(cache-aside)
// 设计说明：
// 1. 先查Redis，未命中回源查询books表，再写回Redis
// 2. 同一本书的并发未命中用singleflight合并成一次回源
// 3. Redis不可用时降级为直接回源，不影响加购
// 4. 价格变更事件到达时通过Invalidate删除缓存
type PriceCache struct {
	client *redis.Client
	source book.PriceLookup
	ttl    time.Duration
	logger *zap.Logger
	group  singleflight.Group
}

// NewPriceCache 创建价格缓存
func NewPriceCache(client *redis.Client, source book.PriceLookup, ttl time.Duration, logger *zap.Logger) *PriceCache {
	metrics.InitMetrics()
	return &PriceCache{
		client: client,
		source: source,
		ttl:    ttl,
		logger: logger,
	}
}

func priceKey(bookID uint) string {
	return fmt.Sprintf("book:price:%d", bookID)
}

// CurrentPrice 实现book.PriceLookup
func (c *PriceCache) CurrentPrice(ctx context.Context, bookID uint) (decimal.Decimal, error) {
	if price, ok := c.get(ctx, bookID); ok {
		metrics.PriceCacheRequests.WithLabelValues("hit").Inc()
		return price, nil
	}
	metrics.PriceCacheRequests.WithLabelValues("miss").Inc()

	v, err, _ := c.group.Do(strconv.FormatUint(uint64(bookID), 10), func() (interface{}, error) {
		if price, ok := c.get(ctx, bookID); ok {
			return price, nil
		}
		price, err := c.source.CurrentPrice(ctx, bookID)
		if err != nil {
			return decimal.Zero, err
		}
		if err := c.client.Set(ctx, priceKey(bookID), price.String(), c.ttl).Err(); err != nil {
			c.logger.Warn("写入价格缓存失败", zap.Uint("book_id", bookID), zap.Error(err))
		}
		return price, nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return v.(decimal.Decimal), nil
}

func (c *PriceCache) get(ctx context.Context, bookID uint) (decimal.Decimal, bool) {
	raw, err := c.client.Get(ctx, priceKey(bookID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			metrics.PriceCacheRequests.WithLabelValues("error").Inc()
			c.logger.Warn("读取价格缓存失败", zap.Uint("book_id", bookID), zap.Error(err))
		}
		return decimal.Zero, false
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		c.logger.Warn("价格缓存内容非法", zap.Uint("book_id", bookID), zap.String("raw", raw))
		return decimal.Zero, false
	}
	return price, true
}

// Invalidate 删除缓存，下次查询回源
func (c *PriceCache) Invalidate(ctx context.Context, bookID uint) error {
	if err := c.client.Del(ctx, priceKey(bookID)).Err(); err != nil {
		return fmt.Errorf("删除价格缓存失败: %w", err)
	}
	return nil
}
