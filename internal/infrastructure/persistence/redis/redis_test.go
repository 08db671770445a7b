package redis

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
)

// countingSource 记录回源次数
type countingSource struct {
	mu     sync.Mutex
	prices map[uint]decimal.Decimal
	calls  atomic.Int32
	delay  time.Duration
}

func (s *countingSource) CurrentPrice(_ context.Context, bookID uint) (decimal.Decimal, error) {
	s.calls.Add(1)
	time.Sleep(s.delay)
	s.mu.Lock()
	defer s.mu.Unlock()
	price, ok := s.prices[bookID]
	if !ok {
		return decimal.Zero, book.ErrBookNotFound
	}
	return price, nil
}

func (s *countingSource) set(bookID uint, price string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[bookID] = decimal.RequireFromString(price)
}

func setup(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestPriceCache_CacheAside(t *testing.T) {
	mr, client := setup(t)
	source := &countingSource{prices: map[uint]decimal.Decimal{}}
	source.set(1, "10.00")
	cache := NewPriceCache(client, source, time.Minute, zap.NewNop())
	ctx := context.Background()

	price, err := cache.CurrentPrice(ctx, 1)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("10").Equal(price))

	price, err = cache.CurrentPrice(ctx, 1)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("10").Equal(price))
	assert.Equal(t, int32(1), source.calls.Load(), "第二次应命中缓存")

	assert.True(t, mr.Exists("book:price:1"))
	assert.Equal(t, time.Minute, mr.TTL("book:price:1"))

	mr.FastForward(2 * time.Minute)
	_, err = cache.CurrentPrice(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), source.calls.Load(), "过期后重新回源")
}

func TestPriceCache_Invalidate(t *testing.T) {
	_, client := setup(t)
	source := &countingSource{prices: map[uint]decimal.Decimal{}}
	source.set(1, "10.00")
	cache := NewPriceCache(client, source, time.Minute, zap.NewNop())
	ctx := context.Background()

	_, err := cache.CurrentPrice(ctx, 1)
	require.NoError(t, err)

	source.set(1, "12.50")
	require.NoError(t, cache.Invalidate(ctx, 1))

	price, err := cache.CurrentPrice(ctx, 1)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.50").Equal(price))
}

func TestPriceCache_SingleflightCollapsesMisses(t *testing.T) {
	_, client := setup(t)
	source := &countingSource{prices: map[uint]decimal.Decimal{}, delay: 50 * time.Millisecond}
	source.set(7, "3.30")
	cache := NewPriceCache(client, source, time.Minute, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			price, err := cache.CurrentPrice(context.Background(), 7)
			assert.NoError(t, err)
			assert.True(t, decimal.RequireFromString("3.30").Equal(price))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), source.calls.Load())
}

func TestPriceCache_SourceErrorNotCached(t *testing.T) {
	mr, client := setup(t)
	source := &countingSource{prices: map[uint]decimal.Decimal{}}
	cache := NewPriceCache(client, source, time.Minute, zap.NewNop())

	_, err := cache.CurrentPrice(context.Background(), 404)
	assert.True(t, errors.Is(err, book.ErrBookNotFound))
	assert.False(t, mr.Exists("book:price:404"))
}

func TestPriceCache_DegradesWhenRedisDown(t *testing.T) {
	mr, client := setup(t)
	source := &countingSource{prices: map[uint]decimal.Decimal{}}
	source.set(1, "9.90")
	cache := NewPriceCache(client, source, time.Minute, zap.NewNop())
	mr.Close()

	price, err := cache.CurrentPrice(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("9.90").Equal(price))
}

func TestSessionStore_Blacklist(t *testing.T) {
	mr, client := setup(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	revoked, err := store.IsInBlacklist(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.AddToBlacklist(ctx, "token-a", time.Hour))
	revoked, err = store.IsInBlacklist(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Hour)
	revoked, err = store.IsInBlacklist(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, revoked, "过期后自动移出黑名单")
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{}
	cfg.Redis.Host = mr.Host()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	cfg.Redis.Port = port
	cfg.Redis.DialTimeout = time.Second

	client, cleanup, err := NewClient(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, client.Ping(context.Background()).Err())

	// cleanup关闭客户端
	cleanup()
	assert.ErrorIs(t, client.Ping(context.Background()).Err(), redis.ErrClosed)

	mr.Close()
	client, cleanup, err = NewClient(cfg, zap.NewNop())
	assert.Error(t, err)
	assert.Nil(t, client)
	assert.Nil(t, cleanup)
}
