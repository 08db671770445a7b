package book

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshop/pkg/mq"
)

type recordingInvalidator struct {
	ids []uint
	err error
}

func (r *recordingInvalidator) Invalidate(_ context.Context, bookID uint) error {
	r.ids = append(r.ids, bookID)
	return r.err
}

type fixedPrice struct{ price decimal.Decimal }

func (f *fixedPrice) CurrentPrice(context.Context, uint) (decimal.Decimal, error) {
	return f.price, nil
}

func TestPriceChangeListener_Handle(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		invalidateErr error
		wantIDs       []uint
		wantErr       bool
		wantPermanent bool
	}{
		{
			name:    "合法事件删除缓存",
			body:    `{"book_id":7,"old_price":"10.00","new_price":"12.00"}`,
			wantIDs: []uint{7},
		},
		{
			name:          "JSON格式错误直接丢弃",
			body:          `{"book_id":`,
			wantErr:       true,
			wantPermanent: true,
		},
		{
			name:          "缺少book_id直接丢弃",
			body:          `{"new_price":"12.00"}`,
			wantErr:       true,
			wantPermanent: true,
		},
		{
			name:          "缓存不可用时重新入队",
			body:          `{"book_id":7,"old_price":"10.00","new_price":"12.00"}`,
			invalidateErr: errors.New("redis down"),
			wantIDs:       []uint{7},
			wantErr:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &recordingInvalidator{err: tt.invalidateErr}
			l := NewPriceChangeListener(inv, zap.NewNop())

			err := l.Handle(context.Background(), []byte(tt.body))

			assert.Equal(t, tt.wantIDs, inv.ids)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantPermanent, mq.IsPermanent(err))
		})
	}
}

func TestPriceChangeListener_EvictsRedisPrice(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	source := &fixedPrice{price: decimal.RequireFromString("10.00")}
	cache := redis.NewPriceCache(client, source, time.Hour, zap.NewNop())
	ctx := context.Background()

	_, err := cache.CurrentPrice(ctx, 3)
	require.NoError(t, err)
	require.True(t, mr.Exists("book:price:3"))

	source.price = decimal.RequireFromString("8.00")
	l := NewPriceChangeListener(cache, zap.NewNop())
	require.NoError(t, l.Handle(ctx, []byte(`{"book_id":3,"old_price":"10.00","new_price":"8.00"}`)))

	price, err := cache.CurrentPrice(ctx, 3)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("8.00").Equal(price))
}
