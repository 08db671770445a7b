package main

import (
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appbook "github.com/xiebiao/bookshop/internal/application/book"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/cart"
	"github.com/xiebiao/bookshop/internal/domain/inventory"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshop/internal/interface/http/handler"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/internal/interface/http/router"
	"github.com/xiebiao/bookshop/pkg/circuitbreaker"
	"github.com/xiebiao/bookshop/pkg/jwt"
	"github.com/xiebiao/bookshop/pkg/mq"
)

const exchangeType = "topic"

// App 进程级依赖：HTTP引擎和价格变更消费者（mq关闭时Consumer为nil）
type App struct {
	Engine        *gin.Engine
	PriceListener *appbook.PriceChangeListener
	Consumer      *mq.Consumer
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire)
}

func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// providePriceCache 价格读取走Redis，未命中回源MySQL
func providePriceCache(client *goredis.Client, db *gorm.DB, cfg *config.Config, logger *zap.Logger) *redis.PriceCache {
	return redis.NewPriceCache(client, mysql.NewBookPriceSource(db), cfg.Checkout.PriceCacheTTL, logger)
}

func provideValidator(inventories inventory.Gateway, cfg *config.Config) *cart.Validator {
	return cart.NewValidator(inventories, cfg.Checkout.ValidationConcurrency)
}

// providePublisher mq关闭时事件直接丢弃；开启时发布经过熔断器
func providePublisher(cfg *config.Config, logger *zap.Logger) (mq.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		return mq.NopPublisher{}, func() {}, nil
	}

	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, exchangeType, logger)
	if err != nil {
		return nil, nil, err
	}
	breaker := circuitbreaker.New("order-events", circuitbreaker.Config{
		MaxRequests:         cfg.Breaker.MaxRequests,
		Interval:            cfg.Breaker.Interval,
		Timeout:             cfg.Breaker.Timeout,
		ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
	}, logger)

	cleanup := func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("关闭消息发布者失败", zap.Error(err))
		}
	}
	return mq.NewGuardedPublisher(publisher, breaker), cleanup, nil
}

func provideConsumer(cfg *config.Config, logger *zap.Logger) (*mq.Consumer, func(), error) {
	if !cfg.MQ.Enabled {
		return nil, func() {}, nil
	}

	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, exchangeType, cfg.MQ.PriceQueue,
		[]string{book.RoutingKeyPriceChanged}, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := consumer.Close(); err != nil {
			logger.Warn("关闭消息消费者失败", zap.Error(err))
		}
	}
	return consumer, cleanup, nil
}

func provideGinEngine(
	cfg *config.Config,
	logger *zap.Logger,
	authMiddleware *middleware.AuthMiddleware,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
) *gin.Engine {
	return router.New(router.Options{
		Mode:           cfg.Server.Mode,
		ServiceName:    cfg.Tracing.ServiceName,
		EnableSwagger:  cfg.Server.Mode != gin.ReleaseMode,
		Logger:         logger,
		AuthMiddleware: authMiddleware,
		CartHandler:    cartHandler,
		OrderHandler:   orderHandler,
	})
}
