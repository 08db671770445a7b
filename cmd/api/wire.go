//go:build wireinject
// +build wireinject

// Wire依赖注入配置，修改后运行 `wire gen ./cmd/api` 重新生成wire_gen.go

package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/application"
	appbook "github.com/xiebiao/bookshop/internal/application/book"
	appcart "github.com/xiebiao/bookshop/internal/application/cart"
	apporder "github.com/xiebiao/bookshop/internal/application/order"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshop/internal/interface/http/handler"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
)

// infrastructureSet 数据库、Redis、消息队列
var infrastructureSet = wire.NewSet(
	mysql.NewDB,
	redis.NewClient,
	providePriceCache,
	wire.Bind(new(book.PriceLookup), new(*redis.PriceCache)),
	wire.Bind(new(appbook.PriceInvalidator), new(*redis.PriceCache)),
	providePublisher,
	provideConsumer,
)

// repositorySet 仓储和事务管理器
var repositorySet = wire.NewSet(
	mysql.NewCartRepository,
	mysql.NewLineItemRepository,
	mysql.NewInventoryRepository,
	mysql.NewOrderRepository,
	mysql.NewAddressRepository,
	mysql.NewTxManager,
	wire.Bind(new(application.Transactor), new(*mysql.TxManager)),
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	provideValidator,
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	appcart.NewManageCartUseCase,
	appcart.NewAddLineItemUseCase,
	appcart.NewRemoveLineItemUseCase,
	appcart.NewUpdateCartUseCase,
	apporder.NewCreateOrderUseCase,
	apporder.NewGetOrderUseCase,
	appbook.NewPriceChangeListener,
)

// middlewareSet JWT和认证中间件
var middlewareSet = wire.NewSet(
	provideJWTManager,
	provideSessionStore,
	middleware.NewAuthMiddleware,
)

// handlerSet HTTP处理器和路由
var handlerSet = wire.NewSet(
	handler.NewCartHandler,
	handler.NewOrderHandler,
	provideGinEngine,
)

// InitializeApp 组装整个应用，cleanup按创建的逆序释放资源
func InitializeApp(cfg *config.Config, logger *zap.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
