// Package router 组装Gin引擎：全局中间件、运维端点和/api/v1业务路由
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/interface/http/handler"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
)

// Options 路由依赖
type Options struct {
	Mode          string // debug/release/test
	ServiceName   string // otelgin的span服务名
	EnableSwagger bool

	Logger         *zap.Logger
	AuthMiddleware *middleware.AuthMiddleware
	CartHandler    *handler.CartHandler
	OrderHandler   *handler.OrderHandler
}

// New 创建Gin引擎并注册全部路由
//
// 中间件顺序：Recovery → otelgin → Logger → Metrics
// otelgin在Logger之前，日志里才能带上trace_id
func New(opts Options) *gin.Engine {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		otelgin.Middleware(opts.ServiceName),
		middleware.Logger(opts.Logger),
		middleware.Metrics(),
	)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 生产环境关闭
	if opts.EnableSwagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	v1.Use(opts.AuthMiddleware.RequireAuth())
	{
		carts := v1.Group("/carts")
		{
			carts.POST("", opts.CartHandler.CreateCart)
			carts.GET("/:id", opts.CartHandler.GetCart)
			carts.PATCH("/:id", opts.CartHandler.UpdateCart)
			carts.DELETE("/:id", opts.CartHandler.DeleteCart)
			carts.POST("/:id/items", opts.CartHandler.AddLineItem)
			carts.DELETE("/:id/items/:item_id", opts.CartHandler.RemoveLineItem)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", opts.OrderHandler.CreateOrder)
			orders.GET("/:id", opts.OrderHandler.GetOrder)
		}
	}

	return r
}
