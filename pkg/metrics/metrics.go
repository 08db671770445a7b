// Package metrics 提供基于Prometheus的指标收集
//
// 指标分组：
//   - HTTP：请求数、耗时、处理中请求数（middleware.Metrics写入）
//   - 结算：订单创建数、失败数（按原因）、耗时、处理中数量
//   - 购物车：各变更操作的结果
//   - 工作单元：事务提交/回滚/开启失败次数
//   - 熔断器、消息队列、价格缓存
//
// 命名规范：Counter以_total结尾，Histogram以单位结尾（_seconds）。
// 标签只使用有限取值（method、reason、result），不使用cart_id等高基数字段。
//
// 使用示例：
//
//	metrics.InitMetrics()
//	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
//	start := time.Now()
//	metrics.CheckoutInProgress.Inc()
//	defer metrics.CheckoutInProgress.Dec()
//	...
//	metrics.ObserveSince(metrics.CheckoutDuration, start)
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	initOnce sync.Once

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数
	// 标签：method、path（路由模板）、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// 结算指标

	// CheckoutOrdersCreatedTotal 结算成功（订单创建）总数
	CheckoutOrdersCreatedTotal prometheus.Counter

	// CheckoutFailedTotal 结算失败总数
	// 标签：reason（错误码，如40025）
	CheckoutFailedTotal *prometheus.CounterVec

	// CheckoutDuration 结算耗时（含事务）
	CheckoutDuration prometheus.Histogram

	// CheckoutInProgress 正在结算的请求数
	CheckoutInProgress prometheus.Gauge

	// CartMutationsTotal 购物车变更次数
	// 标签：operation（add_line_item/remove_line_item/update_cart）、result（success/failure）
	CartMutationsTotal *prometheus.CounterVec

	// UnitOfWorkTotal 工作单元结束次数
	// 标签：outcome（committed/rolled_back/start_failed）
	UnitOfWorkTotal *prometheus.CounterVec

	// 熔断器指标

	// CircuitBreakerState 熔断器状态
	// 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数
	// 标签：name、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数
	// 标签：exchange、routing_key、result
	MessagesPublishedTotal *prometheus.CounterVec

	// MessagesConsumedTotal 消息消费总数
	// 标签：queue、result
	MessagesConsumedTotal *prometheus.CounterVec

	// MessageProcessingDuration 消息处理耗时
	MessageProcessingDuration prometheus.Histogram

	// PriceCacheRequests 图书价格缓存访问次数
	// 标签：result（hit/miss/error）
	PriceCacheRequests *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标（注册到默认Registry，重复调用无副作用）
func InitMetrics() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	CheckoutOrdersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "checkout_orders_created_total",
			Help: "结算成功创建的订单总数",
		},
	)

	CheckoutFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_failed_total",
			Help: "结算失败总数",
		},
		[]string{"reason"},
	)

	CheckoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "checkout_duration_seconds",
			Help: "结算耗时（秒）",
			// 单事务内多次库存查询和扣减
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	CheckoutInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "checkout_in_progress",
			Help: "正在结算的请求数",
		},
	)

	CartMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_mutations_total",
			Help: "购物车变更次数",
		},
		[]string{"operation", "result"},
	)

	UnitOfWorkTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unit_of_work_total",
			Help: "工作单元结束次数",
		},
		[]string{"outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key", "result"},
	)

	MessagesConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_consumed_total",
			Help: "消息消费总数",
		},
		[]string{"queue", "result"},
	)

	MessageProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "message_processing_duration_seconds",
			Help:    "消息处理耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
		},
	)

	PriceCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "price_cache_requests_total",
			Help: "图书价格缓存访问次数",
		},
		[]string{"result"},
	)
}

// Result 将error转换为result标签值
func Result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// ObserveSince 记录从start到现在的耗时（秒）
func ObserveSince(histogram prometheus.Observer, start time.Time) {
	histogram.Observe(time.Since(start).Seconds())
}
