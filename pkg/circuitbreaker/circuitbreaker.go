// Package circuitbreaker 基于sony/gobreaker的熔断器封装
//
// 三种状态：
//   - CLOSED：请求正常通过，统计连续失败次数
//   - OPEN：请求快速失败（ErrOpenState），Timeout后转为HALF_OPEN
//   - HALF_OPEN：放行MaxRequests个探测请求，成功则CLOSED，失败则回到OPEN
//
// 用于保护结算后的事件发布：消息队列不可用时快速失败，不拖慢请求。
//
//	err := breaker.Execute(func() error {
//	    return publisher.Publish(ctx, "order.created", event)
//	})
package circuitbreaker

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/pkg/metrics"
)

var (
	// ErrOpenState 熔断器打开
	ErrOpenState = gobreaker.ErrOpenState
	// ErrTooManyRequests 半开状态下探测请求数已满
	ErrTooManyRequests = gobreaker.ErrTooManyRequests
)

// State 熔断器状态
type State = gobreaker.State

const (
	StateClosed   = gobreaker.StateClosed
	StateHalfOpen = gobreaker.StateHalfOpen
	StateOpen     = gobreaker.StateOpen
)

// Config 熔断器配置
type Config struct {
	// MaxRequests 半开状态下允许的最大请求数
	MaxRequests uint32
	// Interval CLOSED状态下统计窗口，到期清零计数
	Interval time.Duration
	// Timeout OPEN状态持续时间
	Timeout time.Duration
	// ConsecutiveFailures 连续失败多少次后熔断
	ConsecutiveFailures uint32
}

// Breaker 熔断器
type Breaker struct {
	name string
	cb   *gobreaker.CircuitBreaker[struct{}]
}

// New 创建熔断器，状态变化写入日志和circuit_breaker_state指标
func New(name string, cfg Config, logger *zap.Logger) *Breaker {
	metrics.InitMetrics()
	if logger == nil {
		logger = zap.NewNop()
	}

	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("熔断器状态变化",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.CircuitBreakerState.With(prometheus.Labels{"name": name}).Set(stateValue(to))
		},
	}

	metrics.CircuitBreakerState.With(prometheus.Labels{"name": name}).Set(stateValue(StateClosed))
	return &Breaker{
		name: name,
		cb:   gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

// Execute 在熔断器保护下执行fn
// 熔断时返回ErrOpenState或ErrTooManyRequests，fn不会被调用
func (b *Breaker) Execute(fn func() error) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})

	result := "success"
	switch {
	case IsRejected(err):
		result = "rejected"
	case err != nil:
		result = "failure"
	}
	metrics.CircuitBreakerRequests.With(prometheus.Labels{"name": b.name, "result": result}).Inc()

	return err
}

// State 当前状态
func (b *Breaker) State() State {
	return b.cb.State()
}

// Counts 当前统计数据
func (b *Breaker) Counts() gobreaker.Counts {
	return b.cb.Counts()
}

// IsRejected 判断错误是否来自熔断（而非业务函数本身）
func IsRejected(err error) bool {
	return errors.Is(err, ErrOpenState) || errors.Is(err, ErrTooManyRequests)
}

// stateValue 指标取值：0=CLOSED, 1=OPEN, 2=HALF_OPEN
func stateValue(s State) float64 {
	switch s {
	case StateOpen:
		return 1
	case StateHalfOpen:
		return 2
	default:
		return 0
	}
}
