package mq

import (
	"context"

	"github.com/xiebiao/bookshop/pkg/circuitbreaker"
)

// GuardedPublisher 熔断器保护的发布者
// 连续发布失败后快速失败，不再等待Broker超时
type GuardedPublisher struct {
	next    EventPublisher
	breaker *circuitbreaker.Breaker
}

// NewGuardedPublisher 包装发布者
func NewGuardedPublisher(next EventPublisher, breaker *circuitbreaker.Breaker) *GuardedPublisher {
	return &GuardedPublisher{next: next, breaker: breaker}
}

// Publish 经熔断器发布
func (g *GuardedPublisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	return g.breaker.Execute(func() error {
		return g.next.Publish(ctx, routingKey, message)
	})
}
