package order

import (
	"time"
)

// RoutingKeyOrderCreated 订单创建事件的路由键
const RoutingKeyOrderCreated = "order.created"

// CreatedEvent 结算成功后发布的事件(事务提交之后)
type CreatedEvent struct {
	OrderID       uint      `json:"order_id"`
	OrderNo       string    `json:"order_no"`
	CustomerID    uint      `json:"customer_id"`
	CartID        uint      `json:"cart_id"`
	PaymentMethod string    `json:"payment_method"`
	TotalPrice    string    `json:"total_price"`
	CreatedAt     time.Time `json:"created_at"`
}
