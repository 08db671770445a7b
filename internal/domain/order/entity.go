package order

import (
	"time"
)

// Status 订单状态
// 结算只产生created状态,后续流转(支付、发货)由订单服务负责
type Status string

const (
	StatusCreated Status = "created"
)

// PaymentMethod 支付方式
type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "credit_card"
	PaymentPayPal         PaymentMethod = "paypal"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// Valid 是否为支持的支付方式
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentPayPal, PaymentBankTransfer, PaymentCashOnDelivery:
		return true
	}
	return false
}

// Order 订单实体
// 设计说明:
// 1. 订单不复制明细,通过CartID关联结算时的购物车明细
// 2. 一个购物车最多产生一个订单(orders.cart_id唯一索引)
// 3. 创建后不可变
type Order struct {
	ID            uint
	OrderNo       string // 订单号(业务主键,全局唯一)
	CustomerID    uint
	CartID        uint
	PaymentMethod PaymentMethod
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewOrder 创建新订单(工厂方法),初始状态为created
func NewOrder(orderNo string, customerID, cartID uint, paymentMethod PaymentMethod) *Order {
	now := time.Now()
	return &Order{
		OrderNo:       orderNo,
		CustomerID:    customerID,
		CartID:        cartID,
		PaymentMethod: paymentMethod,
		Status:        StatusCreated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// IsOwnedBy 检查订单是否属于指定顾客
func (o *Order) IsOwnedBy(customerID uint) bool {
	return o.CustomerID == customerID
}
