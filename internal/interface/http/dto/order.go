package dto

// CreateOrderRequest 结算请求
// 下单人取自Token，不接受客户端传入
type CreateOrderRequest struct {
	CartID        uint   `json:"cart_id" binding:"required,min=1" example:"1"`
	PaymentMethod string `json:"payment_method" binding:"required" example:"credit_card"`
}
