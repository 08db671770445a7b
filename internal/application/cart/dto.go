package cart

import (
	"time"

	"github.com/samber/lo"

	"github.com/xiebiao/bookshop/internal/domain/cart"
)

// CartResponse 购物车响应DTO
// 金额统一输出两位小数的字符串,避免浮点误差
type CartResponse struct {
	ID                uint               `json:"id"`
	CustomerID        uint               `json:"customer_id"`
	Status            string             `json:"status"`
	TotalPrice        string             `json:"total_price"`
	BillingAddressID  *uint              `json:"billing_address_id"`
	ShippingAddressID *uint              `json:"shipping_address_id"`
	DeliveryMethod    *string            `json:"delivery_method"`
	LineItems         []LineItemResponse `json:"line_items"`
	CreatedAt         string             `json:"created_at"`
	UpdatedAt         string             `json:"updated_at"`
}

// LineItemResponse 购物车明细
type LineItemResponse struct {
	ID         uint   `json:"id"`
	BookID     uint   `json:"book_id"`
	Quantity   int    `json:"quantity"`
	Price      string `json:"price"`
	TotalPrice string `json:"total_price"`
}

// NewCartResponse 领域实体 → 响应DTO
func NewCartResponse(c *cart.Cart) *CartResponse {
	var method *string
	if m, ok := c.DeliveryMethod.Get(); ok {
		method = lo.ToPtr(string(m))
	}
	return &CartResponse{
		ID:                c.ID,
		CustomerID:        c.CustomerID,
		Status:            string(c.Status),
		TotalPrice:        c.TotalPrice.StringFixed(2),
		BillingAddressID:  c.BillingAddressID.ToPointer(),
		ShippingAddressID: c.ShippingAddressID.ToPointer(),
		DeliveryMethod:    method,
		LineItems: lo.Map(c.LineItems, func(li cart.LineItem, _ int) LineItemResponse {
			return LineItemResponse{
				ID:         li.ID,
				BookID:     li.BookID,
				Quantity:   li.Quantity,
				Price:      li.Price.StringFixed(2),
				TotalPrice: li.TotalPrice.StringFixed(2),
			}
		}),
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}
