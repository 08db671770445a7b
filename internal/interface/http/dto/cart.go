package dto

import (
	"github.com/samber/mo"
	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookshop/internal/domain/cart"
)

// AddLineItemRequest 加入购物车请求
type AddLineItemRequest struct {
	BookID   uint `json:"book_id" binding:"required,min=1" example:"1"`
	Quantity int  `json:"quantity" binding:"required,min=1,max=999" example:"2"`
}

// RemoveLineItemQuery 移除明细的查询参数
type RemoveLineItemQuery struct {
	Quantity int `form:"quantity" binding:"required,min=1" example:"1"`
}

// UpdateCartRequest 购物车部分更新请求
// 未出现的字段保持不变，出现的字段即使为零值也会写入
type UpdateCartRequest struct {
	Status            *string          `json:"status,omitempty" example:"active"`
	TotalPrice        *decimal.Decimal `json:"total_price,omitempty" swaggertype:"string" example:"25.00"`
	BillingAddressID  *uint            `json:"billing_address_id,omitempty" example:"3"`
	ShippingAddressID *uint            `json:"shipping_address_id,omitempty" example:"3"`
	DeliveryMethod    *string          `json:"delivery_method,omitempty" example:"standard"`
}

// ToDraft 转换为领域层的部分更新草稿
func (r *UpdateCartRequest) ToDraft() cart.UpdateDraft {
	return cart.UpdateDraft{
		Status:            mo.TupleToOption(toStatus(r.Status)),
		TotalPrice:        mo.PointerToOption(r.TotalPrice),
		BillingAddressID:  mo.PointerToOption(r.BillingAddressID),
		ShippingAddressID: mo.PointerToOption(r.ShippingAddressID),
		DeliveryMethod:    mo.TupleToOption(toDeliveryMethod(r.DeliveryMethod)),
	}
}

func toStatus(s *string) (cart.Status, bool) {
	if s == nil {
		return "", false
	}
	return cart.Status(*s), true
}

func toDeliveryMethod(s *string) (cart.DeliveryMethod, bool) {
	if s == nil {
		return "", false
	}
	return cart.DeliveryMethod(*s), true
}
