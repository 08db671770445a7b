package cart

import (
	"time"

	"github.com/samber/mo"
	"github.com/shopspring/decimal"
)

// UpdateDraft 购物车部分更新
// 每个字段都是mo.Option,只有Some的字段会被写入
type UpdateDraft struct {
	Status            mo.Option[Status]
	TotalPrice        mo.Option[decimal.Decimal]
	BillingAddressID  mo.Option[uint]
	ShippingAddressID mo.Option[uint]
	DeliveryMethod    mo.Option[DeliveryMethod]
}

// IsEmpty 没有任何字段需要更新
func (d UpdateDraft) IsEmpty() bool {
	return d.Status.IsAbsent() &&
		d.TotalPrice.IsAbsent() &&
		d.BillingAddressID.IsAbsent() &&
		d.ShippingAddressID.IsAbsent() &&
		d.DeliveryMethod.IsAbsent()
}

// Apply 将存在的字段写入购物车
func (d UpdateDraft) Apply(c *Cart) {
	if v, ok := d.Status.Get(); ok {
		c.Status = v
	}
	if v, ok := d.TotalPrice.Get(); ok {
		c.TotalPrice = v
	}
	if v, ok := d.BillingAddressID.Get(); ok {
		c.BillingAddressID = mo.Some(v)
	}
	if v, ok := d.ShippingAddressID.Get(); ok {
		c.ShippingAddressID = mo.Some(v)
	}
	if v, ok := d.DeliveryMethod.Get(); ok {
		c.DeliveryMethod = mo.Some(v)
	}
	c.UpdatedAt = time.Now()
}

// Columns 转换为列名到值的映射(仓储层按列更新)
func (d UpdateDraft) Columns() map[string]interface{} {
	cols := make(map[string]interface{}, 5)
	if v, ok := d.Status.Get(); ok {
		cols["status"] = string(v)
	}
	if v, ok := d.TotalPrice.Get(); ok {
		cols["total_price"] = v
	}
	if v, ok := d.BillingAddressID.Get(); ok {
		cols["billing_address_id"] = v
	}
	if v, ok := d.ShippingAddressID.Get(); ok {
		cols["shipping_address_id"] = v
	}
	if v, ok := d.DeliveryMethod.Get(); ok {
		cols["delivery_method"] = string(v)
	}
	return cols
}

// LineItemDraft 明细部分更新
type LineItemDraft struct {
	Quantity   mo.Option[int]
	TotalPrice mo.Option[decimal.Decimal]
}

// Apply 将存在的字段写入明细
func (d LineItemDraft) Apply(li *LineItem) {
	if v, ok := d.Quantity.Get(); ok {
		li.Quantity = v
	}
	if v, ok := d.TotalPrice.Get(); ok {
		li.TotalPrice = v
	}
	li.UpdatedAt = time.Now()
}

// Columns 转换为列名到值的映射
func (d LineItemDraft) Columns() map[string]interface{} {
	cols := make(map[string]interface{}, 2)
	if v, ok := d.Quantity.Get(); ok {
		cols["quantity"] = v
	}
	if v, ok := d.TotalPrice.Get(); ok {
		cols["total_price"] = v
	}
	return cols
}
