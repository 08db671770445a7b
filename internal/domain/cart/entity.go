package cart

import (
	"math"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
)

// Status 购物车状态
type Status string

const (
	StatusActive   Status = "active"   // 可修改、可结算
	StatusInactive Status = "inactive" // 已结算，只读
)

// Valid 是否为已知状态
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// DeliveryMethod 配送方式
type DeliveryMethod string

const (
	DeliveryStandard DeliveryMethod = "standard"
	DeliveryExpress  DeliveryMethod = "express"
	DeliveryPickup   DeliveryMethod = "pickup"
)

// Valid 是否为已知配送方式
func (m DeliveryMethod) Valid() bool {
	switch m {
	case DeliveryStandard, DeliveryExpress, DeliveryPickup:
		return true
	}
	return false
}

// Cart 购物车实体(聚合根)
// 设计说明:
// 1. TotalPrice冗余存储,每次明细变更后重新计算并持久化
// 2. 地址和配送方式在结算前才需要,用mo.Option表示"未填写"
// 3. CustomerID创建后不再变化
type Cart struct {
	ID                uint
	CustomerID        uint
	Status            Status
	TotalPrice        decimal.Decimal
	BillingAddressID  mo.Option[uint]
	ShippingAddressID mo.Option[uint]
	DeliveryMethod    mo.Option[DeliveryMethod]
	LineItems         []LineItem // 按创建顺序
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewCart 创建空购物车(工厂方法)
func NewCart(customerID uint) *Cart {
	now := time.Now()
	return &Cart{
		CustomerID: customerID,
		Status:     StatusActive,
		TotalPrice: decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsOwnedBy 检查购物车是否属于指定顾客
func (c *Cart) IsOwnedBy(customerID uint) bool {
	return c.CustomerID == customerID
}

// IsActive 是否仍可修改
func (c *Cart) IsActive() bool {
	return c.Status == StatusActive
}

// IsEmpty 是否没有明细
func (c *Cart) IsEmpty() bool {
	return len(c.LineItems) == 0
}

// LineItemsTotal 所有明细小计之和
func (c *Cart) LineItemsTotal() decimal.Decimal {
	return SumTotals(c.LineItems)
}

// FindLineItem 按ID查找明细
func (c *Cart) FindLineItem(id uint) (LineItem, bool) {
	return lo.Find(c.LineItems, func(li LineItem) bool { return li.ID == id })
}

// SumTotals 计算明细小计之和
func SumTotals(items []LineItem) decimal.Decimal {
	return lo.Reduce(items, func(acc decimal.Decimal, li LineItem, _ int) decimal.Decimal {
		return acc.Add(li.TotalPrice)
	}, decimal.Zero)
}

// LineItem 购物车明细
// Price是加入购物车时的单价快照,之后不再变化
type LineItem struct {
	ID         uint
	CartID     uint
	BookID     uint
	Quantity   int
	Price      decimal.Decimal
	TotalPrice decimal.Decimal // Price × Quantity
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewLineItem 创建明细(quantity必须>0)
func NewLineItem(cartID, bookID uint, quantity int, price decimal.Decimal) (*LineItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	now := time.Now()
	return &LineItem{
		CartID:     cartID,
		BookID:     bookID,
		Quantity:   quantity,
		Price:      price,
		TotalPrice: price.Mul(decimal.NewFromInt(int64(quantity))),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Increase 增加数量,返回需要写回的字段
// 累加后溢出int时拒绝,数量不会回绕成负数
func (li *LineItem) Increase(quantity int) (LineItemDraft, error) {
	if quantity <= 0 {
		return LineItemDraft{}, ErrInvalidQuantity
	}
	if quantity > math.MaxInt-li.Quantity {
		return LineItemDraft{}, ErrInvalidQuantity.With("line_item_id", li.ID).With("quantity", li.Quantity)
	}
	newQuantity := li.Quantity + quantity
	return LineItemDraft{
		Quantity:   mo.Some(newQuantity),
		TotalPrice: mo.Some(li.Price.Mul(decimal.NewFromInt(int64(newQuantity)))),
	}, nil
}

// Removal 减少明细数量的结果
type Removal struct {
	Delete   bool            // 数量归零,整行删除
	Draft    LineItemDraft   // Delete为false时写回的字段
	Credited decimal.Decimal // 购物车总价应减去的金额
}

// Remove 减少数量
// 减少量>=当前数量时整行删除,退回整行小计;否则按新数量重算小计,退回差额
func (li *LineItem) Remove(quantity int) (Removal, error) {
	if quantity <= 0 {
		return Removal{}, ErrInvalidQuantity
	}
	if quantity >= li.Quantity {
		return Removal{Delete: true, Credited: li.TotalPrice}, nil
	}

	newQuantity := li.Quantity - quantity
	newTotal := li.Price.Mul(decimal.NewFromInt(int64(newQuantity)))
	return Removal{
		Draft: LineItemDraft{
			Quantity:   mo.Some(newQuantity),
			TotalPrice: mo.Some(newTotal),
		},
		Credited: li.TotalPrice.Sub(newTotal),
	}, nil
}
