package inventory

import (
	"time"

	"github.com/samber/mo"
)

// Inventory 图书库存
// 每本书只有一条库存记录(book_id唯一),Quantity不能为负
type Inventory struct {
	ID        uint
	BookID    uint
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewInventory 创建库存记录
func NewInventory(bookID uint, quantity int) (*Inventory, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	now := time.Now()
	return &Inventory{
		BookID:    bookID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// HasEnough 库存是否足够
func (i *Inventory) HasEnough(quantity int) bool {
	return i.Quantity >= quantity
}

// Query 库存查询条件,ID和BookID至少提供一个
type Query struct {
	ID     mo.Option[uint]
	BookID mo.Option[uint]
}

// ByID 按库存ID查询
func ByID(id uint) Query {
	return Query{ID: mo.Some(id)}
}

// ByBookID 按图书ID查询
func ByBookID(bookID uint) Query {
	return Query{BookID: mo.Some(bookID)}
}

// Validate 校验查询条件
func (q Query) Validate() error {
	if q.ID.IsAbsent() && q.BookID.IsAbsent() {
		return ErrInvalidQuery
	}
	return nil
}

// Matches 判断记录是否满足查询条件
func (q Query) Matches(inv *Inventory) bool {
	if id, ok := q.ID.Get(); ok && inv.ID != id {
		return false
	}
	if bookID, ok := q.BookID.Get(); ok && inv.BookID != bookID {
		return false
	}
	return true
}
