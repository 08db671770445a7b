// Package memstore 内存版仓储,供用例和接口层测试使用
//
// Transaction开始时复制全部数据,fn返回错误或panic时整体恢复,
// 用来验证"要么全部生效,要么都不生效"。同一时刻只允许一个事务。
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookshop/internal/domain/address"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/cart"
	"github.com/xiebiao/bookshop/internal/domain/inventory"
	"github.com/xiebiao/bookshop/internal/domain/order"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

type data struct {
	carts       map[uint]cart.Cart
	lineItems   map[uint]cart.LineItem
	inventories map[uint]inventory.Inventory
	orders      map[uint]order.Order
	addresses   map[uint]address.Address
	books       map[uint]book.Book
	nextID      uint
}

func newData() data {
	return data{
		carts:       map[uint]cart.Cart{},
		lineItems:   map[uint]cart.LineItem{},
		inventories: map[uint]inventory.Inventory{},
		orders:      map[uint]order.Order{},
		addresses:   map[uint]address.Address{},
		books:       map[uint]book.Book{},
	}
}

func (d data) clone() data {
	return data{
		carts:       lo.Assign(d.carts),
		lineItems:   lo.Assign(d.lineItems),
		inventories: lo.Assign(d.inventories),
		orders:      lo.Assign(d.orders),
		addresses:   lo.Assign(d.addresses),
		books:       lo.Assign(d.books),
		nextID:      d.nextID,
	}
}

type txKey struct{}

// Store 内存数据库
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	data data

	faults     map[uint]error // book_id -> DecrementInventory返回的错误
	decrements int
	commits    int
	rollbacks  int
}

// New 创建空的内存数据库
func New() *Store {
	return &Store{data: newData(), faults: map[uint]error{}}
}

// ========== 事务 ==========

// Transaction 实现application.Transactor
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			s.restore(snapshot)
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, struct{}{})); err != nil {
		s.restore(snapshot)
		return err
	}

	s.mu.Lock()
	s.commits++
	s.mu.Unlock()
	return nil
}

func (s *Store) restore(snapshot data) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = snapshot
	s.rollbacks++
}

// Commits 已提交的事务数
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// Rollbacks 已回滚的事务数
func (s *Store) Rollbacks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rollbacks
}

// FailDecrement 之后对bookID的扣减返回err
func (s *Store) FailDecrement(bookID uint, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[bookID] = err
}

// Decrements 成功执行的库存扣减次数(包括之后被回滚的)
func (s *Store) Decrements() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decrements
}

func (s *Store) id() uint {
	s.data.nextID++
	return s.data.nextID
}

// ========== 仓储 ==========

// Carts 购物车仓储
func (s *Store) Carts() cart.Repository { return cartRepo{s} }

// LineItems 明细仓储
func (s *Store) LineItems() cart.LineItemRepository { return lineItemRepo{s} }

// Inventories 库存访问
func (s *Store) Inventories() inventory.Gateway { return inventoryRepo{s} }

// Orders 订单仓储
func (s *Store) Orders() order.Repository { return orderRepo{s} }

// Addresses 地址查询
func (s *Store) Addresses() address.Repository { return addressRepo{s} }

// Books 图书仓储(同时实现book.PriceLookup)
func (s *Store) Books() interface {
	book.Repository
	book.PriceLookup
} {
	return bookRepo{s}
}

type cartRepo struct{ s *Store }

func (r cartRepo) Create(_ context.Context, c *cart.Cart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = r.s.id()
	stored := *c
	stored.LineItems = nil
	r.s.data.carts[c.ID] = stored
	return nil
}

func (r cartRepo) FindByID(_ context.Context, id uint) (*cart.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.loadCart(id)
}

func (r cartRepo) LockByID(ctx context.Context, id uint) (*cart.Cart, error) {
	return r.FindByID(ctx, id)
}

func (r cartRepo) Update(_ context.Context, id uint, draft cart.UpdateDraft) (*cart.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.data.carts[id]
	if !ok {
		return nil, cart.ErrCartNotFound.With("cart_id", id)
	}
	draft.Apply(&c)
	r.s.data.carts[id] = c
	return r.s.loadCart(id)
}

func (r cartRepo) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.carts[id]; !ok {
		return cart.ErrCartNotFound.With("cart_id", id)
	}
	delete(r.s.data.carts, id)
	return nil
}

// loadCart 调用方持有mu
func (s *Store) loadCart(id uint) (*cart.Cart, error) {
	c, ok := s.data.carts[id]
	if !ok {
		return nil, cart.ErrCartNotFound.With("cart_id", id)
	}
	c.LineItems = lo.Filter(lo.Values(s.data.lineItems), func(li cart.LineItem, _ int) bool {
		return li.CartID == id
	})
	sort.Slice(c.LineItems, func(i, j int) bool { return c.LineItems[i].ID < c.LineItems[j].ID })
	return &c, nil
}

type lineItemRepo struct{ s *Store }

func (r lineItemRepo) FindByID(_ context.Context, id uint) (*cart.LineItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	li, ok := r.s.data.lineItems[id]
	if !ok {
		return nil, cart.ErrLineItemNotFound.With("line_item_id", id)
	}
	return &li, nil
}

func (r lineItemRepo) FindByCartAndBook(_ context.Context, cartID, bookID uint) (*cart.LineItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	li, ok := lo.Find(lo.Values(r.s.data.lineItems), func(li cart.LineItem) bool {
		return li.CartID == cartID && li.BookID == bookID
	})
	if !ok {
		return nil, cart.ErrLineItemNotFound.With("cart_id", cartID).With("book_id", bookID)
	}
	return &li, nil
}

func (r lineItemRepo) Create(_ context.Context, li *cart.LineItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.lineItems {
		if existing.CartID == li.CartID && existing.BookID == li.BookID {
			return apperrors.New(apperrors.ErrCodeBusinessError, "购物车中已有该图书")
		}
	}
	li.ID = r.s.id()
	r.s.data.lineItems[li.ID] = *li
	return nil
}

func (r lineItemRepo) Update(_ context.Context, id uint, draft cart.LineItemDraft) (*cart.LineItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	li, ok := r.s.data.lineItems[id]
	if !ok {
		return nil, cart.ErrLineItemNotFound.With("line_item_id", id)
	}
	draft.Apply(&li)
	r.s.data.lineItems[id] = li
	return &li, nil
}

func (r lineItemRepo) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.lineItems[id]; !ok {
		return cart.ErrLineItemNotFound.With("line_item_id", id)
	}
	delete(r.s.data.lineItems, id)
	return nil
}

type inventoryRepo struct{ s *Store }

func (r inventoryRepo) FindInventory(_ context.Context, q inventory.Query) (*inventory.Inventory, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := lo.Find(lo.Values(r.s.data.inventories), func(inv inventory.Inventory) bool {
		return q.Matches(&inv)
	})
	if !ok {
		return nil, inventory.ErrInventoryNotFound.With("book_id", q.BookID.OrEmpty())
	}
	return &inv, nil
}

func (r inventoryRepo) UpdateInventory(_ context.Context, id uint, quantity int) (*inventory.Inventory, error) {
	if quantity < 0 {
		return nil, inventory.ErrInvalidQuantity
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.data.inventories[id]
	if !ok {
		return nil, inventory.ErrInventoryNotFound.With("inventory_id", id)
	}
	inv.Quantity = quantity
	inv.UpdatedAt = time.Now()
	r.s.data.inventories[id] = inv
	return &inv, nil
}

func (r inventoryRepo) DecrementInventory(_ context.Context, bookID uint, quantity int) error {
	if quantity <= 0 {
		return inventory.ErrInvalidQuantity
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err, ok := r.s.faults[bookID]; ok {
		return err
	}
	for id, inv := range r.s.data.inventories {
		if inv.BookID != bookID {
			continue
		}
		if !inv.HasEnough(quantity) {
			return inventory.ErrInsufficientStock.With("book_id", bookID).With("requested", quantity)
		}
		inv.Quantity -= quantity
		r.s.data.inventories[id] = inv
		r.s.decrements++
		return nil
	}
	return inventory.ErrInventoryNotFound.With("book_id", bookID)
}

func (r inventoryRepo) Create(_ context.Context, inv *inventory.Inventory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.inventories {
		if existing.BookID == inv.BookID {
			return inventory.ErrDuplicateBook.With("book_id", inv.BookID)
		}
	}
	inv.ID = r.s.id()
	r.s.data.inventories[inv.ID] = *inv
	return nil
}

type orderRepo struct{ s *Store }

func (r orderRepo) Create(_ context.Context, o *order.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.orders {
		if existing.CartID == o.CartID {
			return order.ErrOrderExists.With("cart_id", o.CartID)
		}
	}
	o.ID = r.s.id()
	r.s.data.orders[o.ID] = *o
	return nil
}

func (r orderRepo) FindByID(_ context.Context, id uint) (*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.data.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound.With("order_id", id)
	}
	return &o, nil
}

func (r orderRepo) FindByCartID(_ context.Context, cartID uint) (*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := lo.Find(lo.Values(r.s.data.orders), func(o order.Order) bool { return o.CartID == cartID })
	if !ok {
		return nil, order.ErrOrderNotFound.With("cart_id", cartID)
	}
	return &o, nil
}

// OrderCount 订单总数
func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.orders)
}

type addressRepo struct{ s *Store }

func (r addressRepo) FindByID(_ context.Context, id uint) (*address.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.data.addresses[id]
	if !ok {
		return nil, address.ErrAddressNotFound.With("address_id", id)
	}
	return &a, nil
}

type bookRepo struct{ s *Store }

func (r bookRepo) Create(_ context.Context, b *book.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b.ID = r.s.id()
	r.s.data.books[b.ID] = *b
	return nil
}

func (r bookRepo) FindByID(_ context.Context, id uint) (*book.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.data.books[id]
	if !ok {
		return nil, book.ErrBookNotFound.With("book_id", id)
	}
	return &b, nil
}

func (r bookRepo) CurrentPrice(ctx context.Context, bookID uint) (decimal.Decimal, error) {
	b, err := r.FindByID(ctx, bookID)
	if err != nil {
		return decimal.Zero, err
	}
	return b.Price, nil
}
