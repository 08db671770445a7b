package memstore

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookshop/internal/domain/address"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/cart"
	"github.com/xiebiao/bookshop/internal/domain/inventory"
)

// SeedBook 写入一本指定价格的图书
func (s *Store) SeedBook(t testing.TB, price string) *book.Book {
	t.Helper()
	b, err := book.NewBook(gofakeit.Numerify("978##########"), gofakeit.BookTitle(), gofakeit.BookAuthor(), decimal.RequireFromString(price))
	if err != nil {
		t.Fatalf("seed book: %v", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.id()
	s.data.books[b.ID] = *b
	return b
}

// SeedInventory 写入库存
func (s *Store) SeedInventory(t testing.TB, bookID uint, quantity int) *inventory.Inventory {
	t.Helper()
	inv, err := inventory.NewInventory(bookID, quantity)
	if err != nil {
		t.Fatalf("seed inventory: %v", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inv.ID = s.id()
	s.data.inventories[inv.ID] = *inv
	return inv
}

// SeedAddress 写入顾客地址
func (s *Store) SeedAddress(t testing.TB, customerID uint) *address.Address {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	a := address.Address{
		ID:         s.id(),
		CustomerID: customerID,
		Recipient:  gofakeit.Name(),
		Phone:      gofakeit.Phone(),
		Line1:      gofakeit.Street(),
		City:       gofakeit.City(),
		PostalCode: gofakeit.Zip(),
		Country:    gofakeit.CountryAbr(),
		CreatedAt:  time.Now(),
	}
	s.data.addresses[a.ID] = a
	return &a
}

// SeedCart 写入空的active购物车
func (s *Store) SeedCart(t testing.TB, customerID uint) *cart.Cart {
	t.Helper()
	c := cart.NewCart(customerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	s.data.carts[c.ID] = *c
	return c
}

// SeedLineItem 写入明细并同步购物车总价
func (s *Store) SeedLineItem(t testing.TB, cartID uint, b *book.Book, quantity int) *cart.LineItem {
	t.Helper()
	li, err := cart.NewLineItem(cartID, b.ID, quantity, b.Price)
	if err != nil {
		t.Fatalf("seed line item: %v", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	li.ID = s.id()
	s.data.lineItems[li.ID] = *li
	c := s.data.carts[cartID]
	c.TotalPrice = c.TotalPrice.Add(li.TotalPrice)
	s.data.carts[cartID] = c
	return li
}

// ReadyCart 可以直接结算的购物车
// A: 单价10 × 2, 库存5; B: 单价5 × 1, 库存3; 总价25
type ReadyCart struct {
	Cart       *cart.Cart
	BookA      *book.Book
	BookB      *book.Book
	LineItemA  *cart.LineItem
	LineItemB  *cart.LineItem
	CustomerID uint
}

// SeedReadyCart 写入地址、配送方式、两条明细和库存都齐全的购物车
func (s *Store) SeedReadyCart(t testing.TB, stockA, stockB int) ReadyCart {
	t.Helper()
	customerID := uint(gofakeit.IntRange(1, 1_000_000))
	c := s.SeedCart(t, customerID)
	billing := s.SeedAddress(t, customerID)
	shipping := s.SeedAddress(t, customerID)

	bookA := s.SeedBook(t, "10.00")
	bookB := s.SeedBook(t, "5.00")
	s.SeedInventory(t, bookA.ID, stockA)
	s.SeedInventory(t, bookB.ID, stockB)
	liA := s.SeedLineItem(t, c.ID, bookA, 2)
	liB := s.SeedLineItem(t, c.ID, bookB, 1)

	s.mu.Lock()
	stored := s.data.carts[c.ID]
	stored.BillingAddressID = mo.Some(billing.ID)
	stored.ShippingAddressID = mo.Some(shipping.ID)
	stored.DeliveryMethod = mo.Some(cart.DeliveryStandard)
	s.data.carts[c.ID] = stored
	s.mu.Unlock()

	loaded, err := s.Carts().FindByID(t.Context(), c.ID)
	if err != nil {
		t.Fatalf("load ready cart: %v", err)
	}
	return ReadyCart{
		Cart:       loaded,
		BookA:      bookA,
		BookB:      bookB,
		LineItemA:  liA,
		LineItemB:  liB,
		CustomerID: customerID,
	}
}

// InventoryOf 当前库存数量
func (s *Store) InventoryOf(t testing.TB, bookID uint) int {
	t.Helper()
	inv, err := s.Inventories().FindInventory(t.Context(), inventory.ByBookID(bookID))
	if err != nil {
		t.Fatalf("inventory of %d: %v", bookID, err)
	}
	return inv.Quantity
}

// CartOf 重新读取购物车
func (s *Store) CartOf(t testing.TB, cartID uint) *cart.Cart {
	t.Helper()
	c, err := s.Carts().FindByID(t.Context(), cartID)
	if err != nil {
		t.Fatalf("cart %d: %v", cartID, err)
	}
	return c
}
