package address

import (
	"context"
	"time"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// Address 顾客地址(只读,维护由账户服务负责)
type Address struct {
	ID         uint
	CustomerID uint
	Recipient  string
	Phone      string
	Line1      string
	City       string
	PostalCode string
	Country    string
	CreatedAt  time.Time
}

// ErrAddressNotFound 地址不存在
var ErrAddressNotFound = apperrors.New(apperrors.ErrCodeAddressNotFound, "地址不存在")

// Repository 地址查询接口
type Repository interface {
	// FindByID 不存在返回ErrAddressNotFound
	FindByID(ctx context.Context, id uint) (*Address, error)
}
