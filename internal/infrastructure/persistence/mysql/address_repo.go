package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/address"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// addressRepository 地址查询实现(MySQL)
type addressRepository struct {
	db *gorm.DB
}

// NewAddressRepository 创建地址仓储
func NewAddressRepository(db *gorm.DB) address.Repository {
	return &addressRepository{db: db}
}

func (r *addressRepository) FindByID(ctx context.Context, id uint) (*address.Address, error) {
	var model AddressModel
	err := run(ctx, r.db, func(db *gorm.DB) error {
		return db.First(&model, id).Error
	})
	if err != nil {
		if isNotFound(err) {
			return nil, address.ErrAddressNotFound.With("address_id", id)
		}
		return nil, apperrors.Wrap(err, "查询地址失败")
	}
	return &address.Address{
		ID:         model.ID,
		CustomerID: model.CustomerID,
		Recipient:  model.Recipient,
		Phone:      model.Phone,
		Line1:      model.Line1,
		City:       model.City,
		PostalCode: model.PostalCode,
		Country:    model.Country,
		CreatedAt:  model.CreatedAt,
	}, nil
}
