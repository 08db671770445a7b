package inventory

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

var (
	ErrInventoryNotFound = apperrors.New(apperrors.ErrCodeInventoryNotFound, "库存记录不存在")
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "库存不足")
	ErrInvalidQuantity   = apperrors.New(apperrors.ErrCodeInvalidParams, "库存数量不能为负数")
	ErrInvalidQuery      = apperrors.New(apperrors.ErrCodeInvalidParams, "库存查询需要id或book_id")
	ErrDuplicateBook     = apperrors.New(apperrors.ErrCodeBusinessError, "该图书已有库存记录")
)
