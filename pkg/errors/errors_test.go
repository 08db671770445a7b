package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_WithKeepsIdentity(t *testing.T) {
	base := New(ErrCodeCartNotFound, "购物车不存在")

	detailed := base.With("cart_id", uint(7))

	assert.True(t, errors.Is(detailed, base), "带Details的副本应匹配原错误")
	assert.Empty(t, base.Details, "With不应修改原错误")
	assert.Equal(t, uint(7), detailed.Details["cart_id"])
	assert.Equal(t, "[40404] 购物车不存在 (cart_id=7)", detailed.Error())
}

func TestAppError_IsDistinguishesSentinels(t *testing.T) {
	a := New(ErrCodeBillingAddressMissing, "请填写账单地址")
	b := New(ErrCodeShippingAddressMissing, "请填写收货地址")

	assert.False(t, errors.Is(a, b))
	assert.False(t, errors.Is(a.With("cart_id", 1), b))
}

func TestAppError_IsThroughWrapping(t *testing.T) {
	base := New(ErrCodeLineItemNotFound, "购物车明细不存在")
	wrapped := fmt.Errorf("remove line item: %w", base.With("line_item_id", 3))
	joined := errors.Join(wrapped, errors.New("rollback failed"))

	assert.True(t, errors.Is(joined, base))

	appErr := GetAppError(joined)
	require.NotNil(t, appErr)
	assert.Equal(t, ErrCodeLineItemNotFound, appErr.Code)
	assert.Equal(t, 3, appErr.Details["line_item_id"])
}

func TestGetAppError_WrapsUnknown(t *testing.T) {
	cause := errors.New("connection refused")

	appErr := GetAppError(cause)

	assert.Equal(t, ErrCodeInternal, appErr.Code)
	assert.ErrorIs(t, appErr, cause)
	assert.True(t, IsInternal(cause))
	assert.False(t, IsInternal(ErrInvalidParams))
}

func TestWrapCode(t *testing.T) {
	cause := errors.New("dial tcp: timeout")

	err := WrapCode(cause, ErrCodeTransactionStart, "开启事务失败")

	assert.Equal(t, ErrCodeTransactionStart, err.Code)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "dial tcp: timeout")
}
