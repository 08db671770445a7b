package cart

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 购物车领域错误定义
// 调用方通过With附加cart_id、line_item_id等定位信息
var (
	// 资源不存在
	ErrCartNotFound     = apperrors.New(apperrors.ErrCodeCartNotFound, "购物车不存在")
	ErrLineItemNotFound = apperrors.New(apperrors.ErrCodeLineItemNotFound, "购物车明细不存在")

	// 状态冲突
	ErrCartNotActive           = apperrors.New(apperrors.ErrCodeCartNotActive, "购物车已结算,不能再修改")
	ErrCartAccessDenied        = apperrors.New(apperrors.ErrCodeCartAccessDenied, "无权操作此购物车")
	ErrOrderCreatorMismatch    = apperrors.New(apperrors.ErrCodeOrderCreatorMismatch, "下单人与购物车所有者不一致")
	ErrCartNotEmpty            = apperrors.New(apperrors.ErrCodeCartNotEmpty, "购物车非空,不能删除")
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidCartStatusTransfer, "购物车状态只能在结算时变更为inactive")

	// 结算校验
	ErrBillingAddressMissing  = apperrors.New(apperrors.ErrCodeBillingAddressMissing, "请填写账单地址")
	ErrShippingAddressMissing = apperrors.New(apperrors.ErrCodeShippingAddressMissing, "请填写收货地址")
	ErrDeliveryMethodMissing  = apperrors.New(apperrors.ErrCodeDeliveryMethodMissing, "请选择配送方式")
	ErrLineItemsMissing       = apperrors.New(apperrors.ErrCodeLineItemsMissing, "购物车为空")
	ErrInvalidTotalPrice      = apperrors.New(apperrors.ErrCodeInvalidTotalPrice, "购物车总价与明细不一致")
	ErrLineItemOutOfInventory = apperrors.New(apperrors.ErrCodeLineItemOutOfInventory, "库存不足")

	// 参数错误
	ErrInvalidQuantity       = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")
	ErrInvalidDeliveryMethod = apperrors.New(apperrors.ErrCodeInvalidParams, "不支持的配送方式")
	ErrInvalidStatus         = apperrors.New(apperrors.ErrCodeInvalidParams, "不支持的购物车状态")
	ErrEmptyDraft            = apperrors.New(apperrors.ErrCodeInvalidParams, "没有需要更新的字段")
)
