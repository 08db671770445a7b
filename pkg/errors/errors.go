package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code用于客户端判断错误类型（response包按Code区间映射HTTP状态码）
// 2. Message是用户友好的提示信息
// 3. Details携带定位信息（如cart_id、line_item_id），随响应返回
// 4. Err是内部错误，仅记录到日志，不返回给客户端（防止泄露敏感信息）
type AppError struct {
	Code    int                    `json:"code"`              // 业务错误码
	Message string                 `json:"message"`           // 用户友好的错误提示
	Details map[string]interface{} `json:"details,omitempty"` // 定位信息
	Err     error                  `json:"-"`                 // 内部错误（不序列化）
}

func (e *AppError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %s", e.Code, e.Message)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Details[k])
		}
		b.WriteString(")")
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按Code+Message判等
// 带Details的副本（With返回值）仍然满足 errors.Is(err, 预定义错误)
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// With 返回附加了定位信息的副本，原错误不变
//
//	return cart.ErrCartNotFound.With("cart_id", id)
func (e *AppError) With(key string, value interface{}) *AppError {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Err:     e.Err,
	}
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
// 用途：将底层错误转换为业务错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// WrapCode 使用指定错误码包装底层错误
func WrapCode(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 400xx: 业务规则校验失败（状态冲突、结算前置条件不满足）
// - 401xx: 认证错误
// - 403xx: 权限错误
// - 404xx: 资源不存在
// - 409xx: 参数错误（历史原因沿用409前缀，HTTP层映射为400）
// - 500xx: 服务端错误（数据库异常、外部服务调用失败）

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal         = 50000 // 内部错误
	ErrCodeDatabaseError    = 50001 // 数据库错误
	ErrCodeRedisError       = 50002 // Redis错误
	ErrCodeTransactionStart = 50003 // 事务开启失败
	ErrCodeTransactionState = 50004 // 事务状态非法（重复使用、已关闭）

	// 认证授权错误（40100-40199）
	ErrCodeUnauthorized = 40100 // 未登录
	ErrCodeInvalidToken = 40101 // Token无效
	ErrCodeTokenExpired = 40102 // Token过期

	// 权限错误（40300-40399）
	ErrCodeForbidden            = 40300 // 无权限
	ErrCodeCartAccessDenied     = 40301 // 无权操作他人购物车
	ErrCodeOrderCreatorMismatch = 40302 // 下单人与购物车所有者不一致

	// 资源错误（40400-40499）
	ErrCodeNotFound          = 40400 // 资源不存在(通用)
	ErrCodeBookNotFound      = 40402 // 图书不存在
	ErrCodeOrderNotFound     = 40403 // 订单不存在
	ErrCodeCartNotFound      = 40404 // 购物车不存在
	ErrCodeLineItemNotFound  = 40405 // 购物车明细不存在
	ErrCodeInventoryNotFound = 40406 // 库存记录不存在
	ErrCodeAddressNotFound   = 40407 // 地址不存在

	// 业务规则错误（40000-40099）
	ErrCodeBusinessError             = 40000 // 业务错误(通用)
	ErrCodeInsufficientStock         = 40001 // 库存不足
	ErrCodeCartNotActive             = 40010 // 购物车已失效
	ErrCodeCartNotEmpty              = 40011 // 购物车非空
	ErrCodeBillingAddressMissing     = 40020 // 未填写账单地址
	ErrCodeShippingAddressMissing    = 40021 // 未填写收货地址
	ErrCodeDeliveryMethodMissing     = 40022 // 未选择配送方式
	ErrCodeLineItemsMissing          = 40023 // 购物车为空
	ErrCodeInvalidTotalPrice         = 40024 // 购物车总价与明细不一致
	ErrCodeLineItemOutOfInventory    = 40025 // 明细库存不足
	ErrCodeInvalidCartStatusTransfer = 40026 // 购物车状态不允许此变更

	// 参数错误（40900-40999）
	ErrCodeInvalidParams = 40900 // 参数错误
	ErrCodeBindError     = 40901 // 参数绑定失败
)

// =========================================
// 预定义错误（避免每次都New）
// =========================================

var (
	// 系统错误
	ErrInternal      = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError    = New(ErrCodeRedisError, "缓存服务错误")

	// 认证授权
	ErrUnauthorized = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired = New(ErrCodeTokenExpired, "Token已过期")
	ErrForbidden    = New(ErrCodeForbidden, "无权限访问")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError     = New(ErrCodeBindError, "参数格式错误")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// IsInternal 判断是否为服务端错误（需要记录日志告警）
func IsInternal(err error) bool {
	appErr := GetAppError(err)
	return appErr.Code >= 50000
}
