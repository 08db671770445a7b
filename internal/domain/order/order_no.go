package order

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateOrderNo 生成订单号
// 使用UUIDv7:全局唯一、按时间有序(索引友好)、不可预测
// 格式:ORD + 32位十六进制,共35个字符
func GenerateOrderNo() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", ErrOrderNoGenerate.With("cause", err.Error())
	}
	return "ORD" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")), nil
}
