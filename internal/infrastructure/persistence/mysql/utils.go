package mysql

import (
	"errors"
	"strings"

	driver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// MySQL错误码
// - 1062: Duplicate entry 'xxx' for key 'yyy'
const errDuplicateEntry = 1062

// isDuplicateError 判断是否为唯一索引冲突
func isDuplicateError(err error) bool {
	var myErr *driver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == errDuplicateEntry
	}
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}

// isDuplicateKey 判断唯一索引冲突是否发生在指定列的索引上
// 索引名由GORM生成: idx_<table>_<column>
func isDuplicateKey(err error, column string) bool {
	return isDuplicateError(err) && strings.Contains(err.Error(), column)
}

// isNotFound 判断是否为记录不存在
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// optionalPtr 不存在时返回nil(可空列)
func optionalPtr[T any](v T, ok bool) *T {
	if !ok {
		return nil
	}
	return &v
}
