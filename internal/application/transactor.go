// Package application 存放各用例共享的端口定义
package application

import "context"

// Transactor 事务边界
// fn内通过ctx调用的仓储操作要么全部提交,要么全部回滚
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
