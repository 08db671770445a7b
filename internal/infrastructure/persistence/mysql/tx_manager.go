package mysql

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/pkg/metrics"
)

// TxManager 工作单元工厂
type TxManager struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB, logger *zap.Logger) *TxManager {
	metrics.InitMetrics()
	return &TxManager{db: db, logger: logger}
}

// NewUnitOfWork 创建一个idle状态的工作单元
func (m *TxManager) NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{db: m.db, logger: m.logger}
}

// Transaction 执行事务
// fn内所有仓储调用都在同一个工作单元中执行：
// fn返回nil时COMMIT，返回error或panic时ROLLBACK
// ctx已携带活跃的工作单元时直接加入，由外层负责提交
//
// 使用示例:
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    c, err := cartRepo.LockByID(ctx, cartID)
//	    if err != nil {
//	        return err
//	    }
//	    if err := orderRepo.Create(ctx, o); err != nil {
//	        return err // 自动回滚
//	    }
//	    return inventoryGateway.DecrementInventory(ctx, bookID, quantity)
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if u, ok := FromContext(ctx); ok {
		if !u.IsActive() {
			return ErrTransactionClosed
		}
		return fn(ctx)
	}
	return m.NewUnitOfWork().RunInTransaction(ctx, fn)
}
