package mysql

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/metrics"
)

var (
	// ErrTransactionStart 获取连接或BEGIN失败
	ErrTransactionStart = apperrors.New(apperrors.ErrCodeTransactionStart, "开启事务失败")

	// ErrUnitOfWorkReused 工作单元只能使用一次
	ErrUnitOfWorkReused = apperrors.New(apperrors.ErrCodeTransactionState, "工作单元不能重复使用")

	// ErrTransactionClosed 事务已提交或回滚后继续使用
	ErrTransactionClosed = apperrors.New(apperrors.ErrCodeTransactionState, "事务已结束")
)

type uowState int

const (
	stateIdle uowState = iota
	stateActive
	stateCommitted
	stateRolledBack
	stateReleased
)

func (s uowState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateActive:
		return "active"
	case stateCommitted:
		return "committed"
	case stateRolledBack:
		return "rolled_back"
	case stateReleased:
		return "released"
	}
	return "unknown"
}

type uowKey struct{}

// UnitOfWork 工作单元
// 设计说明：
// 1. 独占连接池中的一个连接，事务内所有仓储共享这个连接
// 2. 状态流转：idle → active → committed/rolled_back → released，只能使用一次
// 3. 同一工作单元上的语句由mu串行执行，允许多个goroutine并发调用仓储
// 4. 通过context传递，仓储用run()取出事务DB
type UnitOfWork struct {
	db     *gorm.DB
	logger *zap.Logger

	mu    sync.Mutex
	state uowState
	conn  *sql.Conn
	tx    *gorm.DB
	ctx   context.Context
}

// FromContext 取出context中的工作单元
func FromContext(ctx context.Context) (*UnitOfWork, bool) {
	u, ok := ctx.Value(uowKey{}).(*UnitOfWork)
	return u, ok
}

// Begin 获取独占连接并开启事务，返回携带工作单元的context
func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state != stateIdle {
		return nil, ErrUnitOfWorkReused.With("state", u.state.String())
	}

	sqlDB, err := u.db.DB()
	if err != nil {
		metrics.UnitOfWorkTotal.WithLabelValues("start_failed").Inc()
		return nil, apperrors.WrapCode(err, ErrTransactionStart.Code, ErrTransactionStart.Message)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		metrics.UnitOfWorkTotal.WithLabelValues("start_failed").Inc()
		return nil, apperrors.WrapCode(err, ErrTransactionStart.Code, ErrTransactionStart.Message)
	}

	session := u.db.WithContext(ctx)
	session.Statement.ConnPool = conn
	tx := session.Begin()
	if tx.Error != nil {
		if cerr := conn.Close(); cerr != nil {
			u.logger.Warn("归还数据库连接失败", zap.Error(cerr))
		}
		metrics.UnitOfWorkTotal.WithLabelValues("start_failed").Inc()
		return nil, apperrors.WrapCode(tx.Error, ErrTransactionStart.Code, ErrTransactionStart.Message)
	}

	u.conn = conn
	u.tx = tx
	u.ctx = ctx
	u.state = stateActive
	return context.WithValue(ctx, uowKey{}, u), nil
}

// Commit 提交事务
func (u *UnitOfWork) Commit() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state != stateActive {
		return ErrTransactionClosed.With("state", u.state.String())
	}
	if err := u.tx.Commit().Error; err != nil {
		// COMMIT失败后事务已不可用
		u.state = stateRolledBack
		metrics.UnitOfWorkTotal.WithLabelValues("commit_failed").Inc()
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "提交事务失败")
	}
	u.state = stateCommitted
	metrics.UnitOfWorkTotal.WithLabelValues("committed").Inc()
	return nil
}

// Rollback 回滚事务
func (u *UnitOfWork) Rollback() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state != stateActive {
		return ErrTransactionClosed.With("state", u.state.String())
	}
	return u.rollbackLocked()
}

func (u *UnitOfWork) rollbackLocked() error {
	u.state = stateRolledBack
	metrics.UnitOfWorkTotal.WithLabelValues("rolled_back").Inc()
	if err := u.tx.Rollback().Error; err != nil && !errors.Is(err, sql.ErrTxDone) {
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "回滚事务失败")
	}
	return nil
}

// Release 归还连接，未结束的事务先回滚
// 可以重复调用
func (u *UnitOfWork) Release() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	var errs []error
	if u.state == stateActive {
		errs = append(errs, u.rollbackLocked())
	}
	if u.conn != nil {
		errs = append(errs, u.conn.Close())
		u.conn = nil
	}
	u.tx = nil
	u.state = stateReleased
	return errors.Join(errs...)
}

// IsActive 事务是否仍可使用
func (u *UnitOfWork) IsActive() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state == stateActive
}

// RunInTransaction 在事务中执行work
// work返回nil时提交，返回错误或panic时回滚（panic回滚后继续向上抛出），连接在所有路径上归还
// 回滚失败会追加到原错误上，归还失败只记录日志
func (u *UnitOfWork) RunInTransaction(ctx context.Context, work func(ctx context.Context) error) (err error) {
	txCtx, err := u.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if rerr := u.Release(); rerr != nil {
			u.logger.Error("归还数据库连接失败", zap.Error(rerr))
		}
	}()

	defer func() {
		if p := recover(); p != nil {
			if rbErr := u.Rollback(); rbErr != nil {
				u.logger.Error("panic后回滚事务失败", zap.Error(rbErr), zap.Any("panic", p))
			}
			panic(p)
		}
	}()

	if err := work(txCtx); err != nil {
		if rbErr := u.Rollback(); rbErr != nil && !errors.Is(rbErr, ErrTransactionClosed) {
			u.logger.Error("回滚事务失败", zap.Error(rbErr), zap.NamedError("cause", err))
			return errors.Join(err, rbErr)
		}
		return err
	}
	return u.Commit()
}

// exec 在事务连接上执行一条语句
// 语句使用Begin时的ctx执行，调用方ctx取消只会跳过尚未执行的语句，
// 正在执行的语句被取消时MySQL驱动会关闭连接，事务随之失效
func (u *UnitOfWork) exec(ctx context.Context, fn func(db *gorm.DB) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state != stateActive {
		return ErrTransactionClosed.With("state", u.state.String())
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(u.tx.WithContext(u.ctx))
}

// run 仓储统一入口：context中有工作单元时在事务连接上执行，否则使用连接池
func run(ctx context.Context, fallback *gorm.DB, fn func(db *gorm.DB) error) error {
	if u, ok := FromContext(ctx); ok {
		return u.exec(ctx, fn)
	}
	return fn(fallback.WithContext(ctx))
}
