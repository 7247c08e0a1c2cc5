package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type txKey struct{}

func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func txFromCtx(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}

// Store 共享的存储句柄：连接池 + 单次调用超时（含取连接）
type Store struct {
	db      *gorm.DB
	acquire time.Duration
}

func NewStore(db *gorm.DB, acquireTimeout time.Duration) *Store {
	return &Store{db: db, acquire: acquireTimeout}
}

func (s *Store) DB() *gorm.DB { return s.db }

// scope 返回本次调用使用的连接与收尾函数；ctx 中已有事务则复用且不再叠加超时
func (s *Store) scope(ctx context.Context) (*gorm.DB, func()) {
	if tx, ok := txFromCtx(ctx); ok {
		return tx, func() {}
	}
	if s.acquire <= 0 {
		return s.db.WithContext(ctx), func() {}
	}
	cctx, cancel := context.WithTimeout(ctx, s.acquire)
	return s.db.WithContext(cctx), cancel
}

// RunInTx fn 内的仓储调用共享同一事务；外层已有事务时直接加入。
// fn 返回错误或 panic 都会回滚
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromCtx(ctx); ok {
		return fn(ctx)
	}
	parent := ctx
	if s.acquire > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.acquire)
		defer cancel()
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx))
	})
	return mapError(parent, err, "transaction", "")
}
