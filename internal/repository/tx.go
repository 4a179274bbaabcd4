package repository

import (
	"context"

	"gorm.io/gorm"
)

type (
	txKey    struct{}
	hooksKey struct{}
)

type commitHooks struct {
	fns []func()
}

// AfterCommit schedules fn to run once the transaction bound to ctx has
// committed. It reports false when ctx carries no such transaction.
func AfterCommit(ctx context.Context, fn func()) bool {
	hooks, ok := ctx.Value(hooksKey{}).(*commitHooks)
	if !ok {
		return false
	}
	hooks.fns = append(hooks.fns, fn)
	return true
}

// withCommitHooks runs begin with a context that collects AfterCommit hooks
// and fires them only when begin succeeds.
func withCommitHooks(ctx context.Context, begin func(ctx context.Context) error) error {
	hooks := &commitHooks{}
	if err := begin(context.WithValue(ctx, hooksKey{}, hooks)); err != nil {
		return err
	}
	for _, fn := range hooks.fns {
		fn()
	}
	return nil
}

// TxManager runs a function inside one database transaction. Repositories
// called with the context handed to fn join that transaction.
type TxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return withCommitHooks(ctx, func(ctx context.Context) error {
		return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(context.WithValue(ctx, txKey{}, tx))
		})
	})
}

// conn returns the transaction bound to ctx, or db when there is none.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// inTx runs fn in the ambient transaction or opens a new one.
func inTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(tx.WithContext(ctx))
	}
	return withCommitHooks(ctx, func(ctx context.Context) error {
		return db.WithContext(ctx).Transaction(fn)
	})
}
