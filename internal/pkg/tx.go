package pkg

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// WithTx executes fn within a database transaction.
// It commits on success, rolls back on error or panic.
func WithTx(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// ContextWithTx binds tx to ctx so that repositories called with the returned
// context join the transaction.
func ContextWithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns the transaction bound to ctx, if any.
func TxFromContext(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}

// Conn returns the transaction bound to ctx or db, scoped to ctx.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := TxFromContext(ctx); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// WithTxContext runs fn with a context carrying a transaction. When ctx
// already carries one, fn joins it and the outer owner commits; otherwise a
// new transaction is opened and committed when fn returns nil.
func WithTxContext(ctx context.Context, db *gorm.DB, fn func(ctx context.Context) error) error {
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}
	return WithTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		return fn(ContextWithTx(ctx, tx))
	})
}
