package repository

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Option configures a store.
type Option func(*storeOptions)

type storeOptions struct {
	cascadeDelete bool
}

// WithCascadeDelete makes Delete also remove the rows that reference the
// deleted user or role (claims, memberships, logins, tokens). Without it those
// rows are left in place for the caller to clean up.
func WithCascadeDelete() Option {
	return func(o *storeOptions) {
		o.cascadeDelete = true
	}
}

func newStoreOptions(opts []Option) storeOptions {
	var o storeOptions
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// lifecycle tracks the disposed state shared by both stores.
type lifecycle struct {
	disposed atomic.Bool
}

// Close marks the store as disposed. It never closes the database the store
// was created from.
func (l *lifecycle) Close() error {
	l.disposed.Store(true)
	return nil
}

func (l *lifecycle) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l.disposed.Load() {
		return ErrDisposed
	}

	return nil
}

func loggerOrNop(logger *zerolog.Logger) *zerolog.Logger {
	if logger != nil {
		return logger
	}
	nop := zerolog.Nop()

	return &nop
}
