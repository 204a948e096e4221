package docdb

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	ErrMissingDescriptor     = errors.New("docdb: connection descriptor is missing")
	ErrDisposed              = errors.New("docdb: object has been disposed")
	ErrNoDocuments           = errors.New("docdb: no documents in result")
	ErrDuplicateKey          = errors.New("docdb: duplicate document id")
	ErrInvalidID             = errors.New("docdb: document _id must be an ObjectID")
	ErrInvalidCollectionName = errors.New("docdb: invalid collection name")
)

const defaultDatabaseName = "identity"

// backend is the storage engine behind a Database. Documents cross this
// boundary as raw BSON so every engine shares one encoding.
type backend interface {
	insert(ctx context.Context, collection string, id bson.ObjectID, doc bson.Raw) error
	replace(ctx context.Context, collection string, id bson.ObjectID, doc bson.Raw) (bool, error)
	remove(ctx context.Context, collection string, id bson.ObjectID) (bool, error)
	removeMany(ctx context.Context, collection string, filter Filter) (int64, error)
	find(ctx context.Context, collection string, filter Filter, limit int64) ([]bson.Raw, error)
	count(ctx context.Context, collection string, filter Filter) (int64, error)
	ensureIndex(ctx context.Context, collection string, fields []string) error
	close(ctx context.Context) error
	kind() string
}

// Database owns one open handle to a document store and vends collections
// from it. It is meant to have a single owner that opens it once and closes
// it once; collections borrowed from it fail with ErrDisposed afterwards.
type Database struct {
	backend backend
	logger  *zerolog.Logger

	// mu is held shared by every backend call and exclusively by Close, so
	// an operation either completes before the handle is released or fails
	// with ErrDisposed.
	mu        sync.RWMutex
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Option configures Open.
type Option func(*openOptions)

type openOptions struct {
	logger       *zerolog.Logger
	databaseName string
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *openOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDatabaseName selects the MongoDB database. It is ignored by the
// embedded engine, where the descriptor already names a single file.
func WithDatabaseName(name string) Option {
	return func(o *openOptions) {
		if name != "" {
			o.databaseName = name
		}
	}
}

// Open opens the document store identified by descriptor. Descriptors with a
// mongodb:// or mongodb+srv:// scheme connect to a MongoDB deployment; any
// other value is treated as the path of an embedded database file.
func Open(ctx context.Context, descriptor string, opts ...Option) (*Database, error) {
	descriptor = strings.TrimSpace(descriptor)
	if descriptor == "" {
		return nil, ErrMissingDescriptor
	}

	nop := zerolog.Nop()
	o := openOptions{logger: &nop}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		b   backend
		err error
	)
	if isMongoDescriptor(descriptor) {
		b, err = openMongo(ctx, descriptor, o.databaseName)
	} else {
		b, err = openSQLite(ctx, descriptor)
	}
	if err != nil {
		return nil, err
	}

	o.logger.Info().Str("engine", b.kind()).Msg("document database opened")

	return &Database{backend: b, logger: o.logger}, nil
}

// Close releases the underlying handle. Calling it more than once is safe and
// returns the result of the first call.
func (d *Database) Close() error {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		defer d.mu.Unlock()

		d.closed.Store(true)
		d.closeErr = d.backend.close(context.Background())
		d.logger.Debug().Str("engine", d.backend.kind()).Msg("document database closed")
	})

	return d.closeErr
}

// Disposed reports whether Close has been called.
func (d *Database) Disposed() bool {
	return d.closed.Load()
}

// acquire pins the handle open for one backend call. The returned func must
// be called when the call is done.
func (d *Database) acquire() (func(), error) {
	d.mu.RLock()
	if d.closed.Load() {
		d.mu.RUnlock()
		return nil, ErrDisposed
	}

	return d.mu.RUnlock, nil
}

// Engine names the storage engine in use ("sqlite" or "mongodb").
func (d *Database) Engine() string {
	return d.backend.kind()
}

func isMongoDescriptor(descriptor string) bool {
	return strings.HasPrefix(descriptor, "mongodb://") || strings.HasPrefix(descriptor, "mongodb+srv://")
}
