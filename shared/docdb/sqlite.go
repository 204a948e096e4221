package docdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const memoryDescriptor = ":memory:"

// sqliteBackend keeps every collection in its own table of BSON blobs inside
// a single database file. Filters are evaluated in process, in rowid order.
type sqliteBackend struct {
	db *sql.DB

	mu     sync.Mutex
	tables map[string]struct{}
}

func openSQLite(ctx context.Context, descriptor string) (*sqliteBackend, error) {
	if descriptor != memoryDescriptor && !strings.HasPrefix(descriptor, "file:") {
		if err := os.MkdirAll(filepath.Dir(descriptor), 0o755); err != nil {
			return nil, fmt.Errorf("docdb: creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", descriptor)
	if err != nil {
		return nil, fmt.Errorf("docdb: opening database: %w", err)
	}

	// A single connection gives the embedded engine one handle, which also
	// keeps an in-memory database alive for the lifetime of the Database.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("docdb: %s: %w", pragma, err)
		}
	}

	return &sqliteBackend{db: db, tables: make(map[string]struct{})}, nil
}

func (b *sqliteBackend) kind() string { return "sqlite" }

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (b *sqliteBackend) ensureTable(ctx context.Context, collection string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.tables[collection]; ok {
		return nil
	}

	stmt := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, doc BLOB NOT NULL)`,
		quoteIdent(collection),
	)
	if _, err := b.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("docdb: creating collection %s: %w", collection, err)
	}
	b.tables[collection] = struct{}{}

	return nil
}

func (b *sqliteBackend) insert(ctx context.Context, collection string, id bson.ObjectID, doc bson.Raw) error {
	if err := b.ensureTable(ctx, collection); err != nil {
		return err
	}

	stmt := fmt.Sprintf(`INSERT INTO %s (id, doc) VALUES (?, ?)`, quoteIdent(collection))
	if _, err := b.db.ExecContext(ctx, stmt, id.Hex(), []byte(doc)); err != nil {
		if isPrimaryKeyViolation(err) {
			return fmt.Errorf("%w: %s in %s", ErrDuplicateKey, id.Hex(), collection)
		}
		return fmt.Errorf("docdb: inserting into %s: %w", collection, err)
	}

	return nil
}

func (b *sqliteBackend) replace(ctx context.Context, collection string, id bson.ObjectID, doc bson.Raw) (bool, error) {
	if err := b.ensureTable(ctx, collection); err != nil {
		return false, err
	}

	stmt := fmt.Sprintf(`UPDATE %s SET doc = ? WHERE id = ?`, quoteIdent(collection))
	result, err := b.db.ExecContext(ctx, stmt, []byte(doc), id.Hex())
	if err != nil {
		return false, fmt.Errorf("docdb: updating %s: %w", collection, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func (b *sqliteBackend) remove(ctx context.Context, collection string, id bson.ObjectID) (bool, error) {
	if err := b.ensureTable(ctx, collection); err != nil {
		return false, err
	}

	stmt := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, quoteIdent(collection))
	result, err := b.db.ExecContext(ctx, stmt, id.Hex())
	if err != nil {
		return false, fmt.Errorf("docdb: deleting from %s: %w", collection, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func (b *sqliteBackend) removeMany(ctx context.Context, collection string, filter Filter) (int64, error) {
	ids, _, err := b.scan(ctx, collection, filter, 0)
	if err != nil {
		return 0, err
	}

	var removed int64
	for _, id := range ids {
		ok, err := b.remove(ctx, collection, id)
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
		}
	}

	return removed, nil
}

func (b *sqliteBackend) find(ctx context.Context, collection string, filter Filter, limit int64) ([]bson.Raw, error) {
	_, docs, err := b.scan(ctx, collection, filter, limit)
	return docs, err
}

func (b *sqliteBackend) count(ctx context.Context, collection string, filter Filter) (int64, error) {
	ids, _, err := b.scan(ctx, collection, filter, 0)
	return int64(len(ids)), err
}

// scan walks the collection in insertion order and returns the ids and
// documents matching filter, stopping after limit matches when limit > 0.
// Rows are fully drained before returning so the single connection is free
// for the caller's next statement.
func (b *sqliteBackend) scan(
	ctx context.Context,
	collection string,
	filter Filter,
	limit int64,
) ([]bson.ObjectID, []bson.Raw, error) {
	if err := b.ensureTable(ctx, collection); err != nil {
		return nil, nil, err
	}
	if filter == nil {
		filter = All()
	}

	stmt := fmt.Sprintf(`SELECT id, doc FROM %s ORDER BY rowid`, quoteIdent(collection))
	rows, err := b.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, nil, fmt.Errorf("docdb: querying %s: %w", collection, err)
	}
	defer rows.Close()

	var (
		ids  []bson.ObjectID
		docs []bson.Raw
	)
	for rows.Next() {
		var (
			hex  string
			data []byte
		)
		if err := rows.Scan(&hex, &data); err != nil {
			return nil, nil, fmt.Errorf("docdb: reading %s: %w", collection, err)
		}

		doc := bson.Raw(data)
		if !filter.Match(doc) {
			continue
		}

		id, err := bson.ObjectIDFromHex(hex)
		if err != nil {
			return nil, nil, fmt.Errorf("docdb: corrupt id %q in %s: %w", hex, collection, err)
		}
		ids = append(ids, id)
		docs = append(docs, doc)

		if limit > 0 && int64(len(docs)) >= limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("docdb: reading %s: %w", collection, err)
	}

	return ids, docs, nil
}

// ensureIndex is a no-op: documents are opaque blobs matched in process.
func (b *sqliteBackend) ensureIndex(context.Context, string, []string) error {
	return nil
}

func (b *sqliteBackend) close(context.Context) error {
	return b.db.Close()
}

func isPrimaryKeyViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
