package docdb

import (
	"context"
	"fmt"
	"reflect"
	"regexp"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var collectionNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Collection is a typed view over one named collection. T is a struct whose
// bson tags map it to documents; its identity lives in the "_id" field as an
// ObjectID.
type Collection[T any] struct {
	db   *Database
	name string
	err  error
}

// For returns the collection named after T's type name.
func For[T any](db *Database) *Collection[T] {
	return Named[T](db, reflect.TypeFor[T]().Name())
}

// Named returns the collection with the given name. Names must be plain
// identifiers; an invalid name surfaces as ErrInvalidCollectionName on first
// use.
func Named[T any](db *Database, name string) *Collection[T] {
	c := &Collection[T]{db: db, name: name}
	if !collectionNamePattern.MatchString(name) {
		c.err = fmt.Errorf("%w: %q", ErrInvalidCollectionName, name)
	}

	return c
}

// Name returns the collection name.
func (c *Collection[T]) Name() string {
	return c.name
}

func (c *Collection[T]) ready(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	release, err := c.db.acquire()
	if err != nil {
		return nil, err
	}
	if c.err != nil {
		release()
		return nil, c.err
	}

	return release, nil
}

// Insert stores doc and returns its id. A zero "_id" is replaced by a newly
// generated ObjectID; inserting an id that already exists fails with
// ErrDuplicateKey.
func (c *Collection[T]) Insert(ctx context.Context, doc *T) (bson.ObjectID, error) {
	release, err := c.ready(ctx)
	if err != nil {
		return bson.ObjectID{}, err
	}
	defer release()

	raw, id, err := encode(doc)
	if err != nil {
		return bson.ObjectID{}, err
	}

	if err := c.db.backend.insert(ctx, c.name, id, raw); err != nil {
		return bson.ObjectID{}, err
	}

	return id, nil
}

// Update replaces the document with the given id. It reports false when no
// such document exists.
func (c *Collection[T]) Update(ctx context.Context, id bson.ObjectID, doc *T) (bool, error) {
	release, err := c.ready(ctx)
	if err != nil {
		return false, err
	}
	defer release()

	raw, err := encodeWithID(doc, id)
	if err != nil {
		return false, err
	}

	return c.db.backend.replace(ctx, c.name, id, raw)
}

// Delete removes the document with the given id. It reports false when no
// such document exists.
func (c *Collection[T]) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	release, err := c.ready(ctx)
	if err != nil {
		return false, err
	}
	defer release()

	return c.db.backend.remove(ctx, c.name, id)
}

// DeleteMany removes every document matching filter and returns how many were
// removed.
func (c *Collection[T]) DeleteMany(ctx context.Context, filter Filter) (int64, error) {
	release, err := c.ready(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	return c.db.backend.removeMany(ctx, c.name, filter)
}

// FindByID returns the document with the given id or ErrNoDocuments.
func (c *Collection[T]) FindByID(ctx context.Context, id bson.ObjectID) (*T, error) {
	return c.FindOne(ctx, Eq("_id", id))
}

// FindOne returns the first document, in insertion order, matching filter or
// ErrNoDocuments.
func (c *Collection[T]) FindOne(ctx context.Context, filter Filter) (*T, error) {
	release, err := c.ready(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	raws, err := c.db.backend.find(ctx, c.name, filter, 1)
	if err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return nil, ErrNoDocuments
	}

	return decode[T](raws[0])
}

// Find returns every document matching filter in insertion order.
func (c *Collection[T]) Find(ctx context.Context, filter Filter) ([]*T, error) {
	release, err := c.ready(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	raws, err := c.db.backend.find(ctx, c.name, filter, 0)
	if err != nil {
		return nil, err
	}

	docs := make([]*T, 0, len(raws))
	for _, raw := range raws {
		doc, err := decode[T](raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// FindAll returns every document in the collection.
func (c *Collection[T]) FindAll(ctx context.Context) ([]*T, error) {
	return c.Find(ctx, All())
}

// Count returns the number of documents matching filter.
func (c *Collection[T]) Count(ctx context.Context, filter Filter) (int64, error) {
	release, err := c.ready(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	return c.db.backend.count(ctx, c.name, filter)
}

// EnsureIndex creates a non-unique ascending index over fields when the engine
// supports secondary indexes.
func (c *Collection[T]) EnsureIndex(ctx context.Context, fields ...string) error {
	release, err := c.ready(ctx)
	if err != nil {
		return err
	}
	defer release()

	return c.db.backend.ensureIndex(ctx, c.name, fields)
}

func encode[T any](doc *T) (bson.Raw, bson.ObjectID, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, bson.ObjectID{}, fmt.Errorf("docdb: encoding document: %w", err)
	}

	idValue, err := bson.Raw(raw).LookupErr("_id")
	if err == nil {
		id, ok := idValue.ObjectIDOK()
		if !ok {
			return nil, bson.ObjectID{}, ErrInvalidID
		}
		if !id.IsZero() {
			return raw, id, nil
		}
	}

	id := bson.NewObjectID()
	raw, err = encodeWithID(doc, id)

	return raw, id, err
}

// encodeWithID marshals doc with "_id" forced to id as the first element.
func encodeWithID[T any](doc *T, id bson.ObjectID) (bson.Raw, error) {
	var fields bson.D
	data, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("docdb: encoding document: %w", err)
	}
	if err := bson.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("docdb: encoding document: %w", err)
	}

	out := make(bson.D, 0, len(fields)+1)
	out = append(out, bson.E{Key: "_id", Value: id})
	for _, f := range fields {
		if f.Key != "_id" {
			out = append(out, f)
		}
	}

	raw, err := bson.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("docdb: encoding document: %w", err)
	}

	return raw, nil
}

func decode[T any](raw bson.Raw) (*T, error) {
	doc := new(T)
	if err := bson.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("docdb: decoding document: %w", err)
	}

	return doc, nil
}
