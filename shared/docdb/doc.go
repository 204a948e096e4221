// Package docdb is a small collection-oriented document store.
//
// A Database is opened from a single connection descriptor. A mongodb:// or
// mongodb+srv:// URI selects a MongoDB deployment; any other value is the path
// of an embedded, single-file database backed by SQLite. Both engines store
// documents as BSON keyed by ObjectID, so the same structs and filters work
// against either.
//
// Collections are typed views created with For or Named:
//
//	users := docdb.For[model.User](db)
//	id, err := users.Insert(ctx, &model.User{UserName: "alice"})
//	u, err := users.FindOne(ctx, docdb.EqFold("normalized_user_name", "ALICE"))
//
// The store enforces no uniqueness beyond the document id and offers no
// transactions across collections.
package docdb
