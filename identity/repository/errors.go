package repository

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/identity-docstore/shared/docdb"
)

var (
	// ErrInvalidArgument reports a missing or malformed required input. It is
	// returned before any storage call is made.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidOperation reports a request that breaks a domain rule, such
	// as adding a user to a role that does not exist.
	ErrInvalidOperation = errors.New("invalid operation")

	ErrRoleNotFound = fmt.Errorf("%w: role not found", ErrInvalidOperation)

	// ErrDisposed is returned by every operation on a closed store or on a
	// store whose database has been closed.
	ErrDisposed = docdb.ErrDisposed

	// ErrNotFound is returned by lookups that match no document.
	ErrNotFound = docdb.ErrNoDocuments
)

func argumentError(name string) error {
	return fmt.Errorf("%w: %s is required", ErrInvalidArgument, name)
}

func parseID(name, id string) (bson.ObjectID, error) {
	if id == "" {
		return bson.ObjectID{}, argumentError(name)
	}

	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.ObjectID{}, fmt.Errorf("%w: %s %q is not a valid id", ErrInvalidArgument, name, id)
	}

	return objectID, nil
}

// idString renders an id the way callers receive it, empty for unsaved
// entities.
func idString(id bson.ObjectID) string {
	if id.IsZero() {
		return ""
	}

	return id.Hex()
}
