package repository

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/identity-docstore/identity/model"
	"github.com/vasapolrittideah/identity-docstore/shared/docdb"
)

type testStores struct {
	db    *docdb.Database
	roles RoleStore
	users UserStore
}

func setupTestStores(t *testing.T, opts ...Option) testStores {
	t.Helper()

	ctx := context.Background()
	db, err := docdb.Open(ctx, filepath.Join(t.TempDir(), "identity.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := zerolog.Nop()
	roles, err := NewRoleStore(ctx, &logger, db, opts...)
	require.NoError(t, err)
	users, err := NewUserStore(ctx, &logger, db, opts...)
	require.NoError(t, err)

	return testStores{db: db, roles: roles, users: users}
}

func (s testStores) createRole(t *testing.T, name string) *model.Role {
	t.Helper()

	role := &model.Role{Name: name}
	require.NoError(t, s.roles.SetNormalizedRoleName(context.Background(), role, name))
	require.NoError(t, s.roles.Create(context.Background(), role))

	return role
}

func (s testStores) createUser(t *testing.T, userName string) *model.User {
	t.Helper()

	user := &model.User{
		UserName:           userName,
		NormalizedUserName: strings.ToUpper(userName),
		Email:              userName + "@example.com",
		NormalizedEmail:    strings.ToUpper(userName + "@example.com"),
		SecurityStamp:      "stamp",
	}
	require.NoError(t, s.users.Create(context.Background(), user))

	return user
}

func count[T any](t *testing.T, db *docdb.Database, filter docdb.Filter) int64 {
	t.Helper()

	n, err := docdb.For[T](db).Count(context.Background(), filter)
	require.NoError(t, err)

	return n
}
