package config

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/identity-docstore/identity/model"
	"github.com/vasapolrittideah/identity-docstore/identity/repository"
	"github.com/vasapolrittideah/identity-docstore/shared/docdb"
	"github.com/vasapolrittideah/identity-docstore/shared/validation"
)

func TestLoad(t *testing.T) {
	t.Setenv("IDENTITY_CONNECTION_STRING", "/var/lib/identity/identity.db")
	t.Setenv("IDENTITY_CASCADE_DELETE", "true")

	cfg, err := Load(validation.New())
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/identity/identity.db", cfg.ConnectionString)
	assert.Empty(t, cfg.DatabaseName)
	assert.True(t, cfg.CascadeDelete)
	assert.Len(t, cfg.StoreOptions(), 1)
}

func TestLoad_MissingConnectionString(t *testing.T) {
	t.Setenv("IDENTITY_CONNECTION_STRING", "")

	_, err := Load(validation.New())

	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "IDENTITY_CONNECTION_STRING")
}

func TestLoad_BadBool(t *testing.T) {
	t.Setenv("IDENTITY_CONNECTION_STRING", "identity.db")
	t.Setenv("IDENTITY_CASCADE_DELETE", "sometimes")

	_, err := Load(validation.New())
	assert.Error(t, err)
}

func TestConfig_Open(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()
	cfg := &Config{
		ConnectionString: filepath.Join(t.TempDir(), "data", "identity.db"),
		CascadeDelete:    true,
	}

	stores, err := cfg.Open(ctx, &logger)
	require.NoError(t, err)

	role := &model.Role{Name: "Admin", NormalizedName: "ADMIN"}
	require.NoError(t, stores.Roles.Create(ctx, role))
	user := &model.User{UserName: "root", NormalizedUserName: "ROOT"}
	require.NoError(t, stores.Users.Create(ctx, user))
	require.NoError(t, stores.Users.AddToRole(ctx, user, "ADMIN"))

	require.NoError(t, stores.Roles.Delete(ctx, role))
	in, err := stores.Users.IsInRole(ctx, user, "ADMIN")
	require.NoError(t, err)
	assert.False(t, in)

	require.NoError(t, stores.Close())
	_, err = stores.Users.Users(ctx)
	assert.ErrorIs(t, err, repository.ErrDisposed)
}

type recordingRoleStore struct {
	repository.RoleStore
	closed bool
}

func (r *recordingRoleStore) Close() error {
	r.closed = true
	return r.RoleStore.Close()
}

func TestConfig_Open_UserStoreFailureClosesRoleStore(t *testing.T) {
	var roles *recordingRoleStore
	origRoles, origUsers := newRoleStore, newUserStore
	t.Cleanup(func() { newRoleStore, newUserStore = origRoles, origUsers })

	newRoleStore = func(
		ctx context.Context,
		logger *zerolog.Logger,
		db *docdb.Database,
		opts ...repository.Option,
	) (repository.RoleStore, error) {
		store, err := origRoles(ctx, logger, db, opts...)
		if err != nil {
			return nil, err
		}
		roles = &recordingRoleStore{RoleStore: store}
		return roles, nil
	}
	errUsers := errors.New("user store unavailable")
	newUserStore = func(
		context.Context,
		*zerolog.Logger,
		*docdb.Database,
		...repository.Option,
	) (repository.UserStore, error) {
		return nil, errUsers
	}

	logger := zerolog.Nop()
	cfg := &Config{ConnectionString: filepath.Join(t.TempDir(), "identity.db")}

	_, err := cfg.Open(context.Background(), &logger)
	require.ErrorIs(t, err, errUsers)
	require.NotNil(t, roles)
	assert.True(t, roles.closed)
}
