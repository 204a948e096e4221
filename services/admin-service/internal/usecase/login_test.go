package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/identity-docstore/identity/model"
	"github.com/vasapolrittideah/identity-docstore/shared/provider"
)

type fakeGoogle map[string]*provider.GoogleIdentity

func (f fakeGoogle) ValidateIDToken(_ context.Context, idToken string) (*provider.GoogleIdentity, error) {
	identity, ok := f[idToken]
	if !ok {
		return nil, errors.New("invalid token")
	}

	return identity, nil
}

func TestLoginUsecase_LinkGoogleLogin(t *testing.T) {
	u := setupTestUsecases(t)
	ctx := context.Background()

	logins := NewLoginUsecase(u.stores.Users, fakeGoogle{
		"alice-token": {Subject: "g-1", Email: "alice@gmail.com"},
	})

	alice, err := u.users.CreateUser(ctx, CreateUserParams{UserName: "alice"})
	require.NoError(t, err)
	bob, err := u.users.CreateUser(ctx, CreateUserParams{UserName: "bob"})
	require.NoError(t, err)

	login, err := logins.LinkGoogleLogin(ctx, alice.ID.Hex(), "alice-token")
	require.NoError(t, err)
	assert.Equal(t, &model.LoginInfo{LoginProvider: "Google", ProviderKey: "g-1", ProviderDisplayName: "alice@gmail.com"}, login)

	_, err = logins.LinkGoogleLogin(ctx, alice.ID.Hex(), "alice-token")
	require.NoError(t, err, "relinking to the same user is a no-op")

	listed, err := u.users.ListUserLogins(ctx, alice.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	_, err = logins.LinkGoogleLogin(ctx, bob.ID.Hex(), "alice-token")
	assert.ErrorIs(t, err, ErrLoginAlreadyLinked)

	_, err = logins.LinkGoogleLogin(ctx, bob.ID.Hex(), "forged")
	assert.Error(t, err)

	require.NoError(t, logins.RemoveLogin(ctx, alice.ID.Hex(), "Google", "g-1"))
	listed, err = u.users.ListUserLogins(ctx, alice.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestLoginUsecase_NotConfigured(t *testing.T) {
	u := setupTestUsecases(t)

	_, err := NewLoginUsecase(u.stores.Users, nil).LinkGoogleLogin(context.Background(), "x", "token")
	assert.ErrorIs(t, err, ErrProviderNotConfigured)
}
