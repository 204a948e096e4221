package repository

import (
	"context"
	"errors"

	"github.com/vasapolrittideah/identity-docstore/identity/model"
	"github.com/vasapolrittideah/identity-docstore/shared/docdb"
)

// UserLoginStore manages external logins.
type UserLoginStore interface {
	AddLogin(ctx context.Context, user *model.User, login model.LoginInfo) error
	RemoveLogin(ctx context.Context, user *model.User, loginProvider, providerKey string) error
	GetLogins(ctx context.Context, user *model.User) ([]model.LoginInfo, error)
	// FindByLogin returns the user owning the login or ErrNotFound.
	FindByLogin(ctx context.Context, loginProvider, providerKey string) (*model.User, error)
}

func checkLoginKey(loginProvider, providerKey string) error {
	if loginProvider == "" {
		return argumentError("login provider")
	}
	if providerKey == "" {
		return argumentError("provider key")
	}

	return nil
}

func (s *userStore) AddLogin(ctx context.Context, user *model.User, login model.LoginInfo) error {
	if err := s.checkUser(ctx, user); err != nil {
		return err
	}
	if err := checkLoginKey(login.LoginProvider, login.ProviderKey); err != nil {
		return err
	}

	_, err := s.userLogins.Insert(ctx, &model.UserLogin{
		UserID:              user.ID,
		LoginProvider:       login.LoginProvider,
		ProviderKey:         login.ProviderKey,
		ProviderDisplayName: login.ProviderDisplayName,
	})

	return err
}

func (s *userStore) RemoveLogin(ctx context.Context, user *model.User, loginProvider, providerKey string) error {
	if err := s.checkUser(ctx, user); err != nil {
		return err
	}
	if err := checkLoginKey(loginProvider, providerKey); err != nil {
		return err
	}

	login, err := s.userLogins.FindOne(ctx, docdb.And(
		docdb.Eq("user_id", user.ID),
		docdb.Eq("login_provider", loginProvider),
		docdb.Eq("provider_key", providerKey),
	))
	if err != nil {
		if errors.Is(err, docdb.ErrNoDocuments) {
			return nil
		}
		return err
	}

	_, err = s.userLogins.Delete(ctx, login.ID)
	return err
}

func (s *userStore) GetLogins(ctx context.Context, user *model.User) ([]model.LoginInfo, error) {
	if err := s.checkUser(ctx, user); err != nil {
		return nil, err
	}

	rows, err := s.userLogins.Find(ctx, docdb.Eq("user_id", user.ID))
	if err != nil {
		return nil, err
	}

	logins := make([]model.LoginInfo, 0, len(rows))
	for _, row := range rows {
		logins = append(logins, row.LoginInfo())
	}

	return logins, nil
}

func (s *userStore) FindByLogin(ctx context.Context, loginProvider, providerKey string) (*model.User, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if err := checkLoginKey(loginProvider, providerKey); err != nil {
		return nil, err
	}

	login, err := s.userLogins.FindOne(ctx, docdb.And(
		docdb.Eq("provider_key", providerKey),
		docdb.Eq("login_provider", loginProvider),
	))
	if err != nil {
		return nil, err
	}

	return s.users.FindByID(ctx, login.UserID)
}
