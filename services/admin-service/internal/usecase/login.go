package usecase

import (
	"context"
	"errors"

	"github.com/vasapolrittideah/identity-docstore/identity/model"
	"github.com/vasapolrittideah/identity-docstore/identity/repository"
	"github.com/vasapolrittideah/identity-docstore/shared/provider"
)

var (
	ErrProviderNotConfigured = errors.New("login provider is not configured")
	ErrLoginAlreadyLinked    = errors.New("login is already linked to another user")
)

// GoogleTokenValidator resolves Google ID tokens.
type GoogleTokenValidator interface {
	ValidateIDToken(ctx context.Context, idToken string) (*provider.GoogleIdentity, error)
}

// LoginUsecase defines the external login use cases.
type LoginUsecase interface {
	// LinkGoogleLogin attaches the Google account behind idToken to the user.
	LinkGoogleLogin(ctx context.Context, id, idToken string) (*model.LoginInfo, error)
	RemoveLogin(ctx context.Context, id, loginProvider, providerKey string) error
}

type loginUsecase struct {
	users       repository.UserStore
	userUsecase UserUsecase
	google      GoogleTokenValidator
}

// NewLoginUsecase creates a new instance of LoginUsecase. google may be nil,
// in which case linking Google accounts fails with ErrProviderNotConfigured.
func NewLoginUsecase(users repository.UserStore, google GoogleTokenValidator) LoginUsecase {
	return &loginUsecase{
		users:       users,
		userUsecase: NewUserUsecase(users),
		google:      google,
	}
}

func (u *loginUsecase) LinkGoogleLogin(ctx context.Context, id, idToken string) (*model.LoginInfo, error) {
	if u.google == nil {
		return nil, ErrProviderNotConfigured
	}

	user, err := u.userUsecase.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	identity, err := u.google.ValidateIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}

	login := model.LoginInfo{
		LoginProvider:       provider.GoogleLoginProvider,
		ProviderKey:         identity.Subject,
		ProviderDisplayName: identity.Email,
	}

	owner, err := u.users.FindByLogin(ctx, login.LoginProvider, login.ProviderKey)
	switch {
	case err == nil && owner.ID == user.ID:
		return &login, nil
	case err == nil:
		return nil, ErrLoginAlreadyLinked
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	if err := u.users.AddLogin(ctx, user, login); err != nil {
		return nil, err
	}

	return &login, nil
}

func (u *loginUsecase) RemoveLogin(ctx context.Context, id, loginProvider, providerKey string) error {
	user, err := u.userUsecase.GetUser(ctx, id)
	if err != nil {
		return err
	}

	return u.users.RemoveLogin(ctx, user, loginProvider, providerKey)
}
