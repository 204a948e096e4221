package repository

import (
	"context"
	"errors"
	"slices"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/identity-docstore/identity/model"
	"github.com/vasapolrittideah/identity-docstore/shared/docdb"
)

// Two-factor data is kept in the token collection under a reserved provider.
const (
	InternalLoginProvider     = "[AspNetUserStore]"
	AuthenticatorKeyTokenName = "AuthenticatorKey"
	RecoveryCodeTokenName     = "RecoveryCodes"

	recoveryCodeSeparator = ";"
)

// UserAuthenticationTokenStore manages named tokens per user and provider.
type UserAuthenticationTokenStore interface {
	// SetToken inserts the token or overwrites the value of the existing one.
	// The lookup and the write are separate calls with no transaction around
	// them; concurrent writers to the same token race and the last one wins.
	SetToken(ctx context.Context, user *model.User, loginProvider, name, value string) error
	RemoveToken(ctx context.Context, user *model.User, loginProvider, name string) error
	// GetToken returns the token value, or an empty string when there is none.
	GetToken(ctx context.Context, user *model.User, loginProvider, name string) (string, error)
}

// UserAuthenticatorKeyStore stores the authenticator app secret.
type UserAuthenticatorKeyStore interface {
	SetAuthenticatorKey(ctx context.Context, user *model.User, key string) error
	GetAuthenticatorKey(ctx context.Context, user *model.User) (string, error)
}

// UserTwoFactorRecoveryCodeStore stores recovery codes as one token whose
// value is the codes joined by ";".
type UserTwoFactorRecoveryCodeStore interface {
	ReplaceCodes(ctx context.Context, user *model.User, recoveryCodes []string) error
	// RedeemCode consumes one occurrence of code and reports whether it was
	// present.
	RedeemCode(ctx context.Context, user *model.User, code string) (bool, error)
	CountCodes(ctx context.Context, user *model.User) (int, error)
}

func checkTokenKey(loginProvider, name string) error {
	if loginProvider == "" {
		return argumentError("login provider")
	}
	if name == "" {
		return argumentError("token name")
	}

	return nil
}

func (s *userStore) findToken(
	ctx context.Context,
	userID bson.ObjectID,
	loginProvider, name string,
) (*model.UserToken, error) {
	return s.userTokens.FindOne(ctx, docdb.And(
		docdb.Eq("user_id", userID),
		docdb.Eq("login_provider", loginProvider),
		docdb.Eq("name", name),
	))
}

func (s *userStore) SetToken(ctx context.Context, user *model.User, loginProvider, name, value string) error {
	if err := s.checkUser(ctx, user); err != nil {
		return err
	}
	if err := checkTokenKey(loginProvider, name); err != nil {
		return err
	}

	token, err := s.findToken(ctx, user.ID, loginProvider, name)
	if errors.Is(err, docdb.ErrNoDocuments) {
		_, err = s.userTokens.Insert(ctx, &model.UserToken{
			UserID:        user.ID,
			LoginProvider: loginProvider,
			Name:          name,
			Value:         value,
		})
		return err
	}
	if err != nil {
		return err
	}

	token.Value = value
	_, err = s.userTokens.Update(ctx, token.ID, token)

	return err
}

func (s *userStore) RemoveToken(ctx context.Context, user *model.User, loginProvider, name string) error {
	if err := s.checkUser(ctx, user); err != nil {
		return err
	}
	if err := checkTokenKey(loginProvider, name); err != nil {
		return err
	}

	token, err := s.findToken(ctx, user.ID, loginProvider, name)
	if err != nil {
		if errors.Is(err, docdb.ErrNoDocuments) {
			return nil
		}
		return err
	}

	_, err = s.userTokens.Delete(ctx, token.ID)
	return err
}

func (s *userStore) GetToken(ctx context.Context, user *model.User, loginProvider, name string) (string, error) {
	if err := s.checkUser(ctx, user); err != nil {
		return "", err
	}
	if err := checkTokenKey(loginProvider, name); err != nil {
		return "", err
	}

	token, err := s.findToken(ctx, user.ID, loginProvider, name)
	if err != nil {
		if errors.Is(err, docdb.ErrNoDocuments) {
			return "", nil
		}
		return "", err
	}

	return token.Value, nil
}

func (s *userStore) SetAuthenticatorKey(ctx context.Context, user *model.User, key string) error {
	return s.SetToken(ctx, user, InternalLoginProvider, AuthenticatorKeyTokenName, key)
}

func (s *userStore) GetAuthenticatorKey(ctx context.Context, user *model.User) (string, error) {
	return s.GetToken(ctx, user, InternalLoginProvider, AuthenticatorKeyTokenName)
}

func (s *userStore) ReplaceCodes(ctx context.Context, user *model.User, recoveryCodes []string) error {
	merged := strings.Join(recoveryCodes, recoveryCodeSeparator)
	return s.SetToken(ctx, user, InternalLoginProvider, RecoveryCodeTokenName, merged)
}

func (s *userStore) RedeemCode(ctx context.Context, user *model.User, code string) (bool, error) {
	if err := s.checkUser(ctx, user); err != nil {
		return false, err
	}
	if code == "" {
		return false, argumentError("recovery code")
	}

	merged, err := s.GetToken(ctx, user, InternalLoginProvider, RecoveryCodeTokenName)
	if err != nil {
		return false, err
	}
	if merged == "" {
		return false, nil
	}

	codes := strings.Split(merged, recoveryCodeSeparator)
	i := slices.Index(codes, code)
	if i < 0 {
		return false, nil
	}

	if err := s.ReplaceCodes(ctx, user, slices.Delete(codes, i, i+1)); err != nil {
		return false, err
	}

	return true, nil
}

func (s *userStore) CountCodes(ctx context.Context, user *model.User) (int, error) {
	merged, err := s.GetToken(ctx, user, InternalLoginProvider, RecoveryCodeTokenName)
	if err != nil {
		return 0, err
	}
	if merged == "" {
		return 0, nil
	}

	return len(strings.Split(merged, recoveryCodeSeparator)), nil
}
