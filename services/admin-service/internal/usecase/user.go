package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/vasapolrittideah/identity-docstore/identity/model"
	"github.com/vasapolrittideah/identity-docstore/identity/repository"
	"github.com/vasapolrittideah/identity-docstore/shared/security"
)

const recoveryCodeCount = 10

// UserUsecase defines the user administration use cases.
type UserUsecase interface {
	ListUsers(ctx context.Context) ([]*model.User, error)
	CreateUser(ctx context.Context, params CreateUserParams) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error

	ListUserRoles(ctx context.Context, id string) ([]string, error)
	// AddUserToRole is idempotent: an existing membership is left as is.
	AddUserToRole(ctx context.Context, id, roleName string) error
	RemoveUserFromRole(ctx context.Context, id, roleName string) error

	ListUserClaims(ctx context.Context, id string) ([]model.Claim, error)
	ListUserLogins(ctx context.Context, id string) ([]model.LoginInfo, error)

	// GenerateRecoveryCodes replaces the user's recovery codes with a fresh set.
	GenerateRecoveryCodes(ctx context.Context, id string) ([]string, error)
	// RedeemRecoveryCode consumes code and returns whether it was valid along
	// with the number of codes left.
	RedeemRecoveryCode(ctx context.Context, id, code string) (bool, int, error)
}

// CreateUserParams defines the parameters for creating a user.
type CreateUserParams struct {
	UserName    string
	Email       string
	PhoneNumber string
	Password    string
}

type userUsecase struct {
	users repository.UserStore
}

// NewUserUsecase creates a new instance of UserUsecase.
func NewUserUsecase(users repository.UserStore) UserUsecase {
	return &userUsecase{users: users}
}

func (u *userUsecase) ListUsers(ctx context.Context) ([]*model.User, error) {
	return u.users.Users(ctx)
}

func (u *userUsecase) CreateUser(ctx context.Context, params CreateUserParams) (*model.User, error) {
	if err := u.ensureUnique(ctx, params.UserName, params.Email); err != nil {
		return nil, err
	}

	user := &model.User{
		UserName:           strings.TrimSpace(params.UserName),
		NormalizedUserName: normalize(params.UserName),
		Email:              strings.TrimSpace(params.Email),
		NormalizedEmail:    normalize(params.Email),
		PhoneNumber:        params.PhoneNumber,
		LockoutEnabled:     true,
	}

	if params.Password != "" {
		passwordHash, err := security.HashPassword(params.Password)
		if err != nil {
			return nil, err
		}
		if err := u.users.SetPasswordHash(ctx, user, passwordHash); err != nil {
			return nil, err
		}
	}

	if err := u.users.SetSecurityStamp(ctx, user, uuid.NewString()); err != nil {
		return nil, err
	}

	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (u *userUsecase) ensureUnique(ctx context.Context, userName, email string) error {
	_, err := u.users.FindByName(ctx, normalize(userName))
	if err == nil {
		return ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if normalize(email) == "" {
		return nil
	}

	_, err = u.users.FindByEmail(ctx, normalize(email))
	if err == nil {
		return ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	return nil
}

func (u *userUsecase) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

func (u *userUsecase) DeleteUser(ctx context.Context, id string) error {
	user, err := u.GetUser(ctx, id)
	if err != nil {
		return err
	}

	return u.users.Delete(ctx, user)
}

func (u *userUsecase) ListUserRoles(ctx context.Context, id string) ([]string, error) {
	user, err := u.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	return u.users.GetRoles(ctx, user)
}

func (u *userUsecase) AddUserToRole(ctx context.Context, id, roleName string) error {
	user, err := u.GetUser(ctx, id)
	if err != nil {
		return err
	}

	in, err := u.users.IsInRole(ctx, user, normalize(roleName))
	if err != nil || in {
		return err
	}

	if err := u.users.AddToRole(ctx, user, normalize(roleName)); err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return ErrRoleNotFound
		}
		return err
	}

	return nil
}

func (u *userUsecase) RemoveUserFromRole(ctx context.Context, id, roleName string) error {
	user, err := u.GetUser(ctx, id)
	if err != nil {
		return err
	}

	return u.users.RemoveFromRole(ctx, user, normalize(roleName))
}

func (u *userUsecase) ListUserClaims(ctx context.Context, id string) ([]model.Claim, error) {
	user, err := u.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	return u.users.GetClaims(ctx, user)
}

func (u *userUsecase) ListUserLogins(ctx context.Context, id string) ([]model.LoginInfo, error) {
	user, err := u.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	return u.users.GetLogins(ctx, user)
}

func (u *userUsecase) GenerateRecoveryCodes(ctx context.Context, id string) ([]string, error) {
	user, err := u.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, recoveryCodeCount)
	for range recoveryCodeCount {
		code, err := generateRecoveryCode()
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}

	if err := u.users.ReplaceCodes(ctx, user, codes); err != nil {
		return nil, err
	}

	return codes, nil
}

func (u *userUsecase) RedeemRecoveryCode(ctx context.Context, id, code string) (bool, int, error) {
	user, err := u.GetUser(ctx, id)
	if err != nil {
		return false, 0, err
	}

	redeemed, err := u.users.RedeemCode(ctx, user, code)
	if err != nil {
		return false, 0, err
	}

	remaining, err := u.users.CountCodes(ctx, user)
	if err != nil {
		return false, 0, err
	}

	return redeemed, remaining, nil
}

// generateRecoveryCode returns a code formatted as xxxxx-xxxxx.
func generateRecoveryCode() (string, error) {
	bytes := make([]byte, 5)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	encoded := hex.EncodeToString(bytes)

	return encoded[:5] + "-" + encoded[5:], nil
}
