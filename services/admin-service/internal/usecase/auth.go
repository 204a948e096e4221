package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/identity-docstore/identity/model"
	"github.com/vasapolrittideah/identity-docstore/identity/repository"
	"github.com/vasapolrittideah/identity-docstore/shared/auth"
	"github.com/vasapolrittideah/identity-docstore/shared/security"
)

// AuthUsecase defines the operator sign-in use cases of the admin API.
type AuthUsecase interface {
	// Login verifies the credentials of a member of the administrator role and
	// issues an access token.
	Login(ctx context.Context, params LoginParams) (*Token, error)
	// Bootstrap makes sure the administrator role and the given account exist
	// and are linked. Existing records are left unchanged.
	Bootstrap(ctx context.Context, params BootstrapParams) error
}

// LoginParams defines the parameters for operator login.
type LoginParams struct {
	UserName string
	Password string
}

// BootstrapParams defines the initial administrator account.
type BootstrapParams struct {
	UserName string
	Email    string
	Password string
}

// Token is an issued access token.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// LockoutPolicy controls how failed logins lock an account.
type LockoutPolicy struct {
	MaxFailedAttempts int
	Duration          time.Duration
}

type authUsecase struct {
	logger        *zerolog.Logger
	roles         repository.RoleStore
	users         repository.UserStore
	userUsecase   UserUsecase
	jwtAuth       *auth.JWTAuthenticator
	adminRoleName string
	lockout       LockoutPolicy
	notifier      LockoutNotifier
	now           func() time.Time
}

func NewAuthUsecase(
	logger *zerolog.Logger,
	roles repository.RoleStore,
	users repository.UserStore,
	jwtAuth *auth.JWTAuthenticator,
	adminRoleName string,
	lockout LockoutPolicy,
	notifier LockoutNotifier,
) AuthUsecase {
	return &authUsecase{
		logger:        logger,
		roles:         roles,
		users:         users,
		userUsecase:   NewUserUsecase(users),
		jwtAuth:       jwtAuth,
		adminRoleName: adminRoleName,
		lockout:       lockout,
		notifier:      notifier,
		now:           time.Now,
	}
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*Token, error) {
	user, err := u.users.FindByName(ctx, normalize(params.UserName))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if u.isLockedOut(user) {
		return nil, ErrLockedOut
	}

	ok, err := security.VerifyPassword(params.Password, user.PasswordHash)
	if err != nil || !ok {
		if err := u.recordFailure(ctx, user); err != nil {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}

	if user.AccessFailedCount > 0 {
		if err := u.users.ResetAccessFailedCount(ctx, user); err != nil {
			return nil, err
		}
		if err := u.users.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	admin, err := u.users.IsInRole(ctx, user, normalize(u.adminRoleName))
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, ErrNotAdministrator
	}

	accessToken, expiresAt, err := u.jwtAuth.GenerateToken(user.ID.Hex(), user.UserName)
	if err != nil {
		return nil, err
	}

	return &Token{AccessToken: accessToken, ExpiresAt: expiresAt}, nil
}

func (u *authUsecase) isLockedOut(user *model.User) bool {
	return user.LockoutEnabled && user.LockoutEnd != nil && user.LockoutEnd.After(u.now())
}

func (u *authUsecase) recordFailure(ctx context.Context, user *model.User) error {
	if !user.LockoutEnabled || u.lockout.MaxFailedAttempts <= 0 {
		return nil
	}

	failures, err := u.users.IncrementAccessFailedCount(ctx, user)
	if err != nil {
		return err
	}

	if failures < u.lockout.MaxFailedAttempts {
		return u.users.Update(ctx, user)
	}

	end := u.now().Add(u.lockout.Duration)
	if err := u.users.SetLockoutEndDate(ctx, user, &end); err != nil {
		return err
	}
	if err := u.users.ResetAccessFailedCount(ctx, user); err != nil {
		return err
	}
	if err := u.users.Update(ctx, user); err != nil {
		return err
	}
	end = *user.LockoutEnd

	u.logger.Warn().Str("user_id", user.ID.Hex()).Time("lockout_end", end).Msg("user locked out")

	if u.notifier != nil {
		if err := u.notifier.NotifyLockout(ctx, user, end); err != nil {
			u.logger.Warn().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to send lockout notice")
		}
	}

	return nil
}

func (u *authUsecase) Bootstrap(ctx context.Context, params BootstrapParams) error {
	role, err := u.roles.FindByName(ctx, normalize(u.adminRoleName))
	if errors.Is(err, repository.ErrNotFound) {
		role, err = NewRoleUsecase(u.roles).CreateRole(ctx, u.adminRoleName)
	}
	if err != nil {
		return err
	}

	user, err := u.users.FindByName(ctx, normalize(params.UserName))
	if errors.Is(err, repository.ErrNotFound) {
		user, err = u.userUsecase.CreateUser(ctx, CreateUserParams{
			UserName: params.UserName,
			Email:    params.Email,
			Password: params.Password,
		})
		if err == nil {
			u.logger.Info().Str("user_id", user.ID.Hex()).Msg("created bootstrap administrator")
		}
	}
	if err != nil {
		return err
	}

	return u.userUsecase.AddUserToRole(ctx, user.ID.Hex(), role.Name)
}
