package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/identity-docstore/identity/model"
	"github.com/vasapolrittideah/identity-docstore/shared/docdb"
)

// UserStore is the full set of user operations. Each capability is also
// available as its own interface so callers can depend on only what they use.
type UserStore interface {
	QueryableUserStore
	UserClaimStore
	UserRoleStore
	UserLoginStore
	UserPasswordStore
	UserSecurityStampStore
	UserEmailStore
	UserPhoneNumberStore
	UserLockoutStore
	UserTwoFactorStore
	UserAuthenticationTokenStore
	UserAuthenticatorKeyStore
	UserTwoFactorRecoveryCodeStore

	Close() error
}

// QueryableUserStore covers user CRUD and lookups.
type QueryableUserStore interface {
	// Users returns every stored user.
	Users(ctx context.Context) ([]*model.User, error)

	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, user *model.User) error

	FindByID(ctx context.Context, userID string) (*model.User, error)
	// FindByName and FindByEmail expect keys already normalized by the
	// caller and match them case-insensitively.
	FindByName(ctx context.Context, normalizedUserName string) (*model.User, error)
	FindByEmail(ctx context.Context, normalizedEmail string) (*model.User, error)

	GetUserID(ctx context.Context, user *model.User) (string, error)
	GetUserName(ctx context.Context, user *model.User) (string, error)
	SetUserName(ctx context.Context, user *model.User, userName string) error
	GetNormalizedUserName(ctx context.Context, user *model.User) (string, error)
	SetNormalizedUserName(ctx context.Context, user *model.User, normalizedName string) error
}

// UserPasswordStore stores the opaque password hash.
type UserPasswordStore interface {
	GetPasswordHash(ctx context.Context, user *model.User) (string, error)
	SetPasswordHash(ctx context.Context, user *model.User, passwordHash string) error
	HasPassword(ctx context.Context, user *model.User) (bool, error)
}

// UserSecurityStampStore stores the security stamp.
type UserSecurityStampStore interface {
	GetSecurityStamp(ctx context.Context, user *model.User) (string, error)
	SetSecurityStamp(ctx context.Context, user *model.User, stamp string) error
}

// UserEmailStore stores the email address and its confirmation flag.
type UserEmailStore interface {
	GetEmail(ctx context.Context, user *model.User) (string, error)
	SetEmail(ctx context.Context, user *model.User, email string) error
	GetEmailConfirmed(ctx context.Context, user *model.User) (bool, error)
	SetEmailConfirmed(ctx context.Context, user *model.User, confirmed bool) error
	GetNormalizedEmail(ctx context.Context, user *model.User) (string, error)
	SetNormalizedEmail(ctx context.Context, user *model.User, normalizedEmail string) error
}

// UserPhoneNumberStore stores the phone number and its confirmation flag.
type UserPhoneNumberStore interface {
	GetPhoneNumber(ctx context.Context, user *model.User) (string, error)
	SetPhoneNumber(ctx context.Context, user *model.User, phoneNumber string) error
	GetPhoneNumberConfirmed(ctx context.Context, user *model.User) (bool, error)
	SetPhoneNumberConfirmed(ctx context.Context, user *model.User, confirmed bool) error
}

// UserLockoutStore stores lockout state. Policy decisions stay with the caller.
type UserLockoutStore interface {
	GetLockoutEndDate(ctx context.Context, user *model.User) (*time.Time, error)
	SetLockoutEndDate(ctx context.Context, user *model.User, lockoutEnd *time.Time) error
	GetAccessFailedCount(ctx context.Context, user *model.User) (int, error)
	IncrementAccessFailedCount(ctx context.Context, user *model.User) (int, error)
	ResetAccessFailedCount(ctx context.Context, user *model.User) error
	GetLockoutEnabled(ctx context.Context, user *model.User) (bool, error)
	SetLockoutEnabled(ctx context.Context, user *model.User, enabled bool) error
}

// UserTwoFactorStore stores the two-factor flag.
type UserTwoFactorStore interface {
	GetTwoFactorEnabled(ctx context.Context, user *model.User) (bool, error)
	SetTwoFactorEnabled(ctx context.Context, user *model.User, enabled bool) error
}

type userStore struct {
	lifecycle

	logger     *zerolog.Logger
	options    storeOptions
	users      *docdb.Collection[model.User]
	roles      *docdb.Collection[model.Role]
	userRoles  *docdb.Collection[model.UserRole]
	userClaims *docdb.Collection[model.UserClaim]
	userLogins *docdb.Collection[model.UserLogin]
	userTokens *docdb.Collection[model.UserToken]
}

// NewUserStore creates a UserStore over the User collection and its satellite
// collections in db. The store borrows db; closing the store leaves db open.
func NewUserStore(ctx context.Context, logger *zerolog.Logger, db *docdb.Database, opts ...Option) (UserStore, error) {
	s := &userStore{
		logger:     loggerOrNop(logger),
		options:    newStoreOptions(opts),
		users:      docdb.For[model.User](db),
		roles:      docdb.For[model.Role](db),
		userRoles:  docdb.For[model.UserRole](db),
		userClaims: docdb.For[model.UserClaim](db),
		userLogins: docdb.For[model.UserLogin](db),
		userTokens: docdb.For[model.UserToken](db),
	}

	indexes := []struct {
		ensure func(context.Context, ...string) error
		fields []string
	}{
		{s.users.EnsureIndex, []string{"normalized_user_name"}},
		{s.users.EnsureIndex, []string{"normalized_email"}},
		{s.userRoles.EnsureIndex, []string{"user_id", "role_id"}},
		{s.userClaims.EnsureIndex, []string{"user_id"}},
		{s.userLogins.EnsureIndex, []string{"login_provider", "provider_key"}},
		{s.userTokens.EnsureIndex, []string{"user_id", "login_provider", "name"}},
	}
	for _, idx := range indexes {
		if err := idx.ensure(ctx, idx.fields...); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *userStore) checkUser(ctx context.Context, user *model.User) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if user == nil {
		return argumentError("user")
	}

	return nil
}

func (s *userStore) Users(ctx context.Context) ([]*model.User, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	return s.users.FindAll(ctx)
}

func (s *userStore) Create(ctx context.Context, user *model.User) error {
	if err := s.checkUser(ctx, user); err != nil {
		return err
	}

	normalizeLockoutEnd(user)

	id, err := s.users.Insert(ctx, user)
	if err != nil {
		return err
	}
	user.ID = id

	return nil
}

func (s *userStore) Update(ctx context.Context, user *model.User) error {
	if err := s.checkUser(ctx, user); err != nil {
		return err
	}

	normalizeLockoutEnd(user)

	_, err := s.users.Update(ctx, user.ID, user)
	return err
}

func (s *userStore) Delete(ctx context.Context, user *model.User) error {
	if err := s.checkUser(ctx, user); err != nil {
		return err
	}

	if _, err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}

	if !s.options.cascadeDelete {
		return nil
	}

	byUser := docdb.Eq("user_id", user.ID)
	roles, err := s.userRoles.DeleteMany(ctx, byUser)
	if err != nil {
		return err
	}
	claims, err := s.userClaims.DeleteMany(ctx, byUser)
	if err != nil {
		return err
	}
	logins, err := s.userLogins.DeleteMany(ctx, byUser)
	if err != nil {
		return err
	}
	tokens, err := s.userTokens.DeleteMany(ctx, byUser)
	if err != nil {
		return err
	}

	s.logger.Debug().
		Str("user_id", user.ID.Hex()).
		Int64("memberships", roles).
		Int64("claims", claims).
		Int64("logins", logins).
		Int64("tokens", tokens).
		Msg("removed rows referencing deleted user")

	return nil
}

func (s *userStore) FindByID(ctx context.Context, userID string) (*model.User, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	id, err := parseID("user id", userID)
	if err != nil {
		return nil, err
	}

	return s.users.FindByID(ctx, id)
}

func (s *userStore) FindByName(ctx context.Context, normalizedUserName string) (*model.User, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if normalizedUserName == "" {
		return nil, argumentError("normalized user name")
	}

	return s.users.FindOne(ctx, docdb.EqFold("normalized_user_name", normalizedUserName))
}

func (s *userStore) FindByEmail(ctx context.Context, normalizedEmail string) (*model.User, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if normalizedEmail == "" {
		return nil, argumentError("normalized email")
	}

	return s.users.FindOne(ctx, docdb.EqFold("normalized_email", normalizedEmail))
}

func (s *userStore) GetUserID(ctx context.Context, user *model.User) (string, error) {
	if err := s.checkUser(ctx, user); err != nil {
		return "", err
	}

	return idString(user.ID), nil
}

func (s *userStore) GetUserName(ctx context.Context, user *model.User) (string, error) {
	if err := s.checkUser(ctx, user); err != nil {
		return "", err
	}

	return user.UserName, nil
}

func (s *userStore) SetUserName(ctx context.Context, user *model.User, userName string) error {
	if err := s.checkUser(ctx, user); err != nil {
		return err
	}

	user.UserName = userName

	return nil
}

func (s *userStore) GetNormalizedUserName(ctx context.Context, user *model.User) (string, error) {
	if err := s.checkUser(ctx, user); err != nil {
		return "", err
	}

	return user.NormalizedUserName, nil
}

func (s *userStore) SetNormalizedUserName(ctx context.Context, user *model.User, normalizedName string) error {
	if err := s.checkUser(ctx, user); err != nil {
		return err
	}

	user.NormalizedUserName = normalizedName

	return nil
}
