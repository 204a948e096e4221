package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/identity-docstore/identity/model"
	"github.com/vasapolrittideah/identity-docstore/shared/docdb"
)

// RoleStore defines the role operations the identity layer relies on.
type RoleStore interface {
	// Roles returns every stored role.
	Roles(ctx context.Context) ([]*model.Role, error)

	Create(ctx context.Context, role *model.Role) error
	Update(ctx context.Context, role *model.Role) error
	Delete(ctx context.Context, role *model.Role) error

	// FindByID returns ErrInvalidArgument for ids that are not ObjectID hex
	// strings and ErrNotFound when no role has the id.
	FindByID(ctx context.Context, roleID string) (*model.Role, error)

	// FindByName matches normalizedName case-insensitively against either the
	// normalized name or the plain name of a role.
	FindByName(ctx context.Context, normalizedName string) (*model.Role, error)

	GetRoleID(ctx context.Context, role *model.Role) (string, error)
	GetRoleName(ctx context.Context, role *model.Role) (string, error)
	SetRoleName(ctx context.Context, role *model.Role, name string) error
	GetNormalizedRoleName(ctx context.Context, role *model.Role) (string, error)
	SetNormalizedRoleName(ctx context.Context, role *model.Role, normalizedName string) error

	GetClaims(ctx context.Context, role *model.Role) ([]model.Claim, error)
	AddClaim(ctx context.Context, role *model.Role, claim model.Claim) error
	RemoveClaim(ctx context.Context, role *model.Role, claim model.Claim) error

	Close() error
}

type roleStore struct {
	lifecycle

	logger     *zerolog.Logger
	options    storeOptions
	roles      *docdb.Collection[model.Role]
	roleClaims *docdb.Collection[model.RoleClaim]
	userRoles  *docdb.Collection[model.UserRole]
}

// NewRoleStore creates a RoleStore over the Role and RoleClaim collections of
// db. The store borrows db; closing the store leaves db open.
func NewRoleStore(ctx context.Context, logger *zerolog.Logger, db *docdb.Database, opts ...Option) (RoleStore, error) {
	s := &roleStore{
		logger:     loggerOrNop(logger),
		options:    newStoreOptions(opts),
		roles:      docdb.For[model.Role](db),
		roleClaims: docdb.For[model.RoleClaim](db),
		userRoles:  docdb.For[model.UserRole](db),
	}

	if err := s.roles.EnsureIndex(ctx, "normalized_name"); err != nil {
		return nil, err
	}
	if err := s.roleClaims.EnsureIndex(ctx, "role_id"); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *roleStore) checkRole(ctx context.Context, role *model.Role) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if role == nil {
		return argumentError("role")
	}

	return nil
}

func (s *roleStore) Roles(ctx context.Context) ([]*model.Role, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	return s.roles.FindAll(ctx)
}

func (s *roleStore) Create(ctx context.Context, role *model.Role) error {
	if err := s.checkRole(ctx, role); err != nil {
		return err
	}

	id, err := s.roles.Insert(ctx, role)
	if err != nil {
		return err
	}
	role.ID = id

	return nil
}

func (s *roleStore) Update(ctx context.Context, role *model.Role) error {
	if err := s.checkRole(ctx, role); err != nil {
		return err
	}

	_, err := s.roles.Update(ctx, role.ID, role)
	return err
}

func (s *roleStore) Delete(ctx context.Context, role *model.Role) error {
	if err := s.checkRole(ctx, role); err != nil {
		return err
	}

	if _, err := s.roles.Delete(ctx, role.ID); err != nil {
		return err
	}

	if !s.options.cascadeDelete {
		return nil
	}

	claims, err := s.roleClaims.DeleteMany(ctx, docdb.Eq("role_id", role.ID))
	if err != nil {
		return err
	}
	members, err := s.userRoles.DeleteMany(ctx, docdb.Eq("role_id", role.ID))
	if err != nil {
		return err
	}

	s.logger.Debug().
		Str("role_id", role.ID.Hex()).
		Int64("claims", claims).
		Int64("memberships", members).
		Msg("removed rows referencing deleted role")

	return nil
}

func (s *roleStore) FindByID(ctx context.Context, roleID string) (*model.Role, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	id, err := parseID("role id", roleID)
	if err != nil {
		return nil, err
	}

	return s.roles.FindByID(ctx, id)
}

func (s *roleStore) FindByName(ctx context.Context, normalizedName string) (*model.Role, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if normalizedName == "" {
		return nil, argumentError("normalized role name")
	}

	// Rows written without a normalized name are still found by their name.
	return s.roles.FindOne(ctx, docdb.Or(
		docdb.EqFold("normalized_name", normalizedName),
		docdb.EqFold("name", normalizedName),
	))
}

func (s *roleStore) GetRoleID(ctx context.Context, role *model.Role) (string, error) {
	if err := s.checkRole(ctx, role); err != nil {
		return "", err
	}

	return idString(role.ID), nil
}

func (s *roleStore) GetRoleName(ctx context.Context, role *model.Role) (string, error) {
	if err := s.checkRole(ctx, role); err != nil {
		return "", err
	}

	return role.Name, nil
}

// SetRoleName renames the role and persists it right away.
func (s *roleStore) SetRoleName(ctx context.Context, role *model.Role, name string) error {
	if err := s.checkRole(ctx, role); err != nil {
		return err
	}

	role.Name = name
	_, err := s.roles.Update(ctx, role.ID, role)

	return err
}

func (s *roleStore) GetNormalizedRoleName(ctx context.Context, role *model.Role) (string, error) {
	if err := s.checkRole(ctx, role); err != nil {
		return "", err
	}

	return role.NormalizedName, nil
}

// SetNormalizedRoleName only changes role in memory; call Update to persist.
func (s *roleStore) SetNormalizedRoleName(ctx context.Context, role *model.Role, normalizedName string) error {
	if err := s.checkRole(ctx, role); err != nil {
		return err
	}

	role.NormalizedName = strings.ToUpper(normalizedName)

	return nil
}

func (s *roleStore) GetClaims(ctx context.Context, role *model.Role) ([]model.Claim, error) {
	if err := s.checkRole(ctx, role); err != nil {
		return nil, err
	}

	rows, err := s.roleClaims.Find(ctx, docdb.Eq("role_id", role.ID))
	if err != nil {
		return nil, err
	}

	claims := make([]model.Claim, 0, len(rows))
	for _, row := range rows {
		claims = append(claims, row.Claim())
	}

	return claims, nil
}

// AddClaim always inserts a new row; adding the same claim twice stores it
// twice.
func (s *roleStore) AddClaim(ctx context.Context, role *model.Role, claim model.Claim) error {
	if err := s.checkRole(ctx, role); err != nil {
		return err
	}

	_, err := s.roleClaims.Insert(ctx, &model.RoleClaim{
		RoleID:     role.ID,
		ClaimType:  claim.Type,
		ClaimValue: claim.Value,
	})

	return err
}

// RemoveClaim removes every row of the role carrying exactly claim.
func (s *roleStore) RemoveClaim(ctx context.Context, role *model.Role, claim model.Claim) error {
	if err := s.checkRole(ctx, role); err != nil {
		return err
	}

	_, err := s.roleClaims.DeleteMany(ctx, docdb.And(
		docdb.Eq("role_id", role.ID),
		docdb.Eq("claim_type", claim.Type),
		docdb.Eq("claim_value", claim.Value),
	))

	return err
}

// findRoleByNormalizedName is shared with the user store, which resolves
// membership by exact normalized name.
func findRoleByNormalizedName(
	ctx context.Context,
	roles *docdb.Collection[model.Role],
	normalizedName string,
) (*model.Role, bool, error) {
	role, err := roles.FindOne(ctx, docdb.Eq("normalized_name", normalizedName))
	if err != nil {
		if errors.Is(err, docdb.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return role, true, nil
}
