package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/identity-docstore/identity/model"
	"github.com/vasapolrittideah/identity-docstore/shared/docdb"
)

// UserRoleStore manages role membership. Roles are addressed by their
// normalized name.
type UserRoleStore interface {
	// AddToRole fails with ErrRoleNotFound when no role has normalizedRoleName.
	// It does not check for an existing membership.
	AddToRole(ctx context.Context, user *model.User, normalizedRoleName string) error
	RemoveFromRole(ctx context.Context, user *model.User, normalizedRoleName string) error
	// GetRoles returns the names of the roles user belongs to.
	GetRoles(ctx context.Context, user *model.User) ([]string, error)
	IsInRole(ctx context.Context, user *model.User, normalizedRoleName string) (bool, error)
	GetUsersInRole(ctx context.Context, normalizedRoleName string) ([]*model.User, error)
}

func membershipFilter(userID, roleID bson.ObjectID) docdb.Filter {
	return docdb.And(docdb.Eq("user_id", userID), docdb.Eq("role_id", roleID))
}

func (s *userStore) AddToRole(ctx context.Context, user *model.User, normalizedRoleName string) error {
	if err := s.checkUser(ctx, user); err != nil {
		return err
	}
	if strings.TrimSpace(normalizedRoleName) == "" {
		return argumentError("normalized role name")
	}

	role, ok, err := findRoleByNormalizedName(ctx, s.roles, normalizedRoleName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrRoleNotFound, normalizedRoleName)
	}

	_, err = s.userRoles.Insert(ctx, &model.UserRole{UserID: user.ID, RoleID: role.ID})
	return err
}

// RemoveFromRole removes one membership row. Unknown roles and missing
// memberships are not errors.
func (s *userStore) RemoveFromRole(ctx context.Context, user *model.User, normalizedRoleName string) error {
	if err := s.checkUser(ctx, user); err != nil {
		return err
	}
	if strings.TrimSpace(normalizedRoleName) == "" {
		return argumentError("normalized role name")
	}

	role, ok, err := findRoleByNormalizedName(ctx, s.roles, normalizedRoleName)
	if err != nil || !ok {
		return err
	}

	membership, err := s.userRoles.FindOne(ctx, membershipFilter(user.ID, role.ID))
	if err != nil {
		if errors.Is(err, docdb.ErrNoDocuments) {
			return nil
		}
		return err
	}

	_, err = s.userRoles.Delete(ctx, membership.ID)
	return err
}

func (s *userStore) GetRoles(ctx context.Context, user *model.User) ([]string, error) {
	if err := s.checkUser(ctx, user); err != nil {
		return nil, err
	}

	memberships, err := s.userRoles.Find(ctx, docdb.Eq("user_id", user.ID))
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []string{}, nil
	}

	roleIDs := make([]bson.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		roleIDs = append(roleIDs, m.RoleID)
	}

	roles, err := s.roles.Find(ctx, docdb.In("_id", roleIDs...))
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}

	return names, nil
}

func (s *userStore) IsInRole(ctx context.Context, user *model.User, normalizedRoleName string) (bool, error) {
	if err := s.checkUser(ctx, user); err != nil {
		return false, err
	}
	if normalizedRoleName == "" {
		return false, argumentError("normalized role name")
	}

	roles, err := s.roles.FindAll(ctx)
	if err != nil {
		return false, err
	}

	var role *model.Role
	for _, r := range roles {
		if r.NormalizedName == normalizedRoleName {
			role = r
			break
		}
	}
	if role == nil {
		return false, nil
	}

	n, err := s.userRoles.Count(ctx, membershipFilter(user.ID, role.ID))
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func (s *userStore) GetUsersInRole(ctx context.Context, normalizedRoleName string) ([]*model.User, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if normalizedRoleName == "" {
		return nil, argumentError("normalized role name")
	}

	role, ok, err := findRoleByNormalizedName(ctx, s.roles, normalizedRoleName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []*model.User{}, nil
	}

	memberships, err := s.userRoles.Find(ctx, docdb.Eq("role_id", role.ID))
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []*model.User{}, nil
	}

	userIDs := make([]bson.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		userIDs = append(userIDs, m.UserID)
	}

	return s.users.Find(ctx, docdb.In("_id", userIDs...))
}
