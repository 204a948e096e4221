package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/vasapolrittideah/identity-docstore/identity/model"
	"github.com/vasapolrittideah/identity-docstore/identity/repository"
)

// RoleUsecase defines the role administration use cases.
type RoleUsecase interface {
	ListRoles(ctx context.Context) ([]*model.Role, error)
	CreateRole(ctx context.Context, name string) (*model.Role, error)
	GetRole(ctx context.Context, id string) (*model.Role, error)
	DeleteRole(ctx context.Context, id string) error

	ListRoleClaims(ctx context.Context, id string) ([]model.Claim, error)
	AddRoleClaim(ctx context.Context, id string, claim model.Claim) error
	RemoveRoleClaim(ctx context.Context, id string, claim model.Claim) error
}

type roleUsecase struct {
	roles repository.RoleStore
}

// NewRoleUsecase creates a new instance of RoleUsecase.
func NewRoleUsecase(roles repository.RoleStore) RoleUsecase {
	return &roleUsecase{roles: roles}
}

func (u *roleUsecase) ListRoles(ctx context.Context) ([]*model.Role, error) {
	return u.roles.Roles(ctx)
}

func (u *roleUsecase) CreateRole(ctx context.Context, name string) (*model.Role, error) {
	_, err := u.roles.FindByName(ctx, normalize(name))
	if err == nil {
		return nil, ErrRoleAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	role := &model.Role{Name: strings.TrimSpace(name)}
	if err := u.roles.SetNormalizedRoleName(ctx, role, role.Name); err != nil {
		return nil, err
	}
	if err := u.roles.Create(ctx, role); err != nil {
		return nil, err
	}

	return role, nil
}

func (u *roleUsecase) GetRole(ctx context.Context, id string) (*model.Role, error) {
	role, err := u.roles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}

	return role, nil
}

func (u *roleUsecase) DeleteRole(ctx context.Context, id string) error {
	role, err := u.GetRole(ctx, id)
	if err != nil {
		return err
	}

	return u.roles.Delete(ctx, role)
}

func (u *roleUsecase) ListRoleClaims(ctx context.Context, id string) ([]model.Claim, error) {
	role, err := u.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}

	return u.roles.GetClaims(ctx, role)
}

func (u *roleUsecase) AddRoleClaim(ctx context.Context, id string, claim model.Claim) error {
	role, err := u.GetRole(ctx, id)
	if err != nil {
		return err
	}

	return u.roles.AddClaim(ctx, role, claim)
}

func (u *roleUsecase) RemoveRoleClaim(ctx context.Context, id string, claim model.Claim) error {
	role, err := u.GetRole(ctx, id)
	if err != nil {
		return err
	}

	return u.roles.RemoveClaim(ctx, role, claim)
}
