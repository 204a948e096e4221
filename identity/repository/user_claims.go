package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/identity-docstore/identity/model"
	"github.com/vasapolrittideah/identity-docstore/shared/docdb"
)

// UserClaimStore manages claims attached to users. Claims are independent
// rows; nothing deduplicates them.
type UserClaimStore interface {
	GetClaims(ctx context.Context, user *model.User) ([]model.Claim, error)
	AddClaims(ctx context.Context, user *model.User, claims []model.Claim) error
	// ReplaceClaim rewrites every row of user carrying claim to newClaim.
	ReplaceClaim(ctx context.Context, user *model.User, claim, newClaim model.Claim) error
	// RemoveClaims removes every row of user carrying any of claims.
	RemoveClaims(ctx context.Context, user *model.User, claims []model.Claim) error
	GetUsersForClaim(ctx context.Context, claim model.Claim) ([]*model.User, error)
}

func userClaimFilter(userID bson.ObjectID, claim model.Claim) docdb.Filter {
	return docdb.And(
		docdb.Eq("user_id", userID),
		docdb.Eq("claim_type", claim.Type),
		docdb.Eq("claim_value", claim.Value),
	)
}

func (s *userStore) GetClaims(ctx context.Context, user *model.User) ([]model.Claim, error) {
	if err := s.checkUser(ctx, user); err != nil {
		return nil, err
	}

	rows, err := s.userClaims.Find(ctx, docdb.Eq("user_id", user.ID))
	if err != nil {
		return nil, err
	}

	claims := make([]model.Claim, 0, len(rows))
	for _, row := range rows {
		claims = append(claims, row.Claim())
	}

	return claims, nil
}

func (s *userStore) AddClaims(ctx context.Context, user *model.User, claims []model.Claim) error {
	if err := s.checkUser(ctx, user); err != nil {
		return err
	}

	for _, claim := range claims {
		if _, err := s.userClaims.Insert(ctx, &model.UserClaim{
			UserID:     user.ID,
			ClaimType:  claim.Type,
			ClaimValue: claim.Value,
		}); err != nil {
			return err
		}
	}

	return nil
}

func (s *userStore) ReplaceClaim(ctx context.Context, user *model.User, claim, newClaim model.Claim) error {
	if err := s.checkUser(ctx, user); err != nil {
		return err
	}

	rows, err := s.userClaims.Find(ctx, userClaimFilter(user.ID, claim))
	if err != nil {
		return err
	}

	for _, row := range rows {
		row.ClaimType = newClaim.Type
		row.ClaimValue = newClaim.Value
		if _, err := s.userClaims.Update(ctx, row.ID, row); err != nil {
			return err
		}
	}

	return nil
}

func (s *userStore) RemoveClaims(ctx context.Context, user *model.User, claims []model.Claim) error {
	if err := s.checkUser(ctx, user); err != nil {
		return err
	}

	for _, claim := range claims {
		if _, err := s.userClaims.DeleteMany(ctx, userClaimFilter(user.ID, claim)); err != nil {
			return err
		}
	}

	return nil
}

func (s *userStore) GetUsersForClaim(ctx context.Context, claim model.Claim) ([]*model.User, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	rows, err := s.userClaims.Find(ctx, docdb.And(
		docdb.Eq("claim_type", claim.Type),
		docdb.Eq("claim_value", claim.Value),
	))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []*model.User{}, nil
	}

	userIDs := make([]bson.ObjectID, 0, len(rows))
	for _, row := range rows {
		userIDs = append(userIDs, row.UserID)
	}

	return s.users.Find(ctx, docdb.In("_id", userIDs...))
}
