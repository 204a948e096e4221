package model

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role represents a named group of users.
type Role struct {
	ID             bson.ObjectID `bson:"_id,omitempty"`
	Name           string        `bson:"name"`
	NormalizedName string        `bson:"normalized_name"`
}

// RoleClaim is a claim granted to every member of a role.
type RoleClaim struct {
	ID         bson.ObjectID `bson:"_id,omitempty"`
	RoleID     bson.ObjectID `bson:"role_id"`
	ClaimType  string        `bson:"claim_type"`
	ClaimValue string        `bson:"claim_value"`
}

// Claim returns the type/value pair of the row.
func (c *RoleClaim) Claim() Claim {
	return Claim{Type: c.ClaimType, Value: c.ClaimValue}
}
