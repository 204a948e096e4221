package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents an account in the identity store. Normalized fields hold the
// caller-canonicalized (upper-cased) forms used for lookups.
type User struct {
	ID                   bson.ObjectID `bson:"_id,omitempty"`
	UserName             string        `bson:"user_name"`
	NormalizedUserName   string        `bson:"normalized_user_name"`
	Email                string        `bson:"email"`
	NormalizedEmail      string        `bson:"normalized_email"`
	EmailConfirmed       bool          `bson:"email_confirmed"`
	PasswordHash         string        `bson:"password_hash"`
	SecurityStamp        string        `bson:"security_stamp"`
	PhoneNumber          string        `bson:"phone_number"`
	PhoneNumberConfirmed bool          `bson:"phone_number_confirmed"`
	TwoFactorEnabled     bool          `bson:"two_factor_enabled"`
	LockoutEnd           *time.Time    `bson:"lockout_end"`
	LockoutEnabled       bool          `bson:"lockout_enabled"`
	AccessFailedCount    int           `bson:"access_failed_count"`
}

// UserRole joins a user to a role.
type UserRole struct {
	ID     bson.ObjectID `bson:"_id,omitempty"`
	UserID bson.ObjectID `bson:"user_id"`
	RoleID bson.ObjectID `bson:"role_id"`
}

// UserClaim is a claim attached to a single user.
type UserClaim struct {
	ID         bson.ObjectID `bson:"_id,omitempty"`
	UserID     bson.ObjectID `bson:"user_id"`
	ClaimType  string        `bson:"claim_type"`
	ClaimValue string        `bson:"claim_value"`
}

// Claim returns the type/value pair of the row.
func (c *UserClaim) Claim() Claim {
	return Claim{Type: c.ClaimType, Value: c.ClaimValue}
}

// UserLogin associates a user with an identity asserted by an external
// provider.
type UserLogin struct {
	ID                  bson.ObjectID `bson:"_id,omitempty"`
	UserID              bson.ObjectID `bson:"user_id"`
	LoginProvider       string        `bson:"login_provider"`
	ProviderKey         string        `bson:"provider_key"`
	ProviderDisplayName string        `bson:"provider_display_name"`
}

// LoginInfo returns the provider triple of the row.
func (l *UserLogin) LoginInfo() LoginInfo {
	return LoginInfo{
		LoginProvider:       l.LoginProvider,
		ProviderKey:         l.ProviderKey,
		ProviderDisplayName: l.ProviderDisplayName,
	}
}

// UserToken is a named value a user holds for a login provider. Two-factor
// secrets and recovery codes are stored this way too.
type UserToken struct {
	ID            bson.ObjectID `bson:"_id,omitempty"`
	UserID        bson.ObjectID `bson:"user_id"`
	LoginProvider string        `bson:"login_provider"`
	Name          string        `bson:"name"`
	Value         string        `bson:"value"`
}
