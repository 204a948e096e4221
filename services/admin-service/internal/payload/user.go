package payload

import (
	"time"

	"github.com/vasapolrittideah/identity-docstore/identity/model"
)

type CreateUserRequest struct {
	UserName    string `json:"user_name"    validate:"required,max=256"`
	Email       string `json:"email"        validate:"omitempty,email"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,e164"`
	Password    string `json:"password"     validate:"omitempty,min=8"`
}

type UserResponse struct {
	ID                   string     `json:"id"`
	UserName             string     `json:"user_name"`
	Email                string     `json:"email,omitempty"`
	EmailConfirmed       bool       `json:"email_confirmed"`
	PhoneNumber          string     `json:"phone_number,omitempty"`
	PhoneNumberConfirmed bool       `json:"phone_number_confirmed"`
	TwoFactorEnabled     bool       `json:"two_factor_enabled"`
	LockoutEnabled       bool       `json:"lockout_enabled"`
	LockoutEnd           *time.Time `json:"lockout_end,omitempty"`
	AccessFailedCount    int        `json:"access_failed_count"`
	HasPassword          bool       `json:"has_password"`
}

func NewUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:                   user.ID.Hex(),
		UserName:             user.UserName,
		Email:                user.Email,
		EmailConfirmed:       user.EmailConfirmed,
		PhoneNumber:          user.PhoneNumber,
		PhoneNumberConfirmed: user.PhoneNumberConfirmed,
		TwoFactorEnabled:     user.TwoFactorEnabled,
		LockoutEnabled:       user.LockoutEnabled,
		LockoutEnd:           user.LockoutEnd,
		AccessFailedCount:    user.AccessFailedCount,
		HasPassword:          user.PasswordHash != "",
	}
}

func NewUserResponses(users []*model.User) []UserResponse {
	resp := make([]UserResponse, 0, len(users))
	for _, user := range users {
		resp = append(resp, NewUserResponse(user))
	}

	return resp
}

type AddUserRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type RecoveryCodesResponse struct {
	Codes []string `json:"codes"`
}

type RedeemCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

type RedeemCodeResponse struct {
	Redeemed  bool `json:"redeemed"`
	Remaining int  `json:"remaining"`
}

type LinkGoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}
