package model

// Claim is a type/value pair used for authorization checks.
type Claim struct {
	Type  string `json:"type"  validate:"required"`
	Value string `json:"value"`
}

// LoginInfo identifies an external login by provider and provider key.
type LoginInfo struct {
	LoginProvider       string `json:"login_provider"        validate:"required"`
	ProviderKey         string `json:"provider_key"          validate:"required"`
	ProviderDisplayName string `json:"provider_display_name"`
}
