package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	identityconfig "github.com/vasapolrittideah/identity-docstore/identity/config"
	"github.com/vasapolrittideah/identity-docstore/shared/mailer"
	"github.com/vasapolrittideah/identity-docstore/shared/validation"
)

// AdminServiceConfig holds the admin service settings.
type AdminServiceConfig struct {
	HTTPAddr   string `env:"ADMIN_HTTP_ADDR"   envDefault:":8080"`
	HealthAddr string `env:"ADMIN_HEALTH_ADDR" envDefault:":9090"`
	LogLevel   string `env:"ADMIN_LOG_LEVEL"   envDefault:"info" validate:"oneof=trace debug info warn error"`
	LogPretty  bool   `env:"ADMIN_LOG_PRETTY"`

	// AdminRole names the role whose members may sign in.
	AdminRole string `env:"ADMIN_ROLE" envDefault:"Administrator" validate:"required"`

	// GoogleClientID enables linking Google accounts when set.
	GoogleClientID string `env:"GOOGLE_CLIENT_ID"`

	Token     TokenConfig
	Lockout   LockoutConfig
	Bootstrap BootstrapConfig
	Mailer    mailer.Config
	Identity  identityconfig.Config
}

type TokenConfig struct {
	Secret    string        `env:"ADMIN_TOKEN_SECRET"     validate:"required,min=32"`
	Issuer    string        `env:"ADMIN_TOKEN_ISSUER"     envDefault:"identity-docstore"`
	Audience  string        `env:"ADMIN_TOKEN_AUDIENCE"   envDefault:"identity-admin"`
	ExpiresIn time.Duration `env:"ADMIN_TOKEN_EXPIRES_IN" envDefault:"15m"`
}

type LockoutConfig struct {
	MaxFailedAttempts int           `env:"ADMIN_LOCKOUT_MAX_FAILED_ATTEMPTS" envDefault:"5"`
	Duration          time.Duration `env:"ADMIN_LOCKOUT_DURATION"            envDefault:"5m"`
}

// BootstrapConfig describes an administrator account created at startup when
// UserName is set.
type BootstrapConfig struct {
	UserName string `env:"ADMIN_BOOTSTRAP_USER"`
	Email    string `env:"ADMIN_BOOTSTRAP_EMAIL"    validate:"omitempty,email"`
	Password string `env:"ADMIN_BOOTSTRAP_PASSWORD" validate:"required_with=UserName,omitempty,min=8"`
}

// NewAdminServiceConfig parses the configuration from environment variables
// and validates it.
func NewAdminServiceConfig(v *validation.Validator) (*AdminServiceConfig, error) {
	cfg, err := env.ParseAs[AdminServiceConfig]()
	if err != nil {
		return nil, err
	}

	if err := v.Struct(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
