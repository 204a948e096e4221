package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/identity-docstore/identity/repository"
	"github.com/vasapolrittideah/identity-docstore/shared/docdb"
	"github.com/vasapolrittideah/identity-docstore/shared/validation"
)

// Config selects the document database and store behavior.
type Config struct {
	// ConnectionString is a file path for the embedded engine or a
	// mongodb:// URI.
	ConnectionString string `env:"IDENTITY_CONNECTION_STRING" validate:"required"`

	// DatabaseName overrides the database named in a MongoDB URI.
	DatabaseName  string `env:"IDENTITY_DATABASE_NAME"`
	CascadeDelete bool   `env:"IDENTITY_CASCADE_DELETE" envDefault:"false"`
}

// Load parses Config from the environment and validates it.
func Load(v *validation.Validator) (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}

	if err := cfg.validate(v); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate(v *validation.Validator) error {
	return v.Struct(c)
}

// StoreOptions translates the config into repository options.
func (c *Config) StoreOptions() []repository.Option {
	var opts []repository.Option
	if c.CascadeDelete {
		opts = append(opts, repository.WithCascadeDelete())
	}

	return opts
}

// Stores bundles an open database with the stores built on it.
type Stores struct {
	DB    *docdb.Database
	Roles repository.RoleStore
	Users repository.UserStore
}

var (
	newRoleStore = repository.NewRoleStore
	newUserStore = repository.NewUserStore
)

// Open connects to the configured database and creates both stores.
func (c *Config) Open(ctx context.Context, logger *zerolog.Logger) (*Stores, error) {
	db, err := docdb.Open(ctx, c.ConnectionString,
		docdb.WithLogger(logger),
		docdb.WithDatabaseName(c.DatabaseName),
	)
	if err != nil {
		return nil, err
	}

	roles, err := newRoleStore(ctx, logger, db, c.StoreOptions()...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	users, err := newUserStore(ctx, logger, db, c.StoreOptions()...)
	if err != nil {
		_ = roles.Close()
		_ = db.Close()
		return nil, err
	}

	return &Stores{DB: db, Roles: roles, Users: users}, nil
}

// Close disposes both stores and then the database.
func (s *Stores) Close() error {
	_ = s.Roles.Close()
	_ = s.Users.Close()

	return s.DB.Close()
}
