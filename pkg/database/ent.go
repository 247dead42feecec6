package database

import (
	entsql "entgo.io/ent/dialect/sql"

	"github.com/Alijeyrad/helpdesk_backend/config"
)

// NewDriver opens the configured database and wraps it in an ent driver.
func NewDriver(cfg config.DatabaseConfig) (*entsql.Driver, error) {
	return NewDriverFromConfig(FromCentralConfig(cfg))
}

func NewDriverFromConfig(cfg Config) (*entsql.Driver, error) {
	name, err := cfg.Dialect()
	if err != nil {
		return nil, err
	}
	db, err := openSQLDB(cfg)
	if err != nil {
		return nil, err
	}
	return entsql.OpenDB(name, db), nil
}
