package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/Alijeyrad/helpdesk_backend/config"
)

// EnsureDatabase creates the configured helpdesk database on its server when
// it is missing, by connecting to the server's maintenance database first.
// sqlite3 creates its file on open, so it reports false with no work done.
func EnsureDatabase(ctx context.Context, c config.DatabaseConfig) (created bool, err error) {
	cfg := FromCentralConfig(c)
	if cfg.DBName == "" && cfg.Driver != DriverSQLite {
		return false, fmt.Errorf("database name is required")
	}

	admin := cfg
	var exists, create string
	switch cfg.Driver {
	case DriverSQLite:
		return false, nil
	case DriverMySQL:
		admin.DBName = ""
		exists = `SELECT COUNT(*) > 0 FROM information_schema.schemata WHERE schema_name = ?`
		create = "CREATE DATABASE " + quoteMySQL(cfg.DBName) + " CHARACTER SET utf8mb4"
	default:
		admin.DBName = "postgres"
		exists = `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`
		create = "CREATE DATABASE " + pq.QuoteIdentifier(cfg.DBName)
	}

	conn, err := openSQLDB(admin)
	if err != nil {
		return false, fmt.Errorf("connect to %s server: %w", cfg.Driver, err)
	}
	defer conn.Close()

	var found bool
	if err := conn.QueryRowContext(ctx, exists, cfg.DBName).Scan(&found); err != nil {
		return false, fmt.Errorf("look up database %q: %w", cfg.DBName, err)
	}
	if found {
		return false, nil
	}
	if _, err := conn.ExecContext(ctx, create); err != nil {
		return false, fmt.Errorf("create database %q: %w", cfg.DBName, err)
	}
	return true, nil
}

func quoteMySQL(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
