package database

import (
	"context"
	"strings"
	"testing"

	"entgo.io/ent/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/helpdesk_backend/config"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "postgres",
			cfg:  Config{Driver: DriverPostgres, Host: "db", Port: 5432, User: "hd", Password: "pw", DBName: "helpdesk", SSLMode: "disable"},
			want: "host=db port=5432 user=hd password=pw dbname=helpdesk sslmode=disable",
		},
		{
			name: "sqlite file",
			cfg:  Config{Driver: DriverSQLite, Path: "helpdesk.db"},
			want: "file:helpdesk.db?_fk=1&_busy_timeout=5000",
		},
		{
			name: "sqlite keeps options",
			cfg:  Config{Driver: DriverSQLite, Path: "file:test?mode=memory&_fk=1"},
			want: "file:test?mode=memory&_fk=1&_busy_timeout=5000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	dsn := Config{Driver: DriverMySQL, Host: "db", Port: 3306, User: "hd", Password: "pw", DBName: "helpdesk"}.DSN()
	assert.True(t, strings.HasPrefix(dsn, "hd:pw@tcp(db:3306)/helpdesk?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
}

func TestDialect(t *testing.T) {
	for driver, want := range map[string]string{
		"":           dialect.Postgres,
		DriverMySQL:  dialect.MySQL,
		DriverSQLite: dialect.SQLite,
	} {
		got, err := Config{Driver: driver}.Dialect()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := Config{Driver: "oracle"}.Dialect()
	assert.Error(t, err)
}

func TestNewDriverSQLite(t *testing.T) {
	drv, err := NewDriverFromConfig(Config{Driver: DriverSQLite, Path: "file:dbtest?mode=memory&cache=shared"})
	require.NoError(t, err)
	defer drv.Close()
	assert.Equal(t, dialect.SQLite, drv.Dialect())
}

func TestEnsureDatabase(t *testing.T) {
	created, err := EnsureDatabase(context.Background(), config.DatabaseConfig{Driver: DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	assert.False(t, created)

	_, err = EnsureDatabase(context.Background(), config.DatabaseConfig{Driver: DriverPostgres})
	assert.ErrorContains(t, err, "database name is required")
}

func TestQuoteMySQL(t *testing.T) {
	assert.Equal(t, "`help``desk`", quoteMySQL("help`desk"))
}
