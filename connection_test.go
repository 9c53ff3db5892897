package jobly

import (
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDsnFor(t *testing.T) {
	t.Run("sqlite3 turns on foreign keys", func(t *testing.T) {
		dsn, err := dsnFor("sqlite3", ":memory:")
		require.NoError(t, err)
		assert.Equal(t, ":memory:?_foreign_keys=1", dsn)

		dsn, err = dsnFor("sqlite3", "file:jobly.db?cache=shared")
		require.NoError(t, err)
		assert.Equal(t, "file:jobly.db?cache=shared&_foreign_keys=1", dsn)

		dsn, err = dsnFor("sqlite3", "jobly.db?_foreign_keys=0")
		require.NoError(t, err)
		assert.Equal(t, "jobly.db?_foreign_keys=0", dsn)
	})

	t.Run("mysql reports found rows", func(t *testing.T) {
		dsn, err := dsnFor("mysql", "user:pw@tcp(localhost:3306)/jobly?parseTime=true")
		require.NoError(t, err)
		cfg, err := mysql.ParseDSN(dsn)
		require.NoError(t, err)
		assert.True(t, cfg.ClientFoundRows)
		assert.True(t, cfg.ParseTime)
		assert.Equal(t, "jobly", cfg.DBName)
		assert.Equal(t, "localhost:3306", cfg.Addr)
	})

	t.Run("mysql with a broken dsn", func(t *testing.T) {
		_, err := dsnFor("mysql", "user:pw@tcp(localhost:3306)jobly")
		assert.Error(t, err)
	})

	t.Run("postgres is left alone", func(t *testing.T) {
		dsn, err := dsnFor("postgres", "postgresql:///jobly?sslmode=disable")
		require.NoError(t, err)
		assert.Equal(t, "postgresql:///jobly?sslmode=disable", dsn)
	})
}
