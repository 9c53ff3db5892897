package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults without file", func(t *testing.T) {
		c, err := Load("")
		require.NoError(t, err)
		assert.NotEmpty(t, c.SecretKey)
	})

	t.Run("file values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "jobly.yaml")
		require.NoError(t, os.WriteFile(path, []byte("port: 8080\ndriver: sqlite3\ndatabase_url: ':memory:'\n"), 0o600))
		t.Setenv("PORT", "9090")
		c, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 9090, c.Port)
		assert.Equal(t, "sqlite3", c.Driver)
		assert.Equal(t, ":memory:", c.DatabaseURL)
		assert.Equal(t, ":9090", c.Addr())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"JOBLY_ENV":        "test",
		"JOBLY_SECRET_KEY": "s3cret",
		"JOBLY_DRIVER":     "pgx",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	c := Default()
	require.NoError(t, c.applyEnv(lookup))
	assert.Equal(t, "s3cret", c.SecretKey)
	assert.Equal(t, "pgx", c.Driver)
	assert.Equal(t, 4, c.BcryptCost)
	assert.False(t, c.IsProduction())

	env["PORT"] = "abc"
	assert.Error(t, c.applyEnv(lookup))
}
