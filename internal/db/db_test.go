package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSchemaIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.sqlite3")

	database, err := Open(path)
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, EnsureSchema(database))
	require.NoError(t, EnsureSchema(database))

	for _, table := range []string{"users", "items", "tools", "jobs", "settings", "revoked_tokens"} {
		var name string
		err := database.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s", table)
		assert.Equal(t, table, name)
	}
}

func TestUniqueEmail(t *testing.T) {
	database := NewTestDB(t)

	_, err := database.Exec(`INSERT INTO users (email, password_hash, name, created_at) VALUES ('a@b.c', 'x', 'A', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)
	_, err = database.Exec(`INSERT INTO users (email, password_hash, name, created_at) VALUES ('a@b.c', 'y', 'B', CURRENT_TIMESTAMP)`)
	assert.Error(t, err)
}
