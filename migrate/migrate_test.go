package migrate

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(embedded, Dir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, e := range entries {
		body, err := fs.ReadFile(embedded, Dir+"/"+e.Name())
		require.NoError(t, err)
		sql := string(body)
		assert.Contains(t, sql, "-- +goose Up", e.Name())
		assert.Contains(t, sql, "-- +goose Down", e.Name())
	}
}

func TestInitMigrationHasActiveBorrowIndex(t *testing.T) {
	body, err := fs.ReadFile(embedded, Dir+"/00001_init.sql")
	require.NoError(t, err)
	sql := strings.ToLower(string(body))
	assert.Contains(t, sql, "create unique index borrow_records_one_active_per_tool")
	assert.Contains(t, sql, "where status = 'active'")
}

func TestRunRequiresDB(t *testing.T) {
	assert.Error(t, Run(t.Context(), nil, "up"))
}
