package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdeck/internal/db"
)

func TestOpenAppliesMigrationsOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "flashdeck.db")

	first, err := db.Open(path)
	require.NoError(t, err)
	version, err := first.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0003_study_sessions.sql", version)
	_, err = first.ExecContext(ctx, `INSERT INTO decks (name) VALUES ('kept')`)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := db.Open(path)
	require.NoError(t, err)
	defer second.Close()

	var migrations, decks int
	require.NoError(t, second.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&migrations))
	require.NoError(t, second.QueryRowContext(ctx, `SELECT COUNT(*) FROM decks`).Scan(&decks))
	assert.Equal(t, 3, migrations)
	assert.Equal(t, 1, decks)
	assert.NoError(t, second.Healthy(ctx))
}

func TestForeignKeysEnforced(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	defer database.Close()

	var enabled int
	require.NoError(t, database.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&enabled))
	assert.Equal(t, 1, enabled)

	_, err = database.ExecContext(ctx, `INSERT INTO flashcards (deck_id, front, back) VALUES (999, 'q', 'a')`)
	assert.Error(t, err)
}

func TestHealthyAfterClose(t *testing.T) {
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Close())
	assert.Error(t, database.Healthy(context.Background()))
}
