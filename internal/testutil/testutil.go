package testutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdeck/internal/db"
)

// OpenTestDB creates an in-memory SQLite database with all migrations applied
// and foreign keys enabled.
func OpenTestDB(t *testing.T) *db.DB {
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	return database
}

// NewTestDB is OpenTestDB for callers that only need the *sql.DB.
func NewTestDB(t *testing.T) *sql.DB {
	return OpenTestDB(t).DB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}
