package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestAccountRepo(t *testing.T) *AccountRepository {
	t.Helper()

	repo := NewAccountRepository(openTestDB(t)).(*AccountRepository)
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func newTestPageRepo(t *testing.T) *PageRepository {
	t.Helper()

	repo := NewPageRepository(openTestDB(t)).(*PageRepository)
	require.NoError(t, repo.Init(context.Background()))
	return repo
}
