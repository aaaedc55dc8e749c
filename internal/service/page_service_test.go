package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miniwiki/internal/domain"
	"miniwiki/internal/repository"
	"miniwiki/internal/repository/sqlite"
)

func newTestPageService(t *testing.T) PageService {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := sqlite.NewPageRepository(db)
	require.NoError(t, repo.Init(context.Background()))
	return NewPageService(repo)
}

func TestReadPageVersions(t *testing.T) {
	svc := newTestPageService(t)
	ctx := context.Background()

	_, err := svc.WritePage(ctx, "/home", "v1")
	require.NoError(t, err)
	_, err = svc.WritePage(ctx, "/home", "v2")
	require.NoError(t, err)

	latest, err := svc.ReadPage(ctx, "/home", domain.LatestRevision)
	require.NoError(t, err)
	assert.Equal(t, "v2", latest)

	first, err := svc.ReadPage(ctx, "/home", 0)
	require.NoError(t, err)
	assert.Equal(t, "v1", first)

	_, err = svc.ReadPage(ctx, "/home", 5)
	assert.ErrorIs(t, err, domain.ErrRevisionOutOfRange)
}

func TestReadPageNotFound(t *testing.T) {
	svc := newTestPageService(t)

	_, err := svc.ReadPage(context.Background(), "/missing", domain.LatestRevision)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestWritePageReturnsNewRevision(t *testing.T) {
	svc := newTestPageService(t)
	ctx := context.Background()

	page, err := svc.WritePage(ctx, "/home", "hello")
	require.NoError(t, err)
	require.Len(t, page.Revisions, 1)
	assert.Equal(t, "hello", page.Latest().Content)

	page, err = svc.WritePage(ctx, "/home", "hello again")
	require.NoError(t, err)
	require.Len(t, page.Revisions, 2)
	assert.Equal(t, "hello again", page.Latest().Content)
}

func TestHistoryOrderedOldestFirst(t *testing.T) {
	svc := newTestPageService(t)
	ctx := context.Background()

	for _, content := range []string{"v1", "v2", "v3"} {
		_, err := svc.WritePage(ctx, "/home", content)
		require.NoError(t, err)
	}

	revisions, err := svc.History(ctx, "/home")
	require.NoError(t, err)
	require.Len(t, revisions, 3)
	assert.Equal(t, "v1", revisions[0].Content)
	assert.Equal(t, "v3", revisions[2].Content)
	assert.False(t, revisions[0].ModifiedAt.After(revisions[2].ModifiedAt))
}

func TestHistoryNotFound(t *testing.T) {
	svc := newTestPageService(t)

	_, err := svc.History(context.Background(), "/missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
