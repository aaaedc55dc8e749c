package sqlite

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miniwiki/internal/domain"
	"miniwiki/internal/repository"
)

func TestPageAppendCreatesPage(t *testing.T) {
	repo := newTestPageRepo(t)
	ctx := context.Background()

	page, err := repo.Append(ctx, "/home", "v1")
	require.NoError(t, err)
	assert.Equal(t, "/home", page.URL)
	require.Len(t, page.Revisions, 1)
	assert.Equal(t, "v1", page.Revisions[0].Content)
	assert.False(t, page.CreatedAt.IsZero())
}

func TestPageAppendReadAfterWrite(t *testing.T) {
	repo := newTestPageRepo(t)
	ctx := context.Background()

	// The page returned by Append must already include the revision just
	// written, and a subsequent Get must observe it too.
	_, err := repo.Append(ctx, "/home", "v1")
	require.NoError(t, err)
	appended, err := repo.Append(ctx, "/home", "v2")
	require.NoError(t, err)
	require.Len(t, appended.Revisions, 2)
	assert.Equal(t, "v2", appended.Latest().Content)

	got, err := repo.Get(ctx, "/home")
	require.NoError(t, err)
	require.Len(t, got.Revisions, 2)
	assert.Equal(t, "v1", got.Revisions[0].Content)
	assert.Equal(t, "v2", got.Revisions[1].Content)
}

func TestPageRevisionIndexing(t *testing.T) {
	repo := newTestPageRepo(t)
	ctx := context.Background()

	_, err := repo.Append(ctx, "/home", "v1")
	require.NoError(t, err)
	page, err := repo.Append(ctx, "/home", "v2")
	require.NoError(t, err)

	latest, err := page.Revision(domain.LatestRevision)
	require.NoError(t, err)
	assert.Equal(t, "v2", latest.Content)

	first, err := page.Revision(0)
	require.NoError(t, err)
	assert.Equal(t, "v1", first.Content)

	_, err = page.Revision(5)
	assert.ErrorIs(t, err, domain.ErrRevisionOutOfRange)
}

func TestPageGetNotFound(t *testing.T) {
	repo := newTestPageRepo(t)

	_, err := repo.Get(context.Background(), "/missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPagesAreIndependent(t *testing.T) {
	repo := newTestPageRepo(t)
	ctx := context.Background()

	_, err := repo.Append(ctx, "/a", "page a")
	require.NoError(t, err)
	_, err = repo.Append(ctx, "/b", "page b")
	require.NoError(t, err)

	a, err := repo.Get(ctx, "/a")
	require.NoError(t, err)
	require.Len(t, a.Revisions, 1)
	assert.Equal(t, "page a", a.Revisions[0].Content)
}

func TestPageConcurrentAppendsLoseNothing(t *testing.T) {
	repo := newTestPageRepo(t)
	ctx := context.Background()

	const writers = 10
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Append(ctx, "/contested", fmt.Sprintf("edit-%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	page, err := repo.Get(ctx, "/contested")
	require.NoError(t, err)
	require.Len(t, page.Revisions, writers)

	seen := make(map[string]bool)
	for _, rev := range page.Revisions {
		seen[rev.Content] = true
	}
	for i := 0; i < writers; i++ {
		assert.True(t, seen[fmt.Sprintf("edit-%d", i)], "missing edit-%d", i)
	}
}
