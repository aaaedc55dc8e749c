package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"miniwiki/internal/domain"
	"miniwiki/internal/repository"
)

const (
	createPagesTable = `
CREATE TABLE IF NOT EXISTS pages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	url TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL
);
`
	createRevisionsTable = `
CREATE TABLE IF NOT EXISTS revisions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	page_id INTEGER NOT NULL REFERENCES pages(id),
	content TEXT NOT NULL,
	modified_at DATETIME NOT NULL
);
`
	createRevisionsIndex = `
CREATE INDEX IF NOT EXISTS idx_revisions_page ON revisions(page_id, id);
`
)

type PageRepository struct {
	db *sql.DB
}

func NewPageRepository(db *sql.DB) repository.PageRepository {
	return &PageRepository{db: db}
}

func (r *PageRepository) Init(ctx context.Context) error {
	for _, stmt := range []string{createPagesTable, createRevisionsTable, createRevisionsIndex} {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init page schema: %w", err)
		}
	}
	return nil
}

func (r *PageRepository) Get(ctx context.Context, url string) (*domain.WikiPage, error) {
	return getPage(ctx, r.db, url)
}

// Append creates the page on first write, appends the revision, and reads the
// page back inside the same transaction. The returned page therefore always
// contains the revision just written; no post-write delay is needed.
func (r *PageRepository) Append(ctx context.Context, url, content string) (*domain.WikiPage, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin append tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	var pageID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM pages WHERE url = ?`, url).Scan(&pageID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx, `INSERT INTO pages (url, created_at) VALUES (?, ?)`, url, now)
		if err != nil {
			return nil, fmt.Errorf("insert page: %w", err)
		}
		pageID, err = res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("page last insert id: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("select page: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO revisions (page_id, content, modified_at)
VALUES (?, ?, ?)`,
		pageID, content, now,
	); err != nil {
		return nil, fmt.Errorf("insert revision: %w", err)
	}

	page, err := getPage(ctx, tx, url)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit append tx: %w", err)
	}
	return page, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func getPage(ctx context.Context, q querier, url string) (*domain.WikiPage, error) {
	var page domain.WikiPage
	err := q.QueryRowContext(ctx, `
SELECT id, url, created_at
FROM pages
WHERE url = ?`,
		url,
	).Scan(&page.ID, &page.URL, &page.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan page: %w", err)
	}

	rows, err := q.QueryContext(ctx, `
SELECT content, modified_at
FROM revisions
WHERE page_id = ?
ORDER BY id ASC`,
		page.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("query revisions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rev domain.Revision
		if err := rows.Scan(&rev.Content, &rev.ModifiedAt); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		page.Revisions = append(page.Revisions, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revisions: %w", err)
	}
	return &page, nil
}
