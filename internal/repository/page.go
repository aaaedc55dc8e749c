package repository

import (
	"context"

	"miniwiki/internal/domain"
)

// PageRepository persists wiki pages and their append-only revision history.
// Append is the sole mutation path: it creates the page on first write and
// returns the page as observed after the append commits, so a caller never
// reads a state older than its own write.
type PageRepository interface {
	Init(ctx context.Context) error
	Get(ctx context.Context, url string) (*domain.WikiPage, error)
	Append(ctx context.Context, url, content string) (*domain.WikiPage, error)
}
