package service

import (
	"context"

	"miniwiki/internal/domain"
	"miniwiki/internal/repository"
)

// PageService covers reading and writing versioned wiki content.
type PageService interface {
	// ReadPage returns the content of the page at the given revision index.
	// domain.LatestRevision selects the newest one.
	ReadPage(ctx context.Context, url string, version int) (string, error)
	// WritePage appends a revision, creating the page on first write, and
	// returns the page including the new revision.
	WritePage(ctx context.Context, url, content string) (*domain.WikiPage, error)
	// History returns every revision of the page, oldest first.
	History(ctx context.Context, url string) ([]domain.Revision, error)
	GetPage(ctx context.Context, url string) (*domain.WikiPage, error)
}

type pageService struct {
	pages repository.PageRepository
}

func NewPageService(pages repository.PageRepository) PageService {
	return &pageService{pages: pages}
}

func (s *pageService) ReadPage(ctx context.Context, url string, version int) (string, error) {
	page, err := s.pages.Get(ctx, url)
	if err != nil {
		return "", err
	}
	rev, err := page.Revision(version)
	if err != nil {
		return "", err
	}
	return rev.Content, nil
}

func (s *pageService) WritePage(ctx context.Context, url, content string) (*domain.WikiPage, error) {
	return s.pages.Append(ctx, url, content)
}

func (s *pageService) History(ctx context.Context, url string) ([]domain.Revision, error) {
	page, err := s.pages.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	return page.Revisions, nil
}

func (s *pageService) GetPage(ctx context.Context, url string) (*domain.WikiPage, error) {
	return s.pages.Get(ctx, url)
}
