package domain

import (
	"errors"
	"time"
)

// ErrRevisionOutOfRange is returned when a revision index does not exist.
var ErrRevisionOutOfRange = errors.New("revision out of range")

// LatestRevision selects the most recent revision of a page.
const LatestRevision = -1

// Revision is one immutable snapshot of a page's content.
type Revision struct {
	Content    string
	ModifiedAt time.Time
}

// WikiPage is a page identified by URL with its append-only revision history,
// ordered oldest first.
type WikiPage struct {
	ID        int64
	URL       string
	Revisions []Revision
	CreatedAt time.Time
}

// Revision returns the revision at the given absolute index. LatestRevision
// (or the index of the last element) selects the newest one.
func (p *WikiPage) Revision(index int) (Revision, error) {
	if len(p.Revisions) == 0 {
		return Revision{}, ErrRevisionOutOfRange
	}
	if index == LatestRevision {
		return p.Revisions[len(p.Revisions)-1], nil
	}
	if index < 0 || index >= len(p.Revisions) {
		return Revision{}, ErrRevisionOutOfRange
	}
	return p.Revisions[index], nil
}

// Latest returns the newest revision. Pages are never persisted without at
// least one revision, so callers holding a stored page may rely on it.
func (p *WikiPage) Latest() Revision {
	return p.Revisions[len(p.Revisions)-1]
}
