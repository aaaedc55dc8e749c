package storage

import (
	"context"
	"time"
)

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// UploadOptions conveys archive destination metadata.
type UploadOptions struct {
	Bucket    string
	KeyPrefix string
}

// Service mirrors page revisions to remote object storage.
type Service interface {
	UploadRevision(ctx context.Context, opts UploadOptions, url string, index int, content string) (string, error)
	ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
}
