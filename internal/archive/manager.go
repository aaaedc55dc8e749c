// Package archive mirrors appended page revisions to object storage in the
// background. Archiving is best effort: the sqlite store remains the source
// of truth and a failed upload never fails the originating write.
package archive

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"miniwiki/internal/storage"
)

// Manager accepts revision snapshots and drains them to storage with a fixed
// worker pool.
type Manager interface {
	Start(ctx context.Context) error
	Shutdown()
	Enqueue(url string, index int, content string) error
}

type Config struct {
	MaxConcurrent int
	QueueSize     int
	UploadTimeout time.Duration
	UploadOptions storage.UploadOptions
	Logger        *logrus.Logger
}

type job struct {
	url     string
	index   int
	content string
}

type manager struct {
	cfg     Config
	storage storage.Service

	jobs   chan job
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	started bool
}

func NewManager(cfg Config, store storage.Service) Manager {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.UploadTimeout == 0 {
		cfg.UploadTimeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &manager{
		cfg:     cfg,
		storage: store,
		jobs:    make(chan job, cfg.QueueSize),
	}
}

func (m *manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return fmt.Errorf("archive manager already started")
	}
	if m.cfg.UploadOptions.Bucket == "" {
		return fmt.Errorf("archive bucket is required")
	}

	// Detached from the caller's cancellation so a server shutdown can still
	// drain queued uploads before Shutdown cancels in-flight ones.
	m.ctx, m.cancel = context.WithCancel(context.WithoutCancel(ctx))
	for i := 0; i < m.cfg.MaxConcurrent; i++ {
		m.wg.Add(1)
		go m.worker()
	}
	m.started = true
	m.cfg.Logger.Infof("revision archiver started, bucket: %s", m.cfg.UploadOptions.Bucket)
	return nil
}

func (m *manager) Shutdown() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.started = false
	m.mu.Unlock()

	close(m.jobs)
	m.wg.Wait()
	m.cancel()
	m.cfg.Logger.Info("revision archiver stopped")
}

// Enqueue submits a revision for upload. It never blocks the caller: a full
// queue drops the snapshot with a warning.
func (m *manager) Enqueue(url string, index int, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return fmt.Errorf("archive manager not started")
	}

	select {
	case m.jobs <- job{url: url, index: index, content: content}:
		return nil
	default:
		m.cfg.Logger.Warnf("archive queue full, dropping %s rev %d", url, index)
		return fmt.Errorf("archive queue full")
	}
}

func (m *manager) worker() {
	defer m.wg.Done()
	for j := range m.jobs {
		uploadCtx, cancel := context.WithTimeout(m.ctx, m.cfg.UploadTimeout)
		location, err := m.storage.UploadRevision(uploadCtx, m.cfg.UploadOptions, j.url, j.index, j.content)
		cancel()
		if err != nil {
			m.cfg.Logger.Warnf("archive %s rev %d: %v", j.url, j.index, err)
			continue
		}
		m.cfg.Logger.Debugf("archived %s rev %d to %s", j.url, j.index, location)
	}
}
