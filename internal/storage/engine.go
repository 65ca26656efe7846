// Package storage provides the storage engine for PredKV.
//
// The engine composes the in-memory store with the snapshot manager:
// it restores the last snapshot at startup, persists the store on a
// fixed interval, and writes a final snapshot on shutdown. The timer
// is owned by the engine and stops with it; there is no process-wide
// scheduler.
package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/predkv/predkv/internal/storage/memory"
	"github.com/predkv/predkv/internal/storage/snapshot"
	"github.com/predkv/predkv/internal/telemetry/metric"
)

// DefaultSnapshotInterval matches the default configuration of 60
// minutes between automatic snapshots.
const DefaultSnapshotInterval = time.Hour

// Config configures the storage engine.
type Config struct {
	// Snapshot configures the snapshot file.
	Snapshot snapshot.Config

	// SnapshotInterval is the interval between automatic snapshots.
	SnapshotInterval time.Duration

	// Logger is the structured logger.
	Logger *slog.Logger

	// Metrics is optional.
	Metrics *metric.Metrics
}

// Engine owns the store and its persistence.
type Engine struct {
	cfg    Config
	store  *memory.Store
	snap   *snapshot.Manager
	logger *slog.Logger

	started  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New creates a storage engine. It does not touch the disk; call
// Recover to load the last snapshot and Start to begin the timer.
func New(cfg Config) (*Engine, error) {
	if cfg.SnapshotInterval <= 0 {
		cfg.SnapshotInterval = DefaultSnapshotInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	snap, err := snapshot.NewManager(cfg.Snapshot)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:    cfg,
		store:  memory.New(),
		snap:   snap,
		logger: cfg.Logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}, nil
}

// Store returns the live store.
func (e *Engine) Store() *memory.Store {
	return e.store
}

// Recover loads the snapshot file into the store. Any failure — a
// missing file, a corrupted file, a wrong key — leaves the store empty
// rather than propagating: the server always comes up.
func (e *Engine) Recover() {
	entries, info, err := e.snap.Load()
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			e.logger.Info("no snapshot found, starting with empty store",
				"path", e.cfg.Snapshot.Path)
		} else {
			e.logger.Warn("snapshot load failed, starting with empty store",
				"path", e.cfg.Snapshot.Path, "error", err)
		}
		e.store.ReplaceAll(nil)
		return
	}

	e.store.ReplaceAll(entries)
	if e.cfg.Metrics != nil {
		e.cfg.Metrics.EntriesLive.Set(float64(e.store.Len()))
	}
	e.logger.Info("snapshot restored",
		"path", info.Path,
		"entries", len(entries),
		"size_bytes", info.Size)
}

// Start launches the periodic snapshot loop. Calling Start twice is a
// no-op.
func (e *Engine) Start() {
	if !e.started.CompareAndSwap(false, true) {
		return
	}
	go e.backgroundLoop()
}

// TriggerSnapshot persists the current store contents immediately. The
// store copy is taken under the store lock; file I/O happens outside
// it, so a slow disk never blocks request handling.
func (e *Engine) TriggerSnapshot() (*snapshot.Info, error) {
	start := time.Now()
	entries := e.store.SnapshotView()

	info, err := e.snap.Write(entries)
	if err != nil {
		if e.cfg.Metrics != nil {
			e.cfg.Metrics.SnapshotFailures.Inc()
		}
		return nil, fmt.Errorf("write snapshot: %w", err)
	}

	if e.cfg.Metrics != nil {
		e.cfg.Metrics.SnapshotDuration.Observe(time.Since(start).Seconds())
		e.cfg.Metrics.EntriesLive.Set(float64(len(entries)))
	}

	e.logger.Info("snapshot written",
		"path", info.Path,
		"entries", info.EntryCount,
		"size_bytes", info.Size)
	return info, nil
}

func (e *Engine) backgroundLoop() {
	defer close(e.doneCh)

	ticker := time.NewTicker(e.cfg.SnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// A failed write compromises durability; report loudly and
			// keep serving.
			if _, err := e.TriggerSnapshot(); err != nil {
				e.logger.Error("automatic snapshot failed", "error", err)
			}
		case <-e.stopCh:
			return
		}
	}
}

// Close stops the snapshot loop and writes a final snapshot so a clean
// shutdown loses nothing.
func (e *Engine) Close() error {
	e.stopOnce.Do(func() { close(e.stopCh) })
	if e.started.Load() {
		<-e.doneCh
	}

	if _, err := e.TriggerSnapshot(); err != nil {
		e.logger.Error("final snapshot failed", "error", err)
		return err
	}
	return nil
}
