// Package app wires the configuration, storage, and core components into a
// ready-to-use FileManager for one CLI invocation.
package app

import (
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"

	"fo-go/internal/config"
	"fo-go/internal/database"
	"fo-go/internal/fo"
	"fo-go/internal/fs"
)

// App owns the per-invocation resources: the sqlite store, the advisory
// lock that enforces single-process access to it, and the log file.
// The caller must call Close when done.
type App struct {
	cfg     *config.Config
	store   *database.SQLiteStore
	manager *fo.FileManager
	lock    *flock.Flock
	logFile *os.File
}

// New creates a fully wired App from the given config. operation identifies
// the CLI command being run (e.g. "Sort", "Undo") and tags every log line
// of this invocation.
func New(cfg *config.Config, operation string, verbose bool) (*App, error) {
	opID := fmt.Sprintf("%s-%s", operation, time.Now().UTC().Format("20060102T150405Z"))
	logger, logFile, err := newLogger(cfg.LogDir, opID, verbose)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	// The journal assumes exactly one process at a time. Refuse to run
	// rather than interleave with another invocation.
	lock := flock.New(cfg.DBPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("acquiring store lock: %w", err)
	}
	if !locked {
		logFile.Close()
		return nil, fmt.Errorf("another fo process is using %s", cfg.DBPath)
	}

	store, err := database.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		lock.Unlock()
		logFile.Close()
		return nil, fmt.Errorf("opening store: %w", err)
	}

	buckets := make([]fo.SizeBucket, len(cfg.SizeBuckets))
	for i, b := range cfg.SizeBuckets {
		buckets[i] = fo.SizeBucket{Label: b.Label, MaxBytes: b.MaxBytes}
	}

	clock := fo.RealClock{}
	cat := fo.NewCategorizer(cfg.Types, buckets, clock)
	manager := fo.NewFileManager(
		store,
		fs.NewOSWalker(),
		cat,
		fo.NewContentHasher(),
		fs.NewOSMover(),
		&slogAdapter{l: logger},
		clock,
		fo.UUIDGenerator{},
	)

	return &App{
		cfg:     cfg,
		store:   store,
		manager: manager,
		lock:    lock,
		logFile: logFile,
	}, nil
}

// Manager returns the wired FileManager.
func (a *App) Manager() *fo.FileManager { return a.manager }

// Config returns the configuration this App was built from.
func (a *App) Config() *config.Config { return a.cfg }

// Close releases the store, the lock, and the log file.
func (a *App) Close() error {
	var firstErr error

	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}
	if err := a.lock.Unlock(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("releasing store lock: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
