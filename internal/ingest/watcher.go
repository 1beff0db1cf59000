package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"salespilot/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors drop directories for CSV files and ingests them as
// they settle. Files under <dir>/contracts are treated as contract
// uploads, files under <dir>/releases as release uploads.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	ingestor    *Ingestor
	contractDir string
	releaseDir  string
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats WatcherStats
}

// WatcherStats tracks watcher activity for debugging.
type WatcherStats struct {
	FilesSeen     int
	FilesIngested int
	Duplicates    int
	Errors        int
	LastFile      string
	LastEventTime time.Time
}

// NewWatcher creates a watcher over dropDir. The contracts and releases
// subdirectories are created if missing.
func NewWatcher(dropDir string, ingestor *Ingestor) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:     fsw,
		ingestor:    ingestor,
		contractDir: filepath.Join(dropDir, "contracts"),
		releaseDir:  filepath.Join(dropDir, "releases"),
		debounceMap: make(map[string]time.Time),
		debounceDur: 500 * time.Millisecond, // let copies finish before parsing
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the event loop runs in a goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	for _, dir := range []string{w.contractDir, w.releaseDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logging.Get(logging.CategoryIngest).Warn("watcher: cannot create %s: %v", dir, err)
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			logging.Get(logging.CategoryIngest).Warn("watcher: cannot watch %s: %v", dir, err)
		} else {
			logging.Ingest("watcher: watching %s", dir)
		}
	}

	go w.run(ctx)
	return nil
}

// Stop shuts the watcher down and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.Get(logging.CategoryIngest).Error("watcher: close: %v", err)
	}
	logging.Ingest("watcher: stopped")
}

// IsWatching reports whether the event loop is running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// Stats returns a snapshot of watcher activity.
func (w *Watcher) Stats() WatcherStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// DrainExisting ingests CSV files already present in the drop
// directories. Useful at startup.
func (w *Watcher) DrainExisting(ctx context.Context) error {
	for _, dir := range []string{w.contractDir, w.releaseDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
				continue
			}
			w.ingestFile(ctx, filepath.Join(dir, entry.Name()))
		}
	}
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	debounceTicker := time.NewTicker(100 * time.Millisecond)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryIngest).Error("watcher: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		case <-debounceTicker.C:
			w.processSettled(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".csv") {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	w.mu.Lock()
	w.stats.FilesSeen++
	w.stats.LastFile = event.Name
	w.stats.LastEventTime = time.Now()
	w.debounceMap[event.Name] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) processSettled(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, at := range w.debounceMap {
		if now.Sub(at) >= w.debounceDur {
			settled = append(settled, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	for _, path := range settled {
		w.ingestFile(ctx, path)
	}
}

func (w *Watcher) ingestFile(ctx context.Context, path string) {
	if _, err := os.Stat(path); err != nil {
		return // deleted before it settled
	}

	var (
		res *Result
		err error
	)
	switch filepath.Dir(path) {
	case w.contractDir:
		res, err = w.ingestor.IngestContractFile(ctx, path)
	case w.releaseDir:
		res, err = w.ingestor.IngestReleaseFile(ctx, path)
	default:
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case errors.Is(err, ErrDuplicateUpload):
		w.stats.Duplicates++
		logging.Ingest("watcher: skipped duplicate %s", filepath.Base(path))
	case err != nil:
		w.stats.Errors++
		logging.Get(logging.CategoryIngest).Error("watcher: ingest %s: %v", filepath.Base(path), err)
	default:
		w.stats.FilesIngested++
		logging.Ingest("watcher: ingested %s (%d rows)", res.FileName, res.RowCount)
	}
}
