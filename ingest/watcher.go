package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// eventChannelBuffer is the size of the change event channel.
	eventChannelBuffer = 16

	defaultDebounce = 500 * time.Millisecond
)

// ChangeEvent reports raw files whose content changed and the sources that
// read them.
type ChangeEvent struct {
	Paths   []string
	Sources []string
}

// Watcher watches a raw directory and emits a ChangeEvent per debounce
// window in which some source's files changed content.
type Watcher struct {
	rawDir   string
	registry *Registry
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	// Debouncing: collect changes before processing
	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	// Hash-based change detection
	hashMu sync.RWMutex
	hashes map[string]string

	events chan ChangeEvent

	droppedEvents atomic.Int64
}

// NewWatcher creates a watcher for rawDir. A zero debounce uses 500ms.
func NewWatcher(rawDir string, registry *Registry, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{
		rawDir:   rawDir,
		registry: registry,
		debounce: debounce,
		watcher:  fsw,
		logger:   logger,
		pending:  make(map[string]fsnotify.Op),
		hashes:   make(map[string]string),
		events:   make(chan ChangeEvent, eventChannelBuffer),
	}, nil
}

// Events returns the channel of change events. It is closed when the watcher
// stops.
func (w *Watcher) Events() <-chan ChangeEvent {
	return w.events
}

// Start records the current content of every raw file and begins watching.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.rawDir); err != nil {
		return err
	}
	go w.processEvents(ctx)

	w.logger.Info("Raw file watcher started",
		"raw_dir", w.rawDir,
		"debounce", w.debounce,
		"sources", w.registry.Names())
	return nil
}

// Stop stops the watcher. The events channel is closed by processEvents
// when it exits.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// Dropped returns the number of change events dropped because the channel
// was full.
func (w *Watcher) Dropped() int64 {
	return w.droppedEvents.Load()
}

func (w *Watcher) setHash(relPath, hash string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[relPath] = hash
}

func (w *Watcher) getHash(relPath string) (string, bool) {
	w.hashMu.RLock()
	defer w.hashMu.RUnlock()
	hash, ok := w.hashes[relPath]
	return hash, ok
}

// addWatchesRecursive watches every directory and hashes every file under
// root.
func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		base := d.Name()
		if strings.HasPrefix(base, ".") && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			if hash, err := fileHash(path); err == nil {
				w.setHash(w.rel(path), hash)
			}
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", "path", path, "error", err)
		} else {
			w.logger.Debug("Watching directory", "path", path)
		}
		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending()
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addWatchesRecursive(event.Name); err != nil {
				w.logger.Warn("Failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	w.pendingMu.Lock()
	w.pending[event.Name] |= event.Op
	w.pendingMu.Unlock()
	w.logger.Debug("Raw file change detected", "path", w.rel(event.Name), "op", event.Op.String())
}

// flushPending turns accumulated fs events into at most one ChangeEvent.
// Files whose content hash is unchanged are ignored.
func (w *Watcher) flushPending() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	var paths []string
	sources := map[string]struct{}{}
	for path := range toProcess {
		relPath := w.rel(path)
		if !w.changed(path, relPath) {
			continue
		}
		affected := w.registry.Affected(relPath)
		if len(affected) == 0 {
			continue
		}
		paths = append(paths, relPath)
		for _, name := range affected {
			sources[name] = struct{}{}
		}
	}
	if len(paths) == 0 {
		return
	}

	event := ChangeEvent{Paths: paths}
	for name := range sources {
		event.Sources = append(event.Sources, name)
	}
	sort.Strings(event.Paths)
	sort.Strings(event.Sources)
	w.sendEvent(event)
}

// changed compares a file's content with the last recorded hash and records
// the new one. Deleted files count as changed once.
func (w *Watcher) changed(path, relPath string) bool {
	hash, err := fileHash(path)
	if errors.Is(err, fs.ErrNotExist) {
		w.hashMu.Lock()
		_, had := w.hashes[relPath]
		delete(w.hashes, relPath)
		w.hashMu.Unlock()
		return had
	}
	if err != nil {
		w.logger.Warn("Failed to read file for hash check", "path", relPath, "error", err)
		return false
	}
	if old, ok := w.getHash(relPath); ok && old == hash {
		return false
	}
	w.setHash(relPath, hash)
	return true
}

func (w *Watcher) sendEvent(event ChangeEvent) {
	select {
	case w.events <- event:
		w.logger.Debug("Sent change event", "paths", event.Paths, "sources", event.Sources)
	default:
		w.droppedEvents.Add(1)
		w.logger.Warn("Change event dropped, channel full", "paths", event.Paths)
	}
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.rawDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func fileHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Watch re-runs affected sources for every change event until ctx is done
// or the watcher stops. Run failures are logged and watching continues.
func Watch(ctx context.Context, w *Watcher, runner *Runner, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.Events():
			if !ok {
				return nil
			}
			logger.Info("Raw files changed, re-running sources", "paths", event.Paths, "sources", event.Sources)
			if _, err := runner.Rerun(ctx, event.Sources); err != nil {
				logger.Error("Re-run failed", "sources", event.Sources, "error", err)
			}
		}
	}
}
