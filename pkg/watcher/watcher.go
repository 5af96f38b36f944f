// Package watcher reports changes to a dataset file so the viewer can reload
// it. It uses fsnotify on local filesystems and falls back to stat polling
// on network mounts or when fsnotify is unavailable.
package watcher

import (
	"context"
	"errors"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the default polling interval for fallback mode.
const DefaultPollInterval = 2 * time.Second

// ForcePollEnvVar forces polling mode when set to a truthy value.
const ForcePollEnvVar = "AFFECTMAP_FORCE_POLL"

// Common errors.
var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
	ErrNotWatchable   = errors.New("dataset location cannot be watched")
)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounceDuration sets the debounce duration.
func WithDebounceDuration(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the polling interval for fallback mode.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithOnChange sets the callback invoked when the file changes.
func WithOnChange(fn func()) WatcherOption {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnError sets the callback invoked on errors.
func WithOnError(fn func(error)) WatcherOption {
	return func(w *Watcher) { w.onError = fn }
}

// WithContentCheck suppresses notifications when the file bytes equal the
// last delivered version, e.g. after a touch or a save without edits.
func WithContentCheck(enabled bool) WatcherOption {
	return func(w *Watcher) { w.contentCheck = enabled }
}

// WithForcePoll forces polling mode even if fsnotify is available.
func WithForcePoll(force bool) WatcherOption {
	return func(w *Watcher) { w.forcePoll = force }
}

// fileState is what polling compares between ticks.
type fileState struct {
	modTime time.Time
	size    int64
}

func (s fileState) exists() bool { return !s.modTime.IsZero() }

func (s fileState) differs(info os.FileInfo) bool {
	return info.ModTime().After(s.modTime) || info.Size() != s.size
}

// Watcher monitors one dataset file. The parent directory is watched so
// editors that save by rename are seen too.
type Watcher struct {
	path         string
	debounce     time.Duration
	pollInterval time.Duration
	onChange     func()
	onError      func(error)
	forcePoll    bool
	contentCheck bool

	debouncer *Debouncer
	changeCh  chan struct{}

	mu      sync.RWMutex
	started bool
	polling bool
	fsType  FilesystemType
	state   fileState
	lastSum uint64
	changes int
	cancel  context.CancelFunc
	notify  *fsnotify.Watcher
}

// NewWatcher creates a watcher for path. Nothing is watched until Start.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:         absPath,
		debounce:     DefaultDebounceDuration,
		pollInterval: DefaultPollInterval,
		onChange:     func() {},
		onError:      func(error) {},
		changeCh:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// WatchDataset creates a content-checking watcher for a local dataset file.
// Remote URLs and directories are rejected with ErrNotWatchable.
func WatchDataset(location string, opts ...WatcherOption) (*Watcher, error) {
	lower := strings.ToLower(location)
	if location == "" || strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return nil, ErrNotWatchable
	}
	if info, err := os.Stat(location); err == nil && info.IsDir() {
		return nil, ErrNotWatchable
	}
	return NewWatcher(location, append([]WatcherOption{WithContentCheck(true)}, opts...)...)
}

// Start begins watching. A missing file is fine; it is picked up once
// created.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	w.state = fileState{}
	if info, err := os.Stat(w.path); err == nil {
		w.state = fileState{modTime: info.ModTime(), size: info.Size()}
	} else if os.IsPermission(err) {
		return ErrPermission
	}
	if w.contentCheck {
		w.lastSum, _ = fingerprint(w.path)
	}

	w.fsType = detectFilesystemTypeFunc(w.path)
	w.polling = w.forcePoll || envBool(ForcePollEnvVar) || isRemoteFilesystem(w.fsType)

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.notify = nil
	if !w.polling {
		fsw, err := w.openNotify()
		if err != nil {
			w.polling = true
		} else {
			w.notify = fsw
			go w.runNotify(ctx, fsw)
		}
	}
	if w.polling {
		go w.runPoll(ctx)
	}

	w.started = true
	return nil
}

func (w *Watcher) openNotify() (*fsnotify.Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return nil, err
	}
	return fsw, nil
}

// Stop stops watching. The Changed channel stays open so a pending receiver
// never sees a spurious change.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	w.cancel()
	if w.notify != nil {
		w.notify.Close()
		w.notify = nil
	}
	w.debouncer.Cancel()
	w.started = false
}

// IsPolling reports whether the watcher fell back to polling.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.polling
}

// IsStarted reports whether the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// Changed receives once per delivered change. Sends never block; changes
// that arrive while one is pending are merged.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changeCh
}

// Path returns the absolute watched path.
func (w *Watcher) Path() string {
	return w.path
}

// Changes returns how many change notifications have been delivered.
func (w *Watcher) Changes() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.changes
}

// FilesystemType returns the classification made at Start.
func (w *Watcher) FilesystemType() FilesystemType {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fsType
}

// PollInterval returns the polling interval used in polling mode.
func (w *Watcher) PollInterval() time.Duration {
	return w.pollInterval
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func (w *Watcher) runNotify(ctx context.Context, fsw *fsnotify.Watcher) {
	target := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			switch {
			case ev.Has(fsnotify.Remove):
				w.onError(ErrFileRemoved)
			case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create), ev.Has(fsnotify.Rename):
				w.debouncer.Trigger(w.deliver)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) runPoll(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if w.poll() {
				w.debouncer.Trigger(w.deliver)
			}
		}
	}
}

// poll stats the file once and reports whether it changed.
func (w *Watcher) poll() bool {
	info, err := os.Stat(w.path)
	switch {
	case os.IsNotExist(err):
		w.mu.RLock()
		existed := w.state.exists()
		w.mu.RUnlock()
		if existed {
			w.onError(ErrFileRemoved)
		}
		return false
	case os.IsPermission(err):
		w.onError(ErrPermission)
		return false
	case err != nil:
		w.onError(err)
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.state.differs(info) {
		return false
	}
	w.state = fileState{modTime: info.ModTime(), size: info.Size()}
	return true
}

// deliver runs after the debounce window: it drops unchanged content and
// then calls onChange and signals Changed.
func (w *Watcher) deliver() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	if w.contentCheck {
		sum, err := fingerprint(w.path)
		if err == nil && sum == w.lastSum {
			w.mu.Unlock()
			return
		}
		w.lastSum = sum
	}
	w.changes++
	w.mu.Unlock()

	w.onChange()
	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}

// fingerprint hashes the file contents with FNV-1a.
func fingerprint(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	h := fnv.New64a()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
