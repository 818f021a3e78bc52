package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"tableflip.dev/storefront/pkg/record"
)

// EventType describes the nature of a mirror change notification.
type EventType int

const (
	// EventKindChanged indicates the records of one kind were written or
	// erased.
	EventKindChanged EventType = iota

	// EventMirrorInvalidated signals a change that could not be attributed to
	// one kind, such as a reset. Callers should refresh every view.
	EventMirrorInvalidated
)

func (t EventType) String() string {
	if t == EventKindChanged {
		return "kind-changed"
	}
	return "invalidated"
}

// Event is emitted by Persistence.Watch when the mirror changes on disk.
type Event struct {
	Type EventType
	Kind record.Kind
}

// Watch streams change events until ctx is cancelled. Events are coalesced per
// burst of writes and dropped when the consumer falls behind. The channel is
// closed once ctx is done or the watcher fails.
func (p *persistence) Watch(ctx context.Context) (<-chan Event, error) {
	if err := os.MkdirAll(p.basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				p.log.Warn("store watcher close", zap.Error(err))
			}
		})
	}

	dirs, err := collectDirs(p.basePath)
	if err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: enumerate directories: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("store: watch %s: %w", dir, err)
		}
	}

	events := make(chan Event, 64)

	go func() {
		defer close(events)
		defer closeWatcher()

		watched := make(map[string]struct{}, len(dirs))
		for _, dir := range dirs {
			watched[dir] = struct{}{}
		}

		send := func(ev Event) {
			select {
			case events <- ev:
			default:
			}
		}

		throttle := newEventThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				p.log.Debug("store watcher error", zap.Error(err))
				throttle.Enqueue(Event{Type: EventMirrorInvalidated}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}

				if evt.Op&fsnotify.Create == fsnotify.Create {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						dir := filepath.Clean(evt.Name)
						if _, found := watched[dir]; !found {
							if err := watcher.Add(dir); err != nil {
								p.log.Warn("store watch dir", zap.String("dir", dir), zap.Error(err))
							} else {
								watched[dir] = struct{}{}
							}
						}
					}
				}

				kind, ok := p.kindForPath(evt.Name)
				if !ok {
					throttle.Enqueue(Event{Type: EventMirrorInvalidated}, send)
					continue
				}
				throttle.Enqueue(Event{Type: EventKindChanged, Kind: kind}, send)
			}
		}
	}()

	return events, nil
}

// collectDirs walks base and returns all directories that should be watched.
func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

// kindForPath derives the record kind from a diskv record path or an index
// file path.
func (p *persistence) kindForPath(path string) (record.Kind, bool) {
	rel, err := filepath.Rel(p.basePath, path)
	if err != nil || rel == "." {
		return "", false
	}
	first, _, _ := strings.Cut(rel, string(os.PathSeparator))
	first = strings.TrimSuffix(first, ".tmp")
	first = strings.TrimSuffix(first, indexSuffix)
	kind, err := record.ParseKind(first)
	if err != nil {
		return "", false
	}
	return kind, true
}

// eventThrottle coalesces rapid change notifications so views refresh once
// per burst of filesystem activity.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[EventType]map[record.Kind]struct{}
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[EventType]map[record.Kind]struct{}),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending[ev.Type] == nil {
		t.pending[ev.Type] = make(map[record.Kind]struct{})
	}
	if ev.Kind != "" {
		t.pending[ev.Type][ev.Kind] = struct{}{}
	}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[EventType]map[record.Kind]struct{})
	t.timer = nil
	t.mu.Unlock()

	if _, all := pending[EventMirrorInvalidated]; all {
		send(Event{Type: EventMirrorInvalidated})
		return
	}
	for kind := range pending[EventKindChanged] {
		send(Event{Type: EventKindChanged, Kind: kind})
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
