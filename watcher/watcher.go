// Package watcher monitors the site sources and the artwork folder and
// reports changes that need a thumbnail run or a rebuild.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"atelier/config"
	"atelier/event"
	"atelier/thumbs"
)

var log = event.Log

// DefaultDebounce is how long a path must stay quiet before its change is reported.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors site folders for file changes
type Watcher struct {
	cfg      *config.Config
	watcher  *fsnotify.Watcher
	events   chan Event
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	done    chan struct{}
	once    sync.Once
}

// Event represents a file system event
type Event struct {
	Type     EventType
	Kind     Kind
	FilePath string
}

// EventType represents the type of file event
type EventType int

const (
	EventCreated EventType = iota
	EventModified
	EventDeleted
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	case EventDeleted:
		return "deleted"
	}
	return "unknown"
}

// Kind says what a change requires.
type Kind int

const (
	// KindSource is a page shell, fragment, catalog or static asset; the site needs a rebuild.
	KindSource Kind = iota
	// KindArtwork is a new or changed original; thumbnails must be regenerated first.
	KindArtwork
)

func (k Kind) String() string {
	if k == KindArtwork {
		return "artwork"
	}
	return "source"
}

// NewWatcher creates a new file watcher
func NewWatcher(cfg *config.Config) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		cfg:      cfg,
		watcher:  fsWatcher,
		events:   make(chan Event, 100),
		debounce: DefaultDebounce,
		pending:  make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}, nil
}

// SetDebounce changes the quiet period. Call before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Folders lists the directories that are watched.
func (w *Watcher) Folders() []string {
	roots := []string{
		w.cfg.SitePath(w.cfg.Site.PagesDir),
		w.cfg.SitePath(w.cfg.Site.ComponentsDir),
		filepath.Dir(w.cfg.SitePath(w.cfg.Site.Catalog)),
		w.cfg.ArtworkPath(),
	}
	for _, d := range w.cfg.Site.StaticDirs {
		roots = append(roots, w.cfg.SitePath(d))
	}

	seen := make(map[string]bool)
	var folders []string
	for _, root := range roots {
		_ = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return nil
			}
			if p != root && (strings.HasPrefix(d.Name(), ".") || w.ignored(p)) {
				return filepath.SkipDir
			}
			if w.ignored(p) || seen[p] {
				return nil
			}
			seen[p] = true
			folders = append(folders, p)
			return nil
		})
	}
	return folders
}

// ignored reports whether p lies in an output directory.
func (w *Watcher) ignored(p string) bool {
	for _, out := range []string{w.cfg.PublicPath(), w.cfg.OriginalsPath(), w.cfg.MediumPath()} {
		if p == out || strings.HasPrefix(p, out+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Start begins monitoring all configured folders
func (w *Watcher) Start() error {
	folders := w.Folders()
	if len(folders) == 0 {
		return fmt.Errorf("no folders to watch under %s", w.cfg.Site.Dir)
	}

	for _, folder := range folders {
		if err := w.watcher.Add(folder); err != nil {
			return fmt.Errorf("failed to watch folder %s: %w", folder, err)
		}
		log.Debugf("watching folder: %s", folder)
	}
	log.Infof("watching %d folders for changes", len(folders))

	go w.processEvents()

	return nil
}

// processEvents handles fsnotify events and converts them to our event type
func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			base := filepath.Base(ev.Name)
			// Skip hidden, editor and in-flight thumbnail files
			if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
				continue
			}
			if w.ignored(ev.Name) {
				continue
			}

			if ev.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.watcher.Add(ev.Name); err != nil {
						log.Warnf("failed to watch new folder %s: %s", ev.Name, err)
					}
					continue
				}
			}

			w.schedule(ev)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("watcher error: %s", err)
		}
	}
}

// schedule debounces ev: only the last event for a path within the window is handled.
func (w *Watcher) schedule(ev fsnotify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, exists := w.pending[ev.Name]; exists {
		timer.Stop()
	}

	w.pending[ev.Name] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, ev.Name)
		w.mu.Unlock()
		w.handleEvent(ev)
	})
}

// Classify returns what a change to path requires.
func (w *Watcher) Classify(path string) Kind {
	if filepath.Dir(path) == w.cfg.ArtworkPath() && thumbs.IsImageName(path) {
		return KindArtwork
	}
	return KindSource
}

// handleEvent processes a single file event
func (w *Watcher) handleEvent(ev fsnotify.Event) {
	var eventType EventType

	switch {
	case ev.Op&fsnotify.Create == fsnotify.Create:
		eventType = EventCreated
	case ev.Op&fsnotify.Write == fsnotify.Write:
		eventType = EventModified
	case ev.Op&fsnotify.Remove == fsnotify.Remove, ev.Op&fsnotify.Rename == fsnotify.Rename:
		eventType = EventDeleted
	default:
		return // Ignore chmod
	}

	out := Event{Type: eventType, Kind: w.Classify(ev.Name), FilePath: ev.Name}
	log.Debugf("%s %s: %s", out.Kind, out.Type, out.FilePath)

	select {
	case <-w.done:
	case w.events <- out:
	}
}

// Events returns the event channel
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop stops the watcher. Pending debounced events are dropped.
func (w *Watcher) Stop() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.mu.Lock()
		for name, timer := range w.pending {
			timer.Stop()
			delete(w.pending, name)
		}
		w.mu.Unlock()
		err = w.watcher.Close()
	})
	return err
}
