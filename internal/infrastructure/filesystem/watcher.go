package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"ccview.dev/cli/internal/application/ports"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a path must stay quiet before a change is reported
const DefaultDebounce = 300 * time.Millisecond

// Watcher reports debounced changes to configuration files using fsnotify.
// It implements ports.ConfigWatcher.
type Watcher struct {
	debounce time.Duration
	logger   ports.LoggingGateway
}

// WatcherOption configures a Watcher
type WatcherOption func(*Watcher)

// WithDebounce overrides the per-path debounce interval
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// NewWatcher creates a new configuration watcher
func NewWatcher(logger ports.LoggingGateway, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		debounce: DefaultDebounce,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch blocks until ctx is done. Each path may be a file or a directory;
// files are watched through their parent directory so that editors that
// replace files on save are still seen. Directories are watched recursively.
// A path that does not exist yet is watched through its nearest existing
// ancestor and picked up once it is created, as a file or a directory.
func (w *Watcher) Watch(ctx context.Context, paths []string, onChange func(ports.ChangeEvent)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	s := &watchState{
		fw:      fw,
		files:   make(map[string]bool),
		trees:   make([]string, 0),
		pending: make(map[string]bool),
		watched: make(map[string]bool),
		logger:  w.logger,
	}
	for _, path := range paths {
		s.register(filepath.Clean(path))
	}
	if len(s.watched) == 0 {
		w.log(ports.LogLevelWarn, "No configuration locations exist to watch", nil)
	}

	fired := make(chan string)
	var mu sync.Mutex
	timers := make(map[string]*time.Timer)
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()

	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := timers[path]; ok {
			t.Reset(w.debounce)
			return
		}
		timers[path] = time.AfterFunc(w.debounce, func() {
			mu.Lock()
			delete(timers, path)
			mu.Unlock()
			select {
			case fired <- path:
			case <-ctx.Done():
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			name := filepath.Clean(ev.Name)
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(name); err == nil && info.IsDir() {
					// Files may land in a new directory before it is watched
					for _, path := range s.created(name) {
						schedule(path)
					}
					continue
				}
			}
			if ev.Op == fsnotify.Chmod || !s.relevant(name) {
				continue
			}
			schedule(name)
		case path := <-fired:
			change := ports.ChangeEvent{Path: path, Type: ports.ChangeModify, Time: time.Now()}
			if _, err := os.Stat(path); err != nil {
				change.Type = ports.ChangeDelete
			}
			w.log(ports.LogLevelDebug, "Configuration file changed", map[string]interface{}{
				"path":        change.Path,
				"change_type": string(change.Type),
			})
			onChange(change)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			if w.logger != nil {
				w.logger.LogError(err, "File watcher error", nil)
			}
		}
	}
}

func (w *Watcher) log(level ports.LogLevel, msg string, fields map[string]interface{}) {
	if w.logger != nil {
		w.logger.Log(level, msg, fields)
	}
}

type watchState struct {
	fw      *fsnotify.Watcher
	files   map[string]bool
	trees   []string
	pending map[string]bool
	watched map[string]bool
	logger  ports.LoggingGateway
}

func (s *watchState) register(path string) {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		delete(s.pending, path)
		if !s.isTree(path) {
			s.trees = append(s.trees, path)
		}
		s.addTree(path)
	case err == nil:
		delete(s.pending, path)
		s.files[path] = true
		s.add(filepath.Dir(path))
	default:
		s.pending[path] = true
		s.files[path] = true
		s.add(existingAncestor(filepath.Dir(path)))
	}
}

// created handles a new directory and returns the configuration files
// already inside it
func (s *watchState) created(dir string) []string {
	if s.inTree(dir) {
		s.addTree(dir)
		return configFilesUnder(dir)
	}

	var found []string
	for path := range s.pending {
		if path != dir && !strings.HasPrefix(path, dir+string(filepath.Separator)) {
			continue
		}
		s.register(path)
		if s.pending[path] {
			continue
		}
		if s.isTree(path) {
			found = append(found, configFilesUnder(path)...)
		} else {
			found = append(found, path)
		}
	}
	return found
}

func (s *watchState) isTree(path string) bool {
	for _, root := range s.trees {
		if root == path {
			return true
		}
	}
	return false
}

func existingAncestor(dir string) string {
	for {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

func configFilesUnder(root string) []string {
	var files []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() && IsConfigFile(path) {
			files = append(files, path)
		}
		return nil
	})
	return files
}

func (s *watchState) addTree(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			s.add(path)
		}
		return nil
	})
}

func (s *watchState) add(dir string) {
	if s.watched[dir] {
		return
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return
	}
	if err := s.fw.Add(dir); err != nil {
		if s.logger != nil {
			s.logger.LogError(err, "Failed to watch directory", map[string]interface{}{"dir": dir})
		}
		return
	}
	s.watched[dir] = true
}

func (s *watchState) inTree(path string) bool {
	for _, root := range s.trees {
		if strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (s *watchState) relevant(path string) bool {
	if s.files[path] {
		return true
	}
	return s.inTree(path) && IsConfigFile(path)
}
