package config

import (
	"log/slog"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Watcher hot-reloads the logging level from a config file without
// restarting the process: it watches the file for writes and, on each
// change, re-parses only the logging.level field and swaps the level of a
// shared *slog.LevelVar. Other config fields require a full restart to
// pick up, since they're consumed once at startup (the schema in
// particular is baked into the Monitor's bleve mappings).
type Watcher struct {
	path      string
	level     *slog.LevelVar
	fsWatcher *fsnotify.Watcher
	done      chan struct{}
	closed    atomic.Bool
}

// NewWatcher starts watching path and updates level whenever the file's
// logging.level field changes. The caller owns level and should pass it to
// slog.HandlerOptions so future log calls observe the new minimum level.
func NewWatcher(path string, level *slog.LevelVar) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(path); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:      path,
		level:     level,
		fsWatcher: fsw,
		done:      make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case _, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg := NewConfig()
	if err := cfg.loadYAML(w.path); err != nil {
		slog.Warn("config hot-reload failed, keeping current level", "path", w.path, "error", err)
		return
	}

	newLevel := parseSlogLevel(cfg.Logging.Level)
	if newLevel != w.level.Level() {
		slog.Info("log level changed via hot reload", "from", w.level.Level(), "to", newLevel)
		w.level.Set(newLevel)
	}
}

func parseSlogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	if w.closed.CompareAndSwap(false, true) {
		close(w.done)
		return w.fsWatcher.Close()
	}
	return nil
}
