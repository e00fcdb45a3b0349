package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/robottwo/chatline/pkg/debounce"
	"github.com/robottwo/chatline/pkg/richtext"
)

const defaultReloadDelay = 100 * time.Millisecond

// Watcher reloads the catalog file whenever it changes on disk and hands
// the new user list to onChange.
type Watcher struct {
	path     string
	logger   *zap.Logger
	onChange func([]richtext.User)
	delay    time.Duration
	watcher  *fsnotify.Watcher
}

// NewWatcher watches the directory holding path, since editors commonly
// replace a file by renaming over it.
func NewWatcher(path string, logger *zap.Logger, onChange func([]richtext.User)) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	path, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user catalog path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	return &Watcher{
		path:     path,
		logger:   logger,
		onChange: onChange,
		delay:    defaultReloadDelay,
		watcher:  fw,
	}, nil
}

// Run blocks, reloading on change, until ctx is done or Close is called.
// A reload still pending when Run returns is dropped.
func (w *Watcher) Run(ctx context.Context) {
	reload, cancelReload := debounce.Debounce(w.delay, w.reload)
	defer cancelReload()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
				w.logger.Debug("user catalog changed", zap.String("path", w.path), zap.Stringer("op", ev.Op))
				reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("user catalog watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	users, err := Load(w.path)
	if err != nil {
		w.logger.Warn("user catalog reloaded with errors", zap.Error(err))
		if users == nil {
			return
		}
	}
	w.logger.Info("user catalog reloaded", zap.String("path", w.path), zap.Int("count", len(users)))
	w.onChange(users)
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}
