package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/bilgisen/folio/internal/logger"
	"github.com/bilgisen/folio/internal/storage"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ChangeHandler receives the distinct paths changed during one quiet period
type ChangeHandler func(paths []string)

// Watcher watches content directories and reports markdown changes after they settle
type Watcher struct {
	fs       *fsnotify.Watcher
	delay    time.Duration
	onChange ChangeHandler
	log      zerolog.Logger
}

func New(delay time.Duration, onChange ChangeHandler) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		fs:       fsw,
		delay:    delay,
		onChange: onChange,
		log:      logger.Component("watcher"),
	}, nil
}

// Add starts watching dir (not recursive)
func (w *Watcher) Add(dir string) error {
	if err := w.fs.Add(filepath.Clean(dir)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.log.Info().Str("dir", dir).Msg("Watching content directory")
	return nil
}

// Run processes events until ctx is done or the watcher is closed
func (w *Watcher) Run(ctx context.Context) {
	pending := make(map[string]struct{})
	timer := time.NewTimer(w.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			pending[event.Name] = struct{}{}
			timer.Reset(w.delay)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("File watcher error")

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = make(map[string]struct{})

			w.log.Info().Strs("paths", paths).Msg("Content changed")
			w.onChange(paths)
		}
	}
}

// Close releases the underlying watcher
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	return storage.IsMarkdown(event.Name)
}
