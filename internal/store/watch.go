package store

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Watch invokes onChange whenever the events file is written, created, or
// renamed into place. It watches the parent directory because Save replaces
// the file by rename, which would orphan a watch on the file itself. Watch
// blocks until ctx is canceled.
func (s *FileStore) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(s.Path)
	if err = watcher.Add(dir); err != nil {
		return err
	}
	target := filepath.Clean(s.Path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				onChange()
			}
		case errWatch, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnf("store: watch %s: %v", dir, errWatch)
		}
	}
}
