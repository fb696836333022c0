// Package store persists the event collection as a single JSON document.
// The store is the sole owner of durable state: every load and save operates
// on the whole collection, the last completed save wins, and read failures
// fail open to an empty collection.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/planline/planline/internal/event"
)

// FileStore reads and writes the event collection at a fixed path.
type FileStore struct {
	Path string
}

// NewFileStore creates a store backed by the JSON document at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load returns the persisted collection. A missing file or undecodable
// content yields an empty collection rather than an error; corrupt state must
// never take the assistant down.
func (s *FileStore) Load() []event.Event {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("store: read %s: %v", s.Path, err)
		}
		return []event.Event{}
	}
	var events []event.Event
	if err = json.Unmarshal(data, &events); err != nil {
		log.Warnf("store: decode %s: %v", s.Path, err)
		return []event.Event{}
	}
	if events == nil {
		events = []event.Event{}
	}
	return events
}

// Save atomically overwrites the persisted collection. Unlike Load, a failed
// write surfaces to the caller so the attempted mutation can be reported as
// failed. Concurrent saves are unordered; the last rename wins.
func (s *FileStore) Save(events []event.Event) error {
	if events == nil {
		events = []event.Event{}
	}
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}

	// Write to temp file then rename for atomicity.
	tmpPath := s.Path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err = f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err = os.Rename(tmpPath, s.Path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
