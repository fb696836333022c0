package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/planline/planline/internal/event"
)

func tempStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "data", "events.json"))
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	s := tempStore(t)
	events := s.Load()
	if events == nil {
		t.Fatal("Load returned nil, want empty slice")
	}
	if len(events) != 0 {
		t.Fatalf("Load on missing file = %v, want empty", events)
	}
}

func TestLoad_CorruptFileIsEmpty(t *testing.T) {
	s := tempStore(t)
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if events := s.Load(); len(events) != 0 {
		t.Fatalf("Load on corrupt file = %v, want empty", events)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := tempStore(t)
	want := []event.Event{
		{ID: "e1", Title: "Standup", Time: "09:00", Duration: 15},
		{ID: "e2", Title: "Lunch", Time: "12:00", Duration: 60},
	}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got := s.Load()
	if len(got) != len(want) {
		t.Fatalf("Load returned %d events, want %d", len(got), len(want))
	}
	byID := make(map[string]event.Event, len(got))
	for _, e := range got {
		byID[e.ID] = e
	}
	for _, w := range want {
		g, ok := byID[w.ID]
		if !ok {
			t.Fatalf("event %s missing after round trip", w.ID)
		}
		if g != w {
			t.Errorf("event %s = %+v, want %+v", w.ID, g, w)
		}
	}
}

func TestSave_IsStableOnUnchangedCollection(t *testing.T) {
	s := tempStore(t)
	events := []event.Event{{ID: "e1", Title: "Standup", Time: "09:00", Duration: 15}}
	if err := s.Save(events); err != nil {
		t.Fatalf("Save: %v", err)
	}
	first, err := os.ReadFile(s.Path)
	if err != nil {
		t.Fatal(err)
	}
	if err = s.Save(s.Load()); err != nil {
		t.Fatalf("Save(Load()): %v", err)
	}
	second, err := os.ReadFile(s.Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Error("save(load()) changed the persisted bytes")
	}
}

func TestSave_LastWriterWins(t *testing.T) {
	s := tempStore(t)
	base := []event.Event{{ID: "e1", Title: "Standup", Time: "09:00", Duration: 15}}
	if err := s.Save(base); err != nil {
		t.Fatal(err)
	}

	// Two writers race against the same stale snapshot: each appends its own
	// event and saves the whole collection. The second save overwrites the
	// first entirely; losing the earlier update is the documented contract.
	staleA := append([]event.Event{}, base...)
	staleB := append([]event.Event{}, base...)
	if err := s.Save(append(staleA, event.Event{ID: "a", Title: "A", Time: "10:00", Duration: 30})); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(append(staleB, event.Event{ID: "b", Title: "B", Time: "11:00", Duration: 30})); err != nil {
		t.Fatal(err)
	}

	got := s.Load()
	if len(got) != 2 {
		t.Fatalf("expected 2 events after racing saves, got %d", len(got))
	}
	for _, e := range got {
		if e.ID == "a" {
			t.Error("earlier racing save survived; expected last writer to win")
		}
	}
}

func TestSave_FailureSurfaces(t *testing.T) {
	dir := t.TempDir()
	// Make the target path a directory so the rename cannot succeed.
	path := filepath.Join(dir, "events.json")
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
	s := NewFileStore(path)
	if err := s.Save([]event.Event{{ID: "x", Title: "X", Time: "09:00", Duration: 1}}); err == nil {
		t.Fatal("Save over a directory should fail")
	}
}

func TestWatch_SignalsOnSave(t *testing.T) {
	s := tempStore(t)
	if err := s.Save(nil); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	changed := make(chan struct{}, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Watch(ctx, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher a moment to register before mutating.
	time.Sleep(100 * time.Millisecond)
	if err := s.Save([]event.Event{{ID: "e1", Title: "Standup", Time: "09:00", Duration: 15}}); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-ctx.Done():
		t.Fatal("watch did not observe the save")
	}
	cancel()
	<-done
}
