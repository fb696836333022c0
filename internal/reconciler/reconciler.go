// Package reconciler keeps a local copy of the event collection loosely in
// sync with the authoritative store. The cache is read-mostly: it refreshes
// wholesale on a fixed interval, accepts optimistic local mutations, and is
// never treated as authoritative.
package reconciler

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	apperrors "github.com/planline/planline/internal/errors"
	"github.com/planline/planline/internal/event"
)

// EventsAPI is the remote store surface the reconciler syncs against.
type EventsAPI interface {
	FetchEvents(ctx context.Context) ([]event.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	UpdateEventTime(ctx context.Context, id, newTime string) error
}

// EventUpdate carries the optional fields of a local edit. Nil fields are
// left untouched.
type EventUpdate struct {
	Title    *string
	Time     *string
	Duration *int
}

// Reconciler maintains the polled local cache.
type Reconciler struct {
	api      EventsAPI
	interval time.Duration

	mu      sync.Mutex
	events  []event.Event
	running bool
	cancel  context.CancelFunc
}

// New creates a reconciler polling the given API. interval <= 0 defaults to
// five seconds.
func New(api EventsAPI, interval time.Duration) *Reconciler {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Reconciler{api: api, interval: interval}
}

// Start refreshes immediately and then begins the background polling loop.
// If already running, this is a no-op.
func (r *Reconciler) Start() {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.mu.Unlock()

	r.Refresh(ctx)
	go r.loop(ctx)
}

// Stop cancels the polling loop. Safe to call multiple times.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	if r.cancel != nil {
		r.cancel()
	}
	r.running = false
}

// IsRunning reports whether the polling loop is active.
func (r *Reconciler) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Reconciler) loop(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Debug("reconciler: polling stopped")
			return
		case <-ticker.C:
			r.Refresh(ctx)
		}
	}
}

// Refresh reloads from the store, replacing the local cache wholesale. A
// fetch failure fails open to an empty collection, matching the store's own
// read contract.
func (r *Reconciler) Refresh(ctx context.Context) {
	events, err := r.api.FetchEvents(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Warnf("reconciler: refresh failed: %v", err)
		}
		events = []event.Event{}
	}
	if events == nil {
		events = []event.Event{}
	}
	r.mu.Lock()
	r.events = events
	r.mu.Unlock()
}

// Events returns a copy of the cached collection.
func (r *Reconciler) Events() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.Event, len(r.events))
	copy(out, r.events)
	return out
}

// AddEvent validates the fields locally and optimistically appends the new
// event to the cache. The validation rules are the same ones the server
// applies; invalid input fails before any mutation.
func (r *Reconciler) AddEvent(title, clock string, duration int) (event.Event, error) {
	if err := event.Validate(title, clock, duration); err != nil {
		return event.Event{}, apperrors.NewValidation(err.Error())
	}
	e := event.Event{ID: event.NewID(), Title: title, Time: clock, Duration: duration}
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return e, nil
}

// EditEvent merges the supplied fields into the cached event. The edit is
// purely optimistic-local: it is not persisted, and the next poll cycle will
// overwrite it with whatever the store holds. Unknown ids are a no-op.
func (r *Reconciler) EditEvent(id string, updates EventUpdate) error {
	if updates.Time != nil && !event.ValidTime(*updates.Time) {
		return apperrors.NewValidation("time is not a valid HH:MM clock string")
	}
	if updates.Duration != nil && !event.ValidDuration(*updates.Duration) {
		return apperrors.NewValidation("duration must be at least 1 minute")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.events {
		if r.events[i].ID != id {
			continue
		}
		if updates.Title != nil {
			r.events[i].Title = *updates.Title
		}
		if updates.Time != nil {
			r.events[i].Time = *updates.Time
		}
		if updates.Duration != nil {
			r.events[i].Duration = *updates.Duration
		}
	}
	return nil
}

// DeleteEvent asks the store to remove the event and drops it from the cache
// only on confirmed success. Failures are logged, not returned: from the
// view's perspective delete is best-effort, and the untouched cache keeps the
// display honest.
func (r *Reconciler) DeleteEvent(ctx context.Context, id string) {
	if err := r.api.DeleteEvent(ctx, id); err != nil {
		log.Warnf("reconciler: delete %s failed: %v", id, err)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.events[:0]
	for _, e := range r.events {
		if e.ID != id {
			next = append(next, e)
		}
	}
	r.events = next
}

// UpdateEventTime issues a time-only patch against the store and mirrors the
// change locally on success.
func (r *Reconciler) UpdateEventTime(ctx context.Context, id, newTime string) error {
	if !event.ValidTime(newTime) {
		return apperrors.NewValidation("time is not a valid HH:MM clock string")
	}
	if err := r.api.UpdateEventTime(ctx, id, newTime); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.events {
		if r.events[i].ID == id {
			r.events[i].Time = newTime
		}
	}
	return nil
}
