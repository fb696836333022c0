// Package event defines the schedule entry model shared by the store, the
// command interpreter, the HTTP surface, and the reconciler. Validation rules
// live here so that client-side and server-side checks cannot drift apart.
package event

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event is a single titled, timed, duration-bound entry for the current day.
type Event struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Time     string `json:"time"`
	Duration int    `json:"duration"`
}

// timePattern matches zero-padded 24-hour HH:MM clock strings.
var timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidTime reports whether s is a zero-padded 24-hour HH:MM clock string.
func ValidTime(s string) bool {
	return timePattern.MatchString(s)
}

// ValidDuration reports whether d is a positive number of minutes.
func ValidDuration(d int) bool {
	return d >= 1
}

// Validate checks the event fields an addEvent submission must carry.
func Validate(title, clock string, duration int) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title must not be empty")
	}
	if !ValidTime(clock) {
		return fmt.Errorf("time %q is not a valid HH:MM clock string", clock)
	}
	if !ValidDuration(duration) {
		return fmt.Errorf("duration must be at least 1 minute, got %d", duration)
	}
	return nil
}

// NewID generates an opaque event identifier from a base-36 nanosecond
// timestamp and a random suffix. No global coordination is needed: the
// timestamp component makes same-process collisions implausible and the
// random suffix covers clock ties.
func NewID() string {
	return strconv.FormatInt(time.Now().UnixNano(), 36) + "-" + uuid.NewString()[:8]
}

// SortByTime orders events chronologically for display. Lexicographic
// comparison of zero-padded HH:MM strings is order-equivalent to clock order
// within a single day.
func SortByTime(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time < events[j].Time
	})
}

// Describe renders the collection as prose for the assistant's context and
// for getEvents narration.
func Describe(events []Event) string {
	if len(events) == 0 {
		return "No events scheduled"
	}
	sorted := make([]Event, len(events))
	copy(sorted, events)
	SortByTime(sorted)
	parts := make([]string, 0, len(sorted))
	for _, e := range sorted {
		parts = append(parts, fmt.Sprintf("%s at %s for %d minutes", e.Title, e.Time, e.Duration))
	}
	return strings.Join(parts, ", ")
}
