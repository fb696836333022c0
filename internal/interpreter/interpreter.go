// Package interpreter translates the assistant's structured function calls
// into event-collection mutations. Apply is pure with respect to I/O: it
// takes the current collection and returns the new one, leaving persistence
// to the caller.
package interpreter

import (
	"fmt"

	"github.com/tidwall/gjson"

	apperrors "github.com/planline/planline/internal/errors"
	"github.com/planline/planline/internal/event"
)

// Function-call operation names advertised to the assistant.
const (
	OpAddEvent    = "addEvent"
	OpEditEvent   = "editEvent"
	OpDeleteEvent = "deleteEvent"
	OpGetEvents   = "getEvents"
)

// Result is the outcome of a successfully interpreted function call.
type Result struct {
	// Message is the prose confirmation fed back into the conversation.
	Message string
	// Events is the collection after applying the call.
	Events []event.Event
	// Mutated reports whether Events differs from the input collection and
	// therefore needs to be persisted.
	Mutated bool
}

// Apply validates and executes the named function call against the given
// collection. rawArgs must be a complete JSON object; callers accumulating
// streamed fragments must run them through ArgumentAccumulator first.
// Unknown names return an UNSUPPORTED_OPERATION error; missing or malformed
// fields return a VALIDATION_ERROR. Neither partially applies anything.
func Apply(name, rawArgs string, events []event.Event) (Result, error) {
	if rawArgs == "" {
		rawArgs = "{}"
	}
	if !gjson.Valid(rawArgs) {
		return Result{}, apperrors.NewValidation("function arguments are not valid JSON")
	}
	args := gjson.Parse(rawArgs)

	switch name {
	case OpAddEvent:
		return applyAdd(args, events)
	case OpEditEvent:
		return applyEdit(args, events)
	case OpDeleteEvent:
		return applyDelete(args, events)
	case OpGetEvents:
		return Result{Message: describeSchedule(events), Events: events}, nil
	default:
		return Result{}, apperrors.NewUnsupportedOperation(name)
	}
}

func applyAdd(args gjson.Result, events []event.Event) (Result, error) {
	title := args.Get("title").String()
	clock := args.Get("time").String()
	duration := int(args.Get("duration").Int())
	if err := event.Validate(title, clock, duration); err != nil {
		return Result{}, apperrors.NewValidation(err.Error())
	}

	next := append(cloneEvents(events), event.Event{
		ID:       event.NewID(),
		Title:    title,
		Time:     clock,
		Duration: duration,
	})
	return Result{
		Message: fmt.Sprintf("Added event %q at %s for %d minutes.", title, clock, duration),
		Events:  next,
		Mutated: true,
	}, nil
}

func applyEdit(args gjson.Result, events []event.Event) (Result, error) {
	id := args.Get("id").String()
	if id == "" {
		return Result{}, apperrors.NewValidation("editEvent requires an event id")
	}
	if clock := args.Get("time"); clock.Exists() && !event.ValidTime(clock.String()) {
		return Result{}, apperrors.NewValidation(fmt.Sprintf("time %q is not a valid HH:MM clock string", clock.String()))
	}
	if d := args.Get("duration"); d.Exists() && !event.ValidDuration(int(d.Int())) {
		return Result{}, apperrors.NewValidation("duration must be at least 1 minute")
	}

	// Editing an unknown id is a silent no-op, not an error.
	next := cloneEvents(events)
	mutated := false
	for i := range next {
		if next[i].ID != id {
			continue
		}
		if title := args.Get("title"); title.Exists() {
			next[i].Title = title.String()
		}
		if clock := args.Get("time"); clock.Exists() {
			next[i].Time = clock.String()
		}
		if d := args.Get("duration"); d.Exists() {
			next[i].Duration = int(d.Int())
		}
		mutated = true
	}
	return Result{
		Message: fmt.Sprintf("Updated event %s successfully.", id),
		Events:  next,
		Mutated: mutated,
	}, nil
}

func applyDelete(args gjson.Result, events []event.Event) (Result, error) {
	id := args.Get("id").String()
	if id == "" {
		return Result{}, apperrors.NewValidation("deleteEvent requires an event id")
	}

	// Deleting an unknown id reports success and changes nothing.
	next := make([]event.Event, 0, len(events))
	mutated := false
	for _, e := range events {
		if e.ID == id {
			mutated = true
			continue
		}
		next = append(next, e)
	}
	return Result{
		Message: fmt.Sprintf("Deleted event %s successfully.", id),
		Events:  next,
		Mutated: mutated,
	}, nil
}

func describeSchedule(events []event.Event) string {
	if len(events) == 0 {
		return "You have no events scheduled."
	}
	return "Here is your current schedule: " + event.Describe(events) + "."
}

// Apology converts an interpreter failure into the user-facing string the
// conversation shows in place of a raw fault.
func Apology(err error) string {
	return fmt.Sprintf("Sorry, I couldn't create the event: %v", err)
}

func cloneEvents(events []event.Event) []event.Event {
	next := make([]event.Event, len(events))
	copy(next, events)
	return next
}
