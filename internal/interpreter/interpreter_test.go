package interpreter

import (
	"strings"
	"testing"

	apperrors "github.com/planline/planline/internal/errors"
	"github.com/planline/planline/internal/event"
)

func TestApply_AddEvent(t *testing.T) {
	res, err := Apply(OpAddEvent, `{"title":"Standup","time":"09:00","duration":15}`, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Message != `Added event "Standup" at 09:00 for 15 minutes.` {
		t.Errorf("message = %q", res.Message)
	}
	if !res.Mutated {
		t.Error("addEvent should report a mutation")
	}
	if len(res.Events) != 1 {
		t.Fatalf("got %d events, want 1", len(res.Events))
	}
	e := res.Events[0]
	if e.ID == "" {
		t.Error("new event has no id")
	}
	if e.Title != "Standup" || e.Time != "09:00" || e.Duration != 15 {
		t.Errorf("event = %+v", e)
	}
}

func TestApply_AddEvent_GrowsByOneWithFreshID(t *testing.T) {
	existing := []event.Event{{ID: "e1", Title: "Lunch", Time: "12:00", Duration: 60}}
	res, err := Apply(OpAddEvent, `{"title":"Review","time":"16:30","duration":30}`, existing)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Events) != len(existing)+1 {
		t.Fatalf("got %d events, want %d", len(res.Events), len(existing)+1)
	}
	if len(existing) != 1 {
		t.Error("input collection was mutated")
	}
	for _, e := range res.Events[:len(res.Events)-1] {
		if e.ID == res.Events[len(res.Events)-1].ID {
			t.Error("new event reused an existing id")
		}
	}
}

func TestApply_AddEvent_Validation(t *testing.T) {
	cases := []struct {
		name string
		args string
	}{
		{"missing title", `{"time":"09:00","duration":15}`},
		{"missing time", `{"title":"X","duration":15}`},
		{"missing duration", `{"title":"X","time":"09:00"}`},
		{"bad time", `{"title":"X","time":"24:00","duration":15}`},
		{"unpadded time", `{"title":"X","time":"9:60","duration":15}`},
		{"zero duration", `{"title":"X","time":"09:00","duration":0}`},
		{"negative duration", `{"title":"X","time":"09:00","duration":-5}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Apply(OpAddEvent, tc.args, nil)
			if !apperrors.IsCode(err, apperrors.CodeValidation) {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}
}

func TestApply_EditEvent(t *testing.T) {
	events := []event.Event{{ID: "e1", Title: "Standup", Time: "09:00", Duration: 15}}
	res, err := Apply(OpEditEvent, `{"id":"e1","time":"10:30","duration":20}`, events)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Message != "Updated event e1 successfully." {
		t.Errorf("message = %q", res.Message)
	}
	if !res.Mutated {
		t.Error("matching edit should report a mutation")
	}
	got := res.Events[0]
	if got.Time != "10:30" || got.Duration != 20 || got.Title != "Standup" {
		t.Errorf("merged event = %+v", got)
	}
	if events[0].Time != "09:00" {
		t.Error("input collection was mutated")
	}
}

func TestApply_EditEvent_UnknownIDIsSilentNoop(t *testing.T) {
	events := []event.Event{{ID: "e1", Title: "Standup", Time: "09:00", Duration: 15}}
	res, err := Apply(OpEditEvent, `{"id":"missing","title":"New"}`, events)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Message != "Updated event missing successfully." {
		t.Errorf("message = %q", res.Message)
	}
	if res.Mutated {
		t.Error("edit of unknown id should not report a mutation")
	}
	if len(res.Events) != 1 || res.Events[0].Title != "Standup" {
		t.Errorf("collection changed: %+v", res.Events)
	}
}

func TestApply_EditEvent_RequiresID(t *testing.T) {
	_, err := Apply(OpEditEvent, `{"title":"New"}`, nil)
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestApply_DeleteEvent(t *testing.T) {
	events := []event.Event{{ID: "e1", Title: "Standup", Time: "09:00", Duration: 15}}
	res, err := Apply(OpDeleteEvent, `{"id":"e1"}`, events)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Message != "Deleted event e1 successfully." {
		t.Errorf("message = %q", res.Message)
	}
	if len(res.Events) != 0 {
		t.Errorf("collection = %+v, want empty", res.Events)
	}
	if !res.Mutated {
		t.Error("matching delete should report a mutation")
	}
}

func TestApply_DeleteEvent_UnknownIDIsSilentNoop(t *testing.T) {
	events := []event.Event{{ID: "e1", Title: "Standup", Time: "09:00", Duration: 15}}
	res, err := Apply(OpDeleteEvent, `{"id":"nope"}`, events)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Message != "Deleted event nope successfully." {
		t.Errorf("message = %q", res.Message)
	}
	if len(res.Events) != 1 || res.Mutated {
		t.Errorf("collection changed: %+v mutated=%v", res.Events, res.Mutated)
	}
}

func TestApply_GetEvents(t *testing.T) {
	res, err := Apply(OpGetEvents, "", nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Message != "You have no events scheduled." {
		t.Errorf("message = %q", res.Message)
	}
	if res.Mutated {
		t.Error("getEvents must not mutate")
	}

	events := []event.Event{{ID: "e1", Title: "Standup", Time: "09:00", Duration: 15}}
	res, err = Apply(OpGetEvents, "{}", events)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !strings.Contains(res.Message, "Standup at 09:00 for 15 minutes") {
		t.Errorf("message = %q", res.Message)
	}
}

func TestApply_UnknownOperation(t *testing.T) {
	events := []event.Event{{ID: "e1", Title: "Standup", Time: "09:00", Duration: 15}}
	_, err := Apply("frobnicate", "{}", events)
	if !apperrors.IsCode(err, apperrors.CodeUnsupportedOperation) {
		t.Fatalf("err = %v, want unsupported operation", err)
	}
	if len(events) != 1 {
		t.Error("collection changed on unknown operation")
	}
	if msg := Apology(err); !strings.HasPrefix(msg, "Sorry, I couldn't create the event:") {
		t.Errorf("apology = %q", msg)
	}
}

func TestApply_MalformedArguments(t *testing.T) {
	_, err := Apply(OpAddEvent, `{"title":"Standup","time`, nil)
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestAccumulator_Lifecycle(t *testing.T) {
	var acc ArgumentAccumulator
	if acc.State() != StateIdle {
		t.Fatal("accumulator should start Idle")
	}

	acc.Begin("addEvent")
	if !acc.Active() || acc.Name() != "addEvent" {
		t.Fatalf("after Begin: state=%v name=%q", acc.State(), acc.Name())
	}

	// Fragments arrive token by token; none of them parse alone.
	for _, frag := range []string{`{"title":"Stan`, `dup","time":"09:0`, `0","duration":15}`} {
		acc.Append(frag)
	}
	raw, err := acc.Complete()
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if acc.State() != StateComplete {
		t.Errorf("state = %v, want Complete", acc.State())
	}

	res, err := Apply(acc.Name(), raw, nil)
	if err != nil {
		t.Fatalf("Apply accumulated: %v", err)
	}
	if len(res.Events) != 1 || res.Events[0].Title != "Standup" {
		t.Errorf("events = %+v", res.Events)
	}
}

func TestAccumulator_MalformedCompletion(t *testing.T) {
	var acc ArgumentAccumulator
	acc.Begin("addEvent")
	acc.Append(`{"title":"Standup"`)
	if _, err := acc.Complete(); err == nil {
		t.Fatal("Complete on truncated JSON should fail")
	}
	if acc.State() != StateMalformed {
		t.Errorf("state = %v, want Malformed", acc.State())
	}

	// A malformed call is recoverable: the next Begin starts clean.
	acc.Begin("deleteEvent")
	acc.Append(`{"id":"e1"}`)
	if _, err := acc.Complete(); err != nil {
		t.Fatalf("Complete after reset: %v", err)
	}
}

func TestAccumulator_CompleteWithoutBegin(t *testing.T) {
	var acc ArgumentAccumulator
	if _, err := acc.Complete(); err == nil {
		t.Fatal("Complete without Begin should fail")
	}
}

func TestAccumulator_EmptyArgumentsDefaultToObject(t *testing.T) {
	var acc ArgumentAccumulator
	acc.Begin("getEvents")
	raw, err := acc.Complete()
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if raw != "{}" {
		t.Errorf("raw = %q, want {}", raw)
	}
}

func TestAccumulator_NameArrivesLate(t *testing.T) {
	var acc ArgumentAccumulator
	acc.Append(`{"id":`)
	acc.SetName("deleteEvent")
	acc.Append(`"e1"}`)
	raw, err := acc.Complete()
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if acc.Name() != "deleteEvent" {
		t.Errorf("name = %q", acc.Name())
	}
	if raw != `{"id":"e1"}` {
		t.Errorf("raw = %q", raw)
	}
}
