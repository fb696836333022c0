package event

import (
	"strings"
	"testing"
)

func TestValidTime(t *testing.T) {
	valid := []string{"00:00", "09:00", "12:30", "23:59"}
	for _, s := range valid {
		if !ValidTime(s) {
			t.Errorf("ValidTime(%q) = false, want true", s)
		}
	}
	invalid := []string{"24:00", "9:60", "09:60", "abc", "", "9:00", "12:5", "12:345"}
	for _, s := range invalid {
		if ValidTime(s) {
			t.Errorf("ValidTime(%q) = true, want false", s)
		}
	}
}

func TestValidDuration(t *testing.T) {
	for _, d := range []int{1, 15, 1440} {
		if !ValidDuration(d) {
			t.Errorf("ValidDuration(%d) = false, want true", d)
		}
	}
	for _, d := range []int{0, -1, -30} {
		if ValidDuration(d) {
			t.Errorf("ValidDuration(%d) = true, want false", d)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Validate("Standup", "09:00", 15); err != nil {
		t.Fatalf("Validate valid event: %v", err)
	}
	cases := []struct {
		name     string
		title    string
		clock    string
		duration int
	}{
		{"empty title", "", "09:00", 15},
		{"whitespace title", "   ", "09:00", 15},
		{"bad time", "Standup", "24:00", 15},
		{"zero duration", "Standup", "09:00", 0},
		{"negative duration", "Standup", "09:00", -5},
	}
	for _, tc := range cases {
		if err := Validate(tc.title, tc.clock, tc.duration); err == nil {
			t.Errorf("%s: Validate returned nil, want error", tc.name)
		}
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewID()
		if id == "" {
			t.Fatal("NewID returned empty string")
		}
		if _, ok := seen[id]; ok {
			t.Fatalf("NewID produced duplicate %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestSortByTime(t *testing.T) {
	events := []Event{
		{ID: "a", Title: "Lunch", Time: "12:00", Duration: 60},
		{ID: "b", Title: "Standup", Time: "09:00", Duration: 15},
		{ID: "c", Title: "Review", Time: "16:30", Duration: 30},
	}
	SortByTime(events)
	if events[0].ID != "b" || events[1].ID != "a" || events[2].ID != "c" {
		t.Errorf("unexpected order: %v", events)
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(nil); got != "No events scheduled" {
		t.Errorf("Describe(nil) = %q", got)
	}
	events := []Event{
		{ID: "a", Title: "Lunch", Time: "12:00", Duration: 60},
		{ID: "b", Title: "Standup", Time: "09:00", Duration: 15},
	}
	got := Describe(events)
	want := "Standup at 09:00 for 15 minutes, Lunch at 12:00 for 60 minutes"
	if got != want {
		t.Errorf("Describe = %q, want %q", got, want)
	}
	// Describe must not reorder the caller's slice.
	if events[0].ID != "a" {
		t.Error("Describe mutated input order")
	}
	if strings.Contains(got, "No events") {
		t.Error("non-empty collection described as empty")
	}
}
