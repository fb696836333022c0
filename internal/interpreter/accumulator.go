package interpreter

import (
	"strings"

	"github.com/tidwall/gjson"

	apperrors "github.com/planline/planline/internal/errors"
)

// AccumulatorState tracks the lifecycle of a streamed function call.
type AccumulatorState int

const (
	// StateIdle means no function call is in progress.
	StateIdle AccumulatorState = iota
	// StateAccumulating means argument fragments are still arriving.
	StateAccumulating
	// StateComplete means the accumulated arguments parsed as a JSON object.
	StateComplete
	// StateMalformed means completion was signaled but the accumulated text
	// is not a JSON object.
	StateMalformed
)

// ArgumentAccumulator collects a function call's argument string as it is
// streamed token by token. The fragments in flight may be any prefix of a
// JSON object, so nothing is parsed until Complete is called; an incomplete
// fragment can never reach Apply.
type ArgumentAccumulator struct {
	state AccumulatorState
	name  string
	buf   strings.Builder
}

// Begin starts accumulation for the named function, discarding any previous
// state.
func (a *ArgumentAccumulator) Begin(name string) {
	a.Reset()
	a.name = name
	a.state = StateAccumulating
}

// Append adds an argument fragment. Appending before Begin implicitly starts
// accumulation for an unnamed call; the name can still arrive in a later
// delta via SetName.
func (a *ArgumentAccumulator) Append(fragment string) {
	if a.state == StateComplete || a.state == StateMalformed {
		a.Reset()
	}
	if a.state == StateIdle {
		a.state = StateAccumulating
	}
	a.buf.WriteString(fragment)
}

// SetName records the function name when it arrives separately from the
// argument fragments.
func (a *ArgumentAccumulator) SetName(name string) {
	if name != "" {
		a.name = name
	}
}

// Complete signals that all fragments have arrived and returns the full
// argument string. It fails if nothing was accumulated or the text is not a
// JSON object.
func (a *ArgumentAccumulator) Complete() (string, error) {
	if a.state != StateAccumulating {
		a.state = StateMalformed
		return "", apperrors.NewValidation("no function call in progress")
	}
	raw := a.buf.String()
	if raw == "" {
		raw = "{}"
	}
	if !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
		a.state = StateMalformed
		return "", apperrors.NewValidation("function arguments did not form a JSON object")
	}
	a.state = StateComplete
	return raw, nil
}

// Name returns the function name seen so far.
func (a *ArgumentAccumulator) Name() string { return a.name }

// State returns the current lifecycle state.
func (a *ArgumentAccumulator) State() AccumulatorState { return a.state }

// Active reports whether a function call is currently being accumulated.
func (a *ArgumentAccumulator) Active() bool { return a.state == StateAccumulating }

// Reset returns the accumulator to Idle.
func (a *ArgumentAccumulator) Reset() {
	a.state = StateIdle
	a.name = ""
	a.buf.Reset()
}
