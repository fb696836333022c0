package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/planline/planline/internal/provider"
)

// TurnState is the per-conversation request lifecycle.
type TurnState int

const (
	// TurnIdle means no request is in flight.
	TurnIdle TurnState = iota
	// TurnAwaitingResponse means a turn is in flight; no new turn may start.
	TurnAwaitingResponse
	// TurnCompleted means the last turn finished with an assistant reply.
	TurnCompleted
	// TurnErrored means the last turn failed; the log is unchanged.
	TurnErrored
)

// ErrTurnInFlight is returned when Send is called while a previous turn is
// still awaiting its response.
var ErrTurnInFlight = errors.New("a chat turn is already in flight")

// Conversation is a stateful session over an Orchestrator: it owns the
// ordered message log and enforces one in-flight turn at a time.
type Conversation struct {
	orc *Orchestrator

	mu    sync.Mutex
	log   []provider.Message
	state TurnState
}

// NewConversation creates an empty conversation bound to the orchestrator.
func NewConversation(orc *Orchestrator) *Conversation {
	return &Conversation{orc: orc}
}

// Send runs one user turn and returns the assistant reply. While the turn is
// in flight the conversation is AwaitingResponse and further Sends fail with
// ErrTurnInFlight. On failure the log keeps neither the user message nor any
// partial reply, so a retry re-sends a clean turn.
func (c *Conversation) Send(ctx context.Context, text string) (string, error) {
	c.mu.Lock()
	if c.state == TurnAwaitingResponse {
		c.mu.Unlock()
		return "", ErrTurnInFlight
	}
	c.state = TurnAwaitingResponse
	history := append(c.snapshotLocked(), provider.Message{Role: provider.RoleUser, Content: text})
	c.mu.Unlock()

	reply, err := c.orc.Complete(ctx, history)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = TurnErrored
		return "", err
	}
	c.log = append(c.log,
		provider.Message{Role: provider.RoleUser, Content: text},
		provider.Message{Role: provider.RoleAssistant, Content: reply},
	)
	c.state = TurnCompleted
	return reply, nil
}

// Messages returns a copy of the conversation log.
func (c *Conversation) Messages() []provider.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// State returns the lifecycle state of the most recent turn.
func (c *Conversation) State() TurnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Conversation) snapshotLocked() []provider.Message {
	out := make([]provider.Message, len(c.log))
	copy(out, c.log)
	return out
}
