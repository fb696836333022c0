// Package chat mediates between inbound user messages, the language-model
// provider, and the command interpreter. Every turn gets a freshly generated
// system message describing the current schedule, so the assistant never
// reasons about stale state across mutations.
package chat

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	apperrors "github.com/planline/planline/internal/errors"
	"github.com/planline/planline/internal/event"
	"github.com/planline/planline/internal/interpreter"
	"github.com/planline/planline/internal/provider"
)

// Provider is the language-model capability the orchestrator drives.
type Provider interface {
	ChatCompletion(ctx context.Context, messages []provider.Message) (provider.Completion, error)
	ChatCompletionStream(ctx context.Context, messages []provider.Message) (<-chan provider.StreamChunk, error)
}

// Store is the authoritative event collection.
type Store interface {
	Load() []event.Event
	Save([]event.Event) error
}

// Orchestrator turns a conversation history into an assistant reply,
// executing any function call the assistant emits along the way.
type Orchestrator struct {
	store    Store
	provider Provider
}

// NewOrchestrator wires the orchestrator to its store and provider.
func NewOrchestrator(store Store, prov Provider) *Orchestrator {
	return &Orchestrator{store: store, provider: prov}
}

// SystemPrompt renders the schedule-aware instructions injected as the
// leading system message of every turn. The previous turn's system content is
// never kept; it is regenerated from the collection each time.
func SystemPrompt(events []event.Event) string {
	return fmt.Sprintf(`You are a helpful time management assistant. Your role is to help manage the user's schedule.
Current schedule: %s

You can:
1. Add new events to the timeline
2. Edit existing events
3. Delete events from the timeline

Please be concise and professional in your responses.`, event.Describe(events))
}

func (o *Orchestrator) withSystem(history []provider.Message) []provider.Message {
	events := o.store.Load()
	messages := make([]provider.Message, 0, len(history)+1)
	messages = append(messages, provider.Message{Role: provider.RoleSystem, Content: SystemPrompt(events)})
	return append(messages, history...)
}

// Complete runs one non-streaming turn over the given history (user and
// assistant messages only; the system message is injected here). The reply is
// always prose: a function call is executed and replaced by its confirmation
// string, and an unsupported or invalid call becomes an apology rather than a
// fault.
func (o *Orchestrator) Complete(ctx context.Context, history []provider.Message) (string, error) {
	completion, err := o.provider.ChatCompletion(ctx, o.withSystem(history))
	if err != nil {
		return "", apperrors.NewTransport(err)
	}
	if completion.FunctionCall != nil {
		return o.dispatch(completion.FunctionCall.Name, completion.FunctionCall.Arguments)
	}
	return completion.Content, nil
}

// CompleteStream runs one streaming turn. Text deltas are forwarded to
// onDelta as they arrive; function-call argument fragments are accumulated
// and only parsed once the provider signals completion, after which the
// confirmation string is forwarded as the terminal delta. The full reply is
// returned either way.
func (o *Orchestrator) CompleteStream(ctx context.Context, history []provider.Message, onDelta func(string)) (string, error) {
	stream, err := o.provider.ChatCompletionStream(ctx, o.withSystem(history))
	if err != nil {
		return "", apperrors.NewTransport(err)
	}

	var text string
	var acc interpreter.ArgumentAccumulator
	for chunk := range stream {
		if chunk.Err != nil {
			return "", apperrors.NewTransport(chunk.Err)
		}
		if chunk.FunctionName != "" {
			if !acc.Active() {
				acc.Begin(chunk.FunctionName)
			} else {
				acc.SetName(chunk.FunctionName)
			}
		}
		if chunk.ArgumentsDelta != "" {
			acc.Append(chunk.ArgumentsDelta)
		}
		if chunk.ContentDelta != "" {
			text += chunk.ContentDelta
			if onDelta != nil {
				onDelta(chunk.ContentDelta)
			}
		}
	}

	if acc.Active() {
		raw, errComplete := acc.Complete()
		if errComplete != nil {
			log.Warnf("chat: malformed streamed function call %q: %v", acc.Name(), errComplete)
			reply := interpreter.Apology(errComplete)
			if onDelta != nil {
				onDelta(reply)
			}
			return reply, nil
		}
		reply, errDispatch := o.dispatch(acc.Name(), raw)
		if errDispatch != nil {
			return "", errDispatch
		}
		if onDelta != nil {
			onDelta(reply)
		}
		return reply, nil
	}
	return text, nil
}

// dispatch executes a complete function call against the current collection
// and persists the result. Interpreter rejections become apology prose; a
// failed save is fatal for the operation and propagates.
func (o *Orchestrator) dispatch(name, rawArgs string) (string, error) {
	events := o.store.Load()
	res, err := interpreter.Apply(name, rawArgs, events)
	if err != nil {
		log.Infof("chat: function call %s rejected: %v", name, err)
		return interpreter.Apology(err), nil
	}
	if res.Mutated {
		if err = o.store.Save(res.Events); err != nil {
			return "", apperrors.NewPersistence(err)
		}
	}
	log.Debugf("chat: function call %s applied, %d events", name, len(res.Events))
	return res.Message, nil
}
