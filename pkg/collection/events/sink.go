package events

import (
	"context"
	"fmt"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("collection/events")

// Sink receives emitted events.
type Sink interface {
	Emit(ctx context.Context, p Payload) error
}

// Repo persists events.
type Repo interface {
	// CreateEvent stores a new event.
	CreateEvent(ctx context.Context, event *Event) error
	// ListEvents lists events in the order they were emitted. A nil kind lists
	// every event.
	ListEvents(ctx context.Context, kind *Kind) ([]*Event, error)
}

// Log is a Sink that persists every event to a Repo.
type Log struct {
	Repo Repo
}

var _ Sink = Log{}

func (l Log) Emit(ctx context.Context, p Payload) error {
	event, err := NewEvent(p)
	if err != nil {
		return err
	}
	if err := l.Repo.CreateEvent(ctx, event); err != nil {
		return fmt.Errorf("persisting %s event: %w", event.Kind(), err)
	}
	log.Debugw("event", "id", event.ID(), "kind", event.Kind(), "payload", string(event.RawPayload()))
	return nil
}

// Recorder is a Sink that keeps events in memory.
type Recorder struct {
	Events []Payload
}

var _ Sink = (*Recorder)(nil)

func (r *Recorder) Emit(_ context.Context, p Payload) error {
	r.Events = append(r.Events, p)
	return nil
}

// Multi fans an event out to several sinks, stopping at the first error.
type Multi []Sink

func (m Multi) Emit(ctx context.Context, p Payload) error {
	for _, s := range m {
		if err := s.Emit(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
