package sink

import (
	"chat-relay/domain/event"
	"context"
)

// Queue is the per-connection delivery buffer between the fanout worker
// and the transport's write loop.
type Queue struct {
	Events chan event.ChatEvent
}

func NewQueue(bufferSize int) *Queue {
	return &Queue{Events: make(chan event.ChatEvent, bufferSize)}
}

// Consume is called by the fanout worker. It hands the event to the
// owning write loop and never waits on a full buffer: a connection
// that cannot keep up loses events rather than delaying the room.
func (q *Queue) Consume(ctx context.Context, e event.ChatEvent) error {
	select {
	case q.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
