//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is one participant's delivery queue.
// Consume must never block longer than the given context allows.
type EventSink interface {
	Consume(ctx context.Context, e event.ChatEvent) error
}

// Delivery is one room event plus the sinks it targets, resolved
// from the registry at the moment the event was produced.
type Delivery struct {
	Event   event.ChatEvent
	Targets []EventSink
}

type IRegistry interface {
	Add(connID, username, room string, sink EventSink) (domain.Participant, error)
	Remove(connID string) (domain.Participant, bool)
	Get(connID string) (domain.Participant, bool)
	ListRoom(room string) []string
	SinksForRoom(room string) []EventSink
	SinksForRoomExcept(room, connID string) []EventSink
}

// ISession is the room session protocol seen from the transport.
// Every call reports its outcome synchronously (the ack); broadcasts
// are a separate, unordered side effect.
type ISession interface {
	Join(ctx context.Context, connID, username, room string, sink EventSink) error
	SendMessage(ctx context.Context, connID, text string) error
	SendLocation(ctx context.Context, connID string, lat, lon float64) error
	Disconnect(ctx context.Context, connID string)
}
