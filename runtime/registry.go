package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"sort"
	"strings"
	"sync"
	"time"
)

type member struct {
	participant domain.Participant
	sink        contract.EventSink
	seq         uint64 // join order, assigned under the write lock
}

// Registry is the presence store: one entry per live joined connection.
// It owns no reference to the transport; pure state plus pure queries,
// which keeps it unit-testable without a live connection.
//
// All mutations go through a single write lock so a join and a concurrent
// disconnect can never corrupt the membership set, and ListRoom never
// observes a half-applied Add.
type Registry struct {
	mu      sync.RWMutex
	members map[string]*member // connection id -> member
	nextSeq uint64
}

func NewRegistry() *Registry {
	return &Registry{members: make(map[string]*member)}
}

// Add validates and stores a Participant for connID. The connection must not
// already hold a Participant: they are immutable, so there is no rename and
// no room change short of disconnecting. Username and room must be non-empty
// once trimmed, and the username must not collide case-insensitively with
// another member of the same room. Atomic from the caller's perspective: on
// error nothing is stored.
func (r *Registry) Add(connID, username, room string, sink contract.EventSink) (domain.Participant, error) {
	username = strings.TrimSpace(username)
	room = strings.TrimSpace(room)
	if username == "" || room == "" {
		return domain.Participant{}, errors.ErrMissingField
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[connID]; ok {
		return domain.Participant{}, errors.ErrAlreadyJoined
	}

	// Uniqueness is a linear scan over the room's current members.
	// Join is low-frequency relative to message sends, so this stays
	// bounded by active-room size.
	for _, m := range r.members {
		if m.participant.Room == room && strings.EqualFold(m.participant.Username, username) {
			return domain.Participant{}, errors.ErrNameTaken
		}
	}

	p := domain.Participant{
		ConnectionID: connID,
		Username:     username,
		Room:         room,
		JoinedAt:     time.Now().UTC(),
	}
	r.nextSeq++
	r.members[connID] = &member{participant: p, sink: sink, seq: r.nextSeq}
	return p, nil
}

// Remove deletes and returns the Participant bound to connID.
// Safe to call for a connection that never joined, or twice.
func (r *Registry) Remove(connID string) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[connID]
	if !ok {
		return domain.Participant{}, false
	}
	delete(r.members, connID)
	return m.participant, true
}

func (r *Registry) Get(connID string) (domain.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.members[connID]
	if !ok {
		return domain.Participant{}, false
	}
	return m.participant, true
}

// ListRoom returns the usernames currently in room, in join order.
// Ties (which cannot happen with the monotonic sequence, but keep the
// ordering total anyway) fall back to connection id order.
func (r *Registry) ListRoom(room string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var inRoom []*member
	for _, m := range r.members {
		if m.participant.Room == room {
			inRoom = append(inRoom, m)
		}
	}
	sort.Slice(inRoom, func(i, j int) bool {
		if inRoom[i].seq != inRoom[j].seq {
			return inRoom[i].seq < inRoom[j].seq
		}
		return inRoom[i].participant.ConnectionID < inRoom[j].participant.ConnectionID
	})

	names := make([]string, 0, len(inRoom))
	for _, m := range inRoom {
		names = append(names, m.participant.Username)
	}
	return names
}

// SinksForRoom retrieves all active delivery queues for a room.
// Returns nil when the room has no members; an empty room has no
// existence of its own.
func (r *Registry) SinksForRoom(room string) []contract.EventSink {
	return r.sinks(room, "")
}

// SinksForRoomExcept is SinksForRoom minus one connection, used for
// "everyone but the joiner" notices.
func (r *Registry) SinksForRoomExcept(room, connID string) []contract.EventSink {
	return r.sinks(room, connID)
}

func (r *Registry) sinks(room, excludedConnID string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var active []contract.EventSink
	for id, m := range r.members {
		if m.participant.Room != room || id == excludedConnID {
			continue
		}
		active = append(active, m.sink)
	}
	return active
}

// Snapshot returns room -> members (join order) for the debug inspector.
func (r *Registry) Snapshot() map[string][]string {
	r.mu.RLock()
	rooms := make(map[string]struct{})
	for _, m := range r.members {
		rooms[m.participant.Room] = struct{}{}
	}
	r.mu.RUnlock()

	snapshot := make(map[string][]string, len(rooms))
	for room := range rooms {
		snapshot[room] = r.ListRoom(room)
	}
	return snapshot
}
