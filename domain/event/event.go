package event

import (
	"time"

	"github.com/google/uuid"
)

// ChatEvent is anything fanned out to the members of a room.
// Events are transient: constructed, delivered, discarded.
type ChatEvent interface {
	Room() string
}

// Notice is a system-authored announcement (welcome, joined, left).
type Notice struct {
	RoomName string
	Text     string
	At       time.Time
}

func (n Notice) Room() string { return n.RoomName }

// MessagePosted carries a user message accepted by moderation.
type MessagePosted struct {
	ID       uuid.UUID
	RoomName string
	Author   string
	Content  string
	At       time.Time
}

func (m MessagePosted) Room() string { return m.RoomName }

// LocationShared carries a one-shot location share as a maps link.
type LocationShared struct {
	ID       uuid.UUID
	RoomName string
	Author   string
	MapsURL  string
	At       time.Time
}

func (l LocationShared) Room() string { return l.RoomName }

// RosterUpdated is the full recomputed member list of a room.
// It is always derived from the registry, never patched incrementally,
// so the roster can never drift from actual membership.
type RosterUpdated struct {
	RoomName string
	Members  []string
}

func (r RosterUpdated) Room() string { return r.RoomName }
