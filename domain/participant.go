// Package domain contains core concepts of the chat relay.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// Participant is the joined identity bound to one live connection.
// It is created on a successful join, immutable afterwards, and
// destroyed when the connection goes away. There is no rename and
// no room change; a new connection makes a new Participant.
type Participant struct {
	ConnectionID string // transport-assigned, opaque
	Username     string
	Room         string
	JoinedAt     time.Time
}
