package runtime

import (
	"chat-relay/domain/event"
	"chat-relay/errors"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type Sink struct {
}

func (s Sink) Consume(ctx context.Context, e event.ChatEvent) error {
	return nil
}

func TestRegistry_Add_One_Room_One_Participant(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()
	sink := Sink{}

	// Given no one is connected
	req.Empty(registry.members)

	// When a participant joins a room
	p, err := registry.Add(connID, "alice", "office", sink)

	// Then the participant is stored under its connection id
	req.NoError(err)
	req.Equal("alice", p.Username)
	req.Equal("office", p.Room)
	req.Len(registry.members, 1)

	stored, ok := registry.Get(connID)
	req.True(ok)
	req.Equal(p, stored)

	req.Equal([]string{"alice"}, registry.ListRoom("office"))
	req.Len(registry.SinksForRoom("office"), 1)
}

func TestRegistry_Add_Trims_Username_And_Room(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// When a participant joins with surrounding whitespace
	p, err := registry.Add(uuid.NewString(), "  alice ", " office  ", Sink{})

	// Then both fields are stored trimmed
	req.NoError(err)
	req.Equal("alice", p.Username)
	req.Equal("office", p.Room)
}

func TestRegistry_Add_Rejects_Missing_Fields(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	cases := []struct {
		name     string
		username string
		room     string
	}{
		{name: "empty username", username: "", room: "office"},
		{name: "whitespace username", username: "   ", room: "office"},
		{name: "empty room", username: "alice", room: ""},
		{name: "whitespace room", username: "alice", room: "\t "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// When a participant joins with a blank field
			_, err := registry.Add(uuid.NewString(), tc.username, tc.room, Sink{})

			// Then the join is rejected and nothing is stored
			req.ErrorIs(err, errors.ErrMissingField)
			req.Empty(registry.members)
		})
	}
}

func TestRegistry_Add_Rejects_An_Already_Joined_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()

	// Given the connection already holds a participant
	_, err := registry.Add(connID, "alice", "office", Sink{})
	req.NoError(err)

	// When the same connection joins again under another identity
	_, err = registry.Add(connID, "alice2", "lobby", Sink{})

	// Then the join is rejected and the original participant is untouched
	req.ErrorIs(err, errors.ErrAlreadyJoined)
	p, ok := registry.Get(connID)
	req.True(ok)
	req.Equal("alice", p.Username)
	req.Equal("office", p.Room)
	req.Equal([]string{"alice"}, registry.ListRoom("office"))
	req.Empty(registry.ListRoom("lobby"))
}

func TestRegistry_Add_Same_Connection_Same_Name_Is_Not_A_Collision(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()

	// Given alice is in the office
	_, err := registry.Add(connID, "alice", "office", Sink{})
	req.NoError(err)

	// When her own connection re-joins with the identical identity
	_, err = registry.Add(connID, "alice", "office", Sink{})

	// Then the rejection names the real cause, not a name collision
	req.ErrorIs(err, errors.ErrAlreadyJoined)
}

func TestRegistry_Add_Rejects_Duplicate_Name_In_Same_Room(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// Given alice is in the office
	_, err := registry.Add(uuid.NewString(), "alice", "office", Sink{})
	req.NoError(err)

	// When another connection joins the office with the same name, any casing
	_, err = registry.Add(uuid.NewString(), "ALICE", "office", Sink{})

	// Then the join is rejected and the roster is unchanged
	req.ErrorIs(err, errors.ErrNameTaken)
	req.Equal([]string{"alice"}, registry.ListRoom("office"))
}

func TestRegistry_Add_Allows_Same_Name_In_Different_Rooms(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// Given alice is in the office
	_, err := registry.Add(uuid.NewString(), "alice", "office", Sink{})
	req.NoError(err)

	// When another alice joins the lobby
	_, err = registry.Add(uuid.NewString(), "alice", "lobby", Sink{})

	// Then both participants coexist
	req.NoError(err)
	req.Equal([]string{"alice"}, registry.ListRoom("office"))
	req.Equal([]string{"alice"}, registry.ListRoom("lobby"))
}

func TestRegistry_ListRoom_Preserves_Join_Order(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// Given three participants joined in sequence
	for _, name := range []string{"alice", "bob", "carol"} {
		_, err := registry.Add(uuid.NewString(), name, "office", Sink{})
		req.NoError(err)
	}

	// When the roster is listed twice with no mutation in between
	first := registry.ListRoom("office")
	second := registry.ListRoom("office")

	// Then join order is preserved and the result is stable
	req.Equal([]string{"alice", "bob", "carol"}, first)
	req.Equal(first, second)
}

func TestRegistry_Remove_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()

	// Given alice is in the office
	_, err := registry.Add(connID, "alice", "office", Sink{})
	req.NoError(err)

	// When the connection is removed twice
	p, ok := registry.Remove(connID)
	req.True(ok)
	req.Equal("alice", p.Username)

	_, ok = registry.Remove(connID)

	// Then the second removal returns nothing and nothing is left behind
	req.False(ok)
	req.Empty(registry.members)
	req.Empty(registry.ListRoom("office"))
	req.Nil(registry.SinksForRoom("office"))
}

func TestRegistry_Remove_Frees_The_Name_For_Reuse(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connID := uuid.NewString()

	// Given alice joined and left the office
	_, err := registry.Add(connID, "alice", "office", Sink{})
	req.NoError(err)
	_, ok := registry.Remove(connID)
	req.True(ok)

	// When a new connection claims the name
	_, err = registry.Add(uuid.NewString(), "alice", "office", Sink{})

	// Then the join succeeds
	req.NoError(err)
}

func TestRegistry_SinksForRoomExcept_Skips_The_Given_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	aliceConn := uuid.NewString()

	// Given alice and bob are in the office
	_, err := registry.Add(aliceConn, "alice", "office", Sink{})
	req.NoError(err)
	_, err = registry.Add(uuid.NewString(), "bob", "office", Sink{})
	req.NoError(err)

	// When sinks are resolved excluding alice
	sinks := registry.SinksForRoomExcept("office", aliceConn)

	// Then only bob's sink remains
	req.Len(sinks, 1)
	req.Len(registry.SinksForRoom("office"), 2)
}

func TestRegistry_Snapshot_Groups_Members_By_Room(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// Given members across two rooms
	_, err := registry.Add(uuid.NewString(), "alice", "office", Sink{})
	req.NoError(err)
	_, err = registry.Add(uuid.NewString(), "bob", "office", Sink{})
	req.NoError(err)
	_, err = registry.Add(uuid.NewString(), "carol", "lobby", Sink{})
	req.NoError(err)

	// When a snapshot is taken
	snapshot := registry.Snapshot()

	// Then each room lists its members in join order
	req.Len(snapshot, 2)
	req.Equal([]string{"alice", "bob"}, snapshot["office"])
	req.Equal([]string{"carol"}, snapshot["lobby"])
}
