package services

import (
	"chat-relay/contract"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/moderation"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ProfanityPredicate is the opaque content filter injected into the
// session. Tests stub it; production wires moderation.Moderator.
type ProfanityPredicate func(text string) bool

// Session is the room session protocol: it validates each inbound
// transition against the presence registry, answers the caller
// synchronously (the ack path), and enqueues broadcasts for the
// fanout worker as a separate side effect.
type Session struct {
	log        *slog.Logger
	registry   contract.IRegistry
	deliveries chan<- contract.Delivery
	isProfane  ProfanityPredicate
	clock      func() time.Time
}

func NewSession(log *slog.Logger, registry contract.IRegistry,
	deliveries chan<- contract.Delivery, isProfane ProfanityPredicate) *Session {
	return &Session{
		log:        log,
		registry:   registry,
		deliveries: deliveries,
		isProfane:  isProfane,
		clock:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source, for tests.
func (s *Session) WithClock(clock func() time.Time) *Session {
	s.clock = clock
	return s
}

// Join admits a connection into a room. On success the joiner gets a
// welcome notice, the other members a "has joined" notice, and everyone
// a recomputed roster. On failure only the returned error reaches the
// joiner; nothing is broadcast and the connection stays unjoined.
func (s *Session) Join(ctx context.Context, connID, username, room string, sink contract.EventSink) error {
	p, err := s.registry.Add(connID, username, room, sink)
	if err != nil {
		return err
	}

	now := s.clock()
	s.deliver(event.Notice{RoomName: p.Room, Text: "Welcome!", At: now},
		[]contract.EventSink{sink})

	if others := s.registry.SinksForRoomExcept(p.Room, connID); len(others) > 0 {
		s.deliver(event.Notice{
			RoomName: p.Room,
			Text:     fmt.Sprintf("%s has joined %s", p.Username, p.Room),
			At:       now,
		}, others)
	}

	s.broadcastRoster(p.Room)
	s.log.Info("Participant joined", "username", p.Username, "room", p.Room)
	return nil
}

// SendMessage relays text to every member of the sender's room,
// sender included, unless the content filter flags it.
func (s *Session) SendMessage(ctx context.Context, connID, text string) error {
	p, ok := s.registry.Get(connID)
	if !ok {
		return errors.ErrNotJoined
	}

	if s.isProfane(text) {
		s.log.Debug("Message rejected by moderation",
			"username", p.Username, "room", p.Room, "lang", moderation.Language(text))
		return errors.ErrProfanity
	}

	s.deliver(event.MessagePosted{
		ID:       uuid.New(),
		RoomName: p.Room,
		Author:   p.Username,
		Content:  text,
		At:       s.clock(),
	}, s.registry.SinksForRoom(p.Room))
	return nil
}

// SendLocation relays a one-shot location share as a maps link to
// every member of the sender's room, sender included.
func (s *Session) SendLocation(ctx context.Context, connID string, lat, lon float64) error {
	p, ok := s.registry.Get(connID)
	if !ok {
		return errors.ErrNotJoined
	}

	s.deliver(event.LocationShared{
		ID:       uuid.New(),
		RoomName: p.Room,
		Author:   p.Username,
		MapsURL:  fmt.Sprintf("https://google.com/maps?q=%s,%s", coordinate(lat), coordinate(lon)),
		At:       s.clock(),
	}, s.registry.SinksForRoom(p.Room))
	return nil
}

// coordinate renders a latitude or longitude as plain decimal, never
// scientific notation, so the maps link stays well-formed for
// near-zero values.
func coordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Disconnect evicts the connection. When a Participant existed and the
// room still has members, they get a "has left" notice and a recomputed
// roster. Idempotent: a never-joined or double disconnect is a no-op.
func (s *Session) Disconnect(ctx context.Context, connID string) {
	p, ok := s.registry.Remove(connID)
	if !ok {
		return
	}

	if remaining := s.registry.SinksForRoom(p.Room); len(remaining) > 0 {
		s.deliver(event.Notice{
			RoomName: p.Room,
			Text:     fmt.Sprintf("%s has left", p.Username),
			At:       s.clock(),
		}, remaining)
		s.broadcastRoster(p.Room)
	}
	s.log.Info("Participant left", "username", p.Username, "room", p.Room)
}

// broadcastRoster recomputes the member list from the registry and sends
// it to the whole room. Always derived, never patched: correctness over
// the small recompute cost.
func (s *Session) broadcastRoster(room string) {
	targets := s.registry.SinksForRoom(room)
	if len(targets) == 0 {
		return
	}
	s.deliver(event.RosterUpdated{
		RoomName: room,
		Members:  s.registry.ListRoom(room),
	}, targets)
}

func (s *Session) deliver(evt event.ChatEvent, targets []contract.EventSink) {
	if len(targets) == 0 {
		return
	}
	select {
	case s.deliveries <- contract.Delivery{Event: evt, Targets: targets}:
	default:
		s.log.Warn("Delivery channel full, dropping event", "room", evt.Room())
	}
}
