// Package ws is the transport glue: it upgrades HTTP requests to
// websocket connections, decodes the event envelopes, and bridges them
// to the room session protocol. No chat semantics live here.
package ws

import (
	"chat-relay/contract"
	"chat-relay/domain/event"
	"chat-relay/sink"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

var validate = validator.New()

type Handler struct {
	log        *slog.Logger
	session    contract.ISession
	bufferSize int
	maxMsgSize int64
	upgrader   websocket.Upgrader
}

func NewHandler(log *slog.Logger, session contract.ISession, bufferSize int, maxMsgSize int64) *Handler {
	return &Handler{
		log:        log,
		session:    session,
		bufferSize: bufferSize,
		maxMsgSize: maxMsgSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// ServeHTTP upgrades the request and runs the connection until the
// client goes away. Each connection gets a transport-assigned id, a
// delivery queue registered on join, and a single writer goroutine:
// gorilla connections do not allow concurrent writers, so acks and
// broadcasts are funneled through the same loop.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := &connection{
		id:      uuid.NewString(),
		ws:      conn,
		queue:   sink.NewQueue(h.bufferSize),
		acks:    make(chan serverEnvelope, 8),
		done:    make(chan struct{}),
		log:     h.log,
		session: h.session,
	}
	conn.SetReadLimit(h.maxMsgSize)

	h.log.Debug("New websocket connection", "conn_id", c.id, "remote", r.RemoteAddr)
	go c.writeLoop()
	c.readLoop(r.Context())
}

type connection struct {
	id      string
	ws      *websocket.Conn
	queue   *sink.Queue
	acks    chan serverEnvelope
	done    chan struct{}
	log     *slog.Logger
	session contract.ISession
}

// readLoop decodes inbound envelopes and dispatches them. Every request
// is acked exactly once, on the same path that validated it. A read
// error (including a normal close) triggers the disconnect transition.
func (c *connection) readLoop(ctx context.Context) {
	defer func() {
		c.session.Disconnect(ctx, c.id)
		close(c.done)
		_ = c.ws.Close()
	}()

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warn("Websocket read failed", "conn_id", c.id, "error", err)
			}
			return
		}

		var env clientEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.ack(0, fmt.Errorf("malformed envelope"))
			continue
		}
		if err := validate.Struct(env); err != nil {
			c.ack(env.Seq, fmt.Errorf("missing event name"))
			continue
		}

		c.ack(env.Seq, c.dispatch(ctx, env))
	}
}

func (c *connection) dispatch(ctx context.Context, env clientEnvelope) error {
	switch env.Event {
	case EventJoin:
		var p joinPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return fmt.Errorf("malformed join payload")
		}
		return c.session.Join(ctx, c.id, p.Username, p.Room, c.queue)

	case EventSendMsg:
		var p sendMsgPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return fmt.Errorf("malformed message payload")
		}
		return c.session.SendMessage(ctx, c.id, p.Text)

	case EventSendLocation:
		var p sendLocationPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return fmt.Errorf("malformed location payload")
		}
		if err := validate.Struct(p); err != nil {
			return fmt.Errorf("latitude and longitude are required and must be in range")
		}
		return c.session.SendLocation(ctx, c.id, *p.Latitude, *p.Longitude)

	default:
		return fmt.Errorf("unknown event %q", env.Event)
	}
}

func (c *connection) ack(seq uint64, err error) {
	env := serverEnvelope{Event: EventAck, Seq: seq}
	if err != nil {
		env.Error = err.Error()
	}
	select {
	case c.acks <- env:
	case <-c.done:
	}
}

// writeLoop is the single writer for this connection. It drains both the
// broadcast queue and the ack channel until the reader signals done.
func (c *connection) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case env := <-c.acks:
			c.write(env)
		case evt := <-c.queue.Events:
			c.write(toEnvelope(evt))
		}
	}
}

func (c *connection) write(env serverEnvelope) {
	if err := c.ws.WriteJSON(env); err != nil {
		c.log.Debug("Websocket write failed", "conn_id", c.id, "error", err)
	}
}

// toEnvelope maps a chat event onto the wire protocol. Notices ride the
// regular message event under the system author, like the original
// browser client expects.
func toEnvelope(evt event.ChatEvent) serverEnvelope {
	switch e := evt.(type) {
	case event.Notice:
		return serverEnvelope{Event: EventMessage, Data: messagePayload{
			Username:  "Admin",
			Text:      e.Text,
			CreatedAt: e.At.UnixMilli(),
		}}
	case event.MessagePosted:
		return serverEnvelope{Event: EventMessage, Data: messagePayload{
			Username:  e.Author,
			Text:      e.Content,
			CreatedAt: e.At.UnixMilli(),
		}}
	case event.LocationShared:
		return serverEnvelope{Event: EventLocationMessage, Data: locationMessagePayload{
			Username:  e.Author,
			URL:       e.MapsURL,
			CreatedAt: e.At.UnixMilli(),
		}}
	case event.RosterUpdated:
		return serverEnvelope{Event: EventRoomData, Data: roomDataPayload{
			Room: e.RoomName,
			Users: lo.Map(e.Members, func(name string, _ int) roomUserPayload {
				return roomUserPayload{Username: name}
			}),
		}}
	default:
		return serverEnvelope{Event: EventMessage}
	}
}
