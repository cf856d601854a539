package ws

import "encoding/json"

// Event names, inbound and outbound. These mirror the browser protocol:
// each inbound frame carries a client-chosen seq echoed back in the ack.
const (
	EventJoin         = "join"
	EventSendMsg      = "sendMsg"
	EventSendLocation = "sendLocation"

	EventAck             = "ack"
	EventMessage         = "message"
	EventLocationMessage = "locationMessage"
	EventRoomData        = "roomData"
)

type clientEnvelope struct {
	Event string          `json:"event" validate:"required"`
	Seq   uint64          `json:"seq"`
	Data  json.RawMessage `json:"data"`
}

type serverEnvelope struct {
	Event string `json:"event"`
	Seq   uint64 `json:"seq,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

type joinPayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

type sendMsgPayload struct {
	Text string `json:"text"`
}

// Pointers so a frame omitting a coordinate fails the required check
// instead of silently decoding to (0,0).
type sendLocationPayload struct {
	Latitude  *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
}

type messagePayload struct {
	Username  string `json:"username"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"` // epoch millis
}

type locationMessagePayload struct {
	Username  string `json:"username"`
	URL       string `json:"url"`
	CreatedAt int64  `json:"createdAt"`
}

type roomUserPayload struct {
	Username string `json:"username"`
}

type roomDataPayload struct {
	Room  string            `json:"room"`
	Users []roomUserPayload `json:"users"`
}
