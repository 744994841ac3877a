package events

import (
	"time"

	"github.com/spec-kit/support-room-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventMemberJoined EventType = "member_joined"
	EventMemberLeft   EventType = "member_left"
	EventRoomOpened   EventType = "room_opened"
	EventRoomFilled   EventType = "room_filled"
	EventRoomReopened EventType = "room_reopened"
	EventRoomClosed   EventType = "room_closed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type   domain.SubjectType `json:"type"`
	UserID *string            `json:"user_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	GroupID   string      `json:"group_id"`
	RoomID    string      `json:"room_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// MemberJoinedPayload payload.
type MemberJoinedPayload struct {
	Stage       string `json:"stage"`
	MemberCount int    `json:"member_count"`
	RoomCreated bool   `json:"room_created"`
}

// MemberLeftPayload payload.
type MemberLeftPayload struct {
	Stage       string `json:"stage"`
	MemberCount int    `json:"member_count"`
	RoomClosed  bool   `json:"room_closed"`
}

// RoomStatusPayload payload for room lifecycle events.
type RoomStatusPayload struct {
	Stage     string            `json:"stage"`
	OldStatus domain.RoomStatus `json:"old_status"`
	NewStatus domain.RoomStatus `json:"new_status"`
}
