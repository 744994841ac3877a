package domain

import "time"

// RoomStatus enumerates lifecycle states for support rooms.
type RoomStatus string

const (
	RoomStatusOpen    RoomStatus = "OPEN"
	RoomStatusFull    RoomStatus = "FULL"
	RoomStatusClosing RoomStatus = "CLOSING"
	RoomStatusClosed  RoomStatus = "CLOSED"
)

// Room is a capacity-bounded chat container scoped to one group and stage.
// A room belongs to its (group, stage) pair for its entire lifetime and is
// never reused once closed.
type Room struct {
	ID          string
	GroupID     string
	Stage       string
	Capacity    int
	MemberCount int
	Status      RoomStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AcceptsMembers reports whether the room can currently admit a joiner.
func (r *Room) AcceptsMembers() bool {
	return r.Status == RoomStatusOpen && r.MemberCount < r.Capacity
}
