package dto

import (
	"time"

	"github.com/spec-kit/support-room-service/internal/domain"
)

// JoinRoomResponse returned by join.
type JoinRoomResponse struct {
	RoomID      string            `json:"room_id"`
	GroupID     string            `json:"group_id"`
	Stage       string            `json:"stage"`
	MemberCount int               `json:"member_count"`
	Capacity    int               `json:"capacity"`
	Status      domain.RoomStatus `json:"status"`
}

// RoomResponse describes a room.
type RoomResponse struct {
	ID          string            `json:"id"`
	GroupID     string            `json:"group_id"`
	Stage       string            `json:"stage"`
	Capacity    int               `json:"capacity"`
	MemberCount int               `json:"member_count"`
	Status      domain.RoomStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ActiveRoomResponse is one entry of a user's active placements.
type ActiveRoomResponse struct {
	GroupID string `json:"group_id"`
	RoomID  string `json:"room_id"`
	Stage   string `json:"stage"`
}
