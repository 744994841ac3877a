package domain

import "time"

// Membership records one user's occupancy of one room. Rows are deactivated
// on leave, never deleted, so historical stats survive room closure.
type Membership struct {
	ID       string
	UserID   string
	RoomID   string
	GroupID  string
	Active   bool
	JoinedAt time.Time
	LeftAt   *time.Time
}

// ActiveRoom is the projection returned for a user's current placements.
type ActiveRoom struct {
	GroupID string
	RoomID  string
	Stage   string
}
