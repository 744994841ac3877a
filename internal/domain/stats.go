package domain

// GroupStats is derived from room state on demand; it is advisory and never
// stored authoritatively.
type GroupStats struct {
	GroupID            string  `json:"group_id"`
	ActiveRoomCount    int     `json:"active_room_count"`
	TotalActiveMembers int     `json:"total_active_members"`
	AverageOccupancy   float64 `json:"average_occupancy"`
}
