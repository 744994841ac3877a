package dto

import (
	"time"

	"github.com/spec-kit/support-room-service/internal/domain"
)

// StageRequest configures one stage at group creation.
type StageRequest struct {
	Stage    string `json:"stage"`
	Capacity int    `json:"capacity"`
}

// CreateGroupRequest payload.
type CreateGroupRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Stages      []StageRequest `json:"stages"`
}

// StageResponse describes one configured stage.
type StageResponse struct {
	Stage    string `json:"stage"`
	Capacity int    `json:"capacity"`
}

// GroupResponse describes a support group.
type GroupResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Stages      []StageResponse `json:"stages"`
	IsArchived  bool            `json:"is_archived"`
	CreatedAt   time.Time       `json:"created_at"`
}

// GroupStatsResponse mirrors domain.GroupStats.
type GroupStatsResponse struct {
	GroupID            string  `json:"group_id"`
	ActiveRoomCount    int     `json:"active_room_count"`
	TotalActiveMembers int     `json:"total_active_members"`
	AverageOccupancy   float64 `json:"average_occupancy"`
}

// GroupStatsFromDomain converts stats.
func GroupStatsFromDomain(stats *domain.GroupStats) GroupStatsResponse {
	return GroupStatsResponse{
		GroupID:            stats.GroupID,
		ActiveRoomCount:    stats.ActiveRoomCount,
		TotalActiveMembers: stats.TotalActiveMembers,
		AverageOccupancy:   stats.AverageOccupancy,
	}
}
