package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-room-service/internal/domain"
	"github.com/spec-kit/support-room-service/internal/repository"
	apperrors "github.com/spec-kit/support-room-service/pkg/util"
)

// StatsService derives per-group aggregates from room state. Read-only and
// advisory: it accepts point-in-time snapshots and never takes the
// allocator's serialization lock.
type StatsService struct {
	groups repository.GroupRepository
	rooms  repository.RoomRepository
	cache  StatsCache
}

// NewStatsService creates the service.
func NewStatsService(groups repository.GroupRepository, rooms repository.RoomRepository, cache StatsCache) *StatsService {
	return &StatsService{groups: groups, rooms: rooms, cache: cache}
}

// GroupStats scans the group's non-CLOSED rooms and computes room count,
// member total and average occupancy. Snapshots are cached; the allocator
// invalidates the entry after every committed mutation.
func (s *StatsService) GroupStats(ctx context.Context, groupID string) (*domain.GroupStats, error) {
	if s.cache != nil {
		if stats, ok := s.cache.GetStats(ctx, groupID); ok {
			return stats, nil
		}
	}

	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("group", map[string]any{"group_id": groupID})
		}
		return nil, apperrors.MapError(err)
	}

	rooms, err := s.rooms.ListActiveByGroup(ctx, groupID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	stats := &domain.GroupStats{GroupID: groupID}
	for _, room := range rooms {
		stats.ActiveRoomCount++
		stats.TotalActiveMembers += room.MemberCount
	}
	if stats.ActiveRoomCount > 0 {
		stats.AverageOccupancy = float64(stats.TotalActiveMembers) / float64(stats.ActiveRoomCount)
	}

	if s.cache != nil {
		s.cache.SetStats(ctx, stats)
	}
	return stats, nil
}
