package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-room-service/internal/domain"
	"github.com/spec-kit/support-room-service/internal/repository"
	apperrors "github.com/spec-kit/support-room-service/pkg/util"
)

// RoomService serves read paths over rooms and the membership ledger. It
// never takes the allocator's serialization lock; reads tolerate point-in-
// time snapshots.
type RoomService struct {
	rooms       repository.RoomRepository
	memberships repository.MembershipRepository
}

// NewRoomService creates the service.
func NewRoomService(rooms repository.RoomRepository, memberships repository.MembershipRepository) *RoomService {
	return &RoomService{rooms: rooms, memberships: memberships}
}

// GetRoom returns the room by id.
func (s *RoomService) GetRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("room", map[string]any{"room_id": roomID})
		}
		return nil, apperrors.MapError(err)
	}
	return room, nil
}

// ListMembers returns active user identifiers for the room.
func (s *RoomService) ListMembers(ctx context.Context, roomID string) ([]string, error) {
	if _, err := s.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}
	members, err := s.memberships.ListMembers(ctx, roomID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return members, nil
}

// MyRooms returns the user's active placements across groups.
func (s *RoomService) MyRooms(ctx context.Context, userID string) ([]domain.ActiveRoom, error) {
	rooms, err := s.memberships.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return rooms, nil
}
