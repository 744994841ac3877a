package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-room-service/internal/domain"
	"github.com/spec-kit/support-room-service/internal/repository"
)

// ErrSeatGuardFailed reports that a conditional seat update matched no row.
// Under correct per-key serialization this never happens; the allocator
// treats it as an invariant violation.
var ErrSeatGuardFailed = errors.New("seat guard matched no row")

// RoomLifecycle owns the room state machine:
//
//	OPEN --(count reaches capacity)--> FULL
//	FULL --(count drops below capacity)--> OPEN
//	OPEN/FULL --(count reaches 0)--> CLOSING --> CLOSED
//
// CLOSED is terminal. All mutations go through the room repository's
// conditional updates, so no other writer can touch status or member_count.
type RoomLifecycle struct {
	rooms repository.RoomRepository
}

// NewRoomLifecycle builds the lifecycle manager.
func NewRoomLifecycle(rooms repository.RoomRepository) *RoomLifecycle {
	return &RoomLifecycle{rooms: rooms}
}

// WithTx rebinds the lifecycle manager onto a transaction.
func (l *RoomLifecycle) WithTx(tx pgx.Tx) *RoomLifecycle {
	return &RoomLifecycle{rooms: l.rooms.WithTx(tx)}
}

// OpenRooms returns the OPEN rooms for (groupID, stage), oldest-created
// first, recomputed per call. Consumed by the planner's selection rule.
func (l *RoomLifecycle) OpenRooms(ctx context.Context, groupID, stage string) ([]domain.Room, error) {
	return l.rooms.ListOpen(ctx, groupID, stage)
}

// OpenNewRoom creates an empty OPEN room for (groupID, stage).
func (l *RoomLifecycle) OpenNewRoom(ctx context.Context, groupID, stage string, capacity int) (*domain.Room, error) {
	room := &domain.Room{
		ID:          uuid.NewString(),
		GroupID:     groupID,
		Stage:       stage,
		Capacity:    capacity,
		MemberCount: 0,
		Status:      domain.RoomStatusOpen,
	}
	if err := l.rooms.Create(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// AdmitMember reserves one seat in the room and applies the OPEN -> FULL
// transition when the increment reaches capacity. Returns the new count.
func (l *RoomLifecycle) AdmitMember(ctx context.Context, room *domain.Room) (int, error) {
	count, err := l.rooms.ReserveSeat(ctx, room.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrSeatGuardFailed
		}
		return 0, err
	}
	if count == room.Capacity {
		if err := l.rooms.TransitionStatus(ctx, room.ID,
			[]domain.RoomStatus{domain.RoomStatusOpen}, domain.RoomStatusFull); err != nil {
			return 0, err
		}
		room.Status = domain.RoomStatusFull
	}
	room.MemberCount = count
	return count, nil
}

// RemoveMember releases one seat and applies the resulting transition:
// FULL -> OPEN when capacity frees up, OPEN/FULL -> CLOSING -> CLOSED when
// the room empties. CLOSING resolves to CLOSED inside the same unit of work;
// no external trigger is involved.
func (l *RoomLifecycle) RemoveMember(ctx context.Context, room *domain.Room) (int, error) {
	count, err := l.rooms.ReleaseSeat(ctx, room.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrSeatGuardFailed
		}
		return 0, err
	}
	room.MemberCount = count

	switch {
	case count == 0:
		active := []domain.RoomStatus{domain.RoomStatusOpen, domain.RoomStatusFull}
		if err := l.rooms.TransitionStatus(ctx, room.ID, active, domain.RoomStatusClosing); err != nil {
			return 0, err
		}
		if err := l.rooms.TransitionStatus(ctx, room.ID,
			[]domain.RoomStatus{domain.RoomStatusClosing}, domain.RoomStatusClosed); err != nil {
			return 0, err
		}
		room.Status = domain.RoomStatusClosed
	case room.Status == domain.RoomStatusFull:
		if err := l.rooms.TransitionStatus(ctx, room.ID,
			[]domain.RoomStatus{domain.RoomStatusFull}, domain.RoomStatusOpen); err != nil {
			return 0, err
		}
		room.Status = domain.RoomStatusOpen
	}
	return count, nil
}
