package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/support-room-service/internal/domain"
	"github.com/spec-kit/support-room-service/internal/events"
	"github.com/spec-kit/support-room-service/internal/locking"
	"github.com/spec-kit/support-room-service/internal/observability"
	"github.com/spec-kit/support-room-service/internal/repository"
	apperrors "github.com/spec-kit/support-room-service/pkg/util"
)

// StatsCache caches group stats snapshots. The allocator only invalidates;
// the stats service reads and writes.
type StatsCache interface {
	GetStats(ctx context.Context, groupID string) (*domain.GroupStats, bool)
	SetStats(ctx context.Context, stats *domain.GroupStats)
	Invalidate(ctx context.Context, groupID string)
}

// AllocatorService is the room capacity planner. Every join and leave for a
// given (group, stage) pair is serialized through one keyed lock and commits
// its room and membership writes in one transaction. Different pairs never
// contend.
type AllocatorService struct {
	groups      repository.GroupRepository
	rooms       repository.RoomRepository
	memberships repository.MembershipRepository
	lifecycle   *RoomLifecycle
	tx          repository.TxRunner
	locks       *locking.KeyedMutex
	dispatcher  events.Dispatcher
	cache       StatsCache
	metrics     *observability.Metrics
	logger      *zap.Logger
	lockWait    time.Duration
}

// AllocatorDependencies bundles collaborator requirements.
type AllocatorDependencies struct {
	GroupRepo      repository.GroupRepository
	RoomRepo       repository.RoomRepository
	MembershipRepo repository.MembershipRepository
	Tx             repository.TxRunner
	Locks          *locking.KeyedMutex
	Dispatcher     events.Dispatcher
	Cache          StatsCache
	Metrics        *observability.Metrics
	Logger         *zap.Logger
	LockWait       time.Duration
}

// NewAllocatorService creates the service.
func NewAllocatorService(deps AllocatorDependencies) *AllocatorService {
	lockWait := deps.LockWait
	if lockWait <= 0 {
		lockWait = 10 * time.Second
	}
	return &AllocatorService{
		groups:      deps.GroupRepo,
		rooms:       deps.RoomRepo,
		memberships: deps.MembershipRepo,
		lifecycle:   NewRoomLifecycle(deps.RoomRepo),
		tx:          deps.Tx,
		locks:       deps.Locks,
		dispatcher:  deps.Dispatcher,
		cache:       deps.Cache,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		lockWait:    lockWait,
	}
}

func lockKey(groupID, stage string) string {
	return groupID + "|" + stage
}

// Join places the user into the oldest open room of (groupID, stage) with
// free capacity, creating a new room when none qualifies. Re-issuing a join
// while already placed in the requested stage returns the existing room.
func (s *AllocatorService) Join(ctx context.Context, groupID, stage, userID string) (*domain.Room, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("group", map[string]any{"group_id": groupID})
		}
		return nil, apperrors.MapError(err)
	}
	if group.IsArchived {
		return nil, apperrors.NewGroupArchived(groupID)
	}
	capacity, ok := group.StageCapacity(stage)
	if !ok {
		return nil, apperrors.NewValidationError("unknown stage for group",
			map[string]any{"group_id": groupID, "stage": stage})
	}

	unlock, err := s.acquire(ctx, groupID, stage)
	if err != nil {
		return nil, err
	}
	released := false
	release := func() {
		if !released {
			released = true
			unlock()
		}
	}
	defer release()

	// Membership check happens inside the critical section so a concurrent
	// join for the same user cannot slip between read and write.
	if existing, err := s.memberships.ActiveForUserInGroup(ctx, userID, groupID); err == nil {
		room, err := s.rooms.GetByID(ctx, existing.RoomID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if room.Stage == stage {
			return room, nil
		}
		return nil, apperrors.NewAlreadyMember(groupID, existing.RoomID)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	var (
		placed      *domain.Room
		roomCreated bool
	)
	err = s.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		lifecycle := s.lifecycle.WithTx(tx)
		members := s.memberships.WithTx(tx)

		open, err := lifecycle.OpenRooms(ctx, groupID, stage)
		if err != nil {
			return err
		}
		var target *domain.Room
		for i := range open {
			if open[i].MemberCount < open[i].Capacity {
				target = &open[i]
				break
			}
		}
		if target == nil {
			target, err = lifecycle.OpenNewRoom(ctx, groupID, stage, capacity)
			if err != nil {
				return err
			}
			roomCreated = true
		}
		placed = target

		if _, err := lifecycle.AdmitMember(ctx, target); err != nil {
			return err
		}
		return members.Create(ctx, &domain.Membership{
			ID:      uuid.NewString(),
			UserID:  userID,
			RoomID:  target.ID,
			GroupID: groupID,
			Active:  true,
		})
	})
	if err != nil {
		if errors.Is(err, ErrSeatGuardFailed) {
			s.metrics.RecordCapacityRace()
			s.logger.Error("capacity guard rejected a serialized join; serialization invariant violated",
				zap.String("group_id", groupID),
				zap.String("stage", stage),
				zap.String("room_id", placed.ID),
			)
			return nil, apperrors.NewCapacityRace(placed.ID)
		}
		return nil, apperrors.NewPersistenceFailure(err)
	}

	// Post-commit work needs no serialization; release before touching the
	// cache or dispatcher.
	release()

	s.metrics.RecordJoin(roomCreated)
	s.cache.Invalidate(ctx, groupID)
	s.publishJoin(ctx, userID, placed, roomCreated)
	return placed, nil
}

// Leave deactivates the user's membership in the room and releases the seat.
// Leaving a membership already deactivated by an earlier request is a no-op;
// a membership that never existed is NotAMember.
func (s *AllocatorService) Leave(ctx context.Context, roomID, userID string) error {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("room", map[string]any{"room_id": roomID})
		}
		return apperrors.MapError(err)
	}

	unlock, err := s.acquire(ctx, room.GroupID, room.Stage)
	if err != nil {
		return err
	}
	released := false
	release := func() {
		if !released {
			released = true
			unlock()
		}
	}
	defer release()

	membership, err := s.memberships.GetForUserInRoom(ctx, userID, roomID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotAMember(roomID, userID)
		}
		return apperrors.MapError(err)
	}
	if !membership.Active {
		// Retried leave; the first request already did the work.
		return nil
	}

	var (
		left    *domain.Room
		wasFull bool
	)
	err = s.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		lifecycle := s.lifecycle.WithTx(tx)
		members := s.memberships.WithTx(tx)
		roomsTx := s.rooms.WithTx(tx)

		current, err := roomsTx.GetByID(ctx, roomID)
		if err != nil {
			return err
		}
		changed, err := members.Deactivate(ctx, userID, roomID)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		wasFull = current.Status == domain.RoomStatusFull
		if _, err := lifecycle.RemoveMember(ctx, current); err != nil {
			return err
		}
		left = current
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSeatGuardFailed) {
			s.metrics.RecordCapacityRace()
			s.logger.Error("seat guard rejected a serialized leave; serialization invariant violated",
				zap.String("room_id", roomID),
			)
			return apperrors.NewCapacityRace(roomID)
		}
		return apperrors.NewPersistenceFailure(err)
	}
	if left == nil {
		return nil
	}
	release()

	closed := left.Status == domain.RoomStatusClosed
	s.metrics.RecordLeave(closed)
	s.cache.Invalidate(ctx, left.GroupID)
	s.publishLeave(ctx, userID, left, closed, wasFull)
	return nil
}

// acquire takes the (groupID, stage) serialization slot, bounded by the
// configured wait timeout. Nothing is mutated before acquisition, so timing
// out here leaves no partial state.
func (s *AllocatorService) acquire(ctx context.Context, groupID, stage string) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()
	unlock, err := s.locks.Lock(lockCtx, lockKey(groupID, stage))
	if err != nil {
		return nil, apperrors.NewDomainError("CONTENTION",
			"timed out waiting for room assignment", http.StatusServiceUnavailable,
			map[string]any{"group_id": groupID, "stage": stage})
	}
	return unlock, nil
}

func (s *AllocatorService) publishJoin(ctx context.Context, userID string, room *domain.Room, roomCreated bool) {
	if s.dispatcher == nil {
		return
	}
	if roomCreated {
		s.publish(ctx, events.EventRoomOpened, userID, room, events.RoomStatusPayload{
			Stage:     room.Stage,
			OldStatus: domain.RoomStatusOpen,
			NewStatus: domain.RoomStatusOpen,
		})
	}
	s.publish(ctx, events.EventMemberJoined, userID, room, events.MemberJoinedPayload{
		Stage:       room.Stage,
		MemberCount: room.MemberCount,
		RoomCreated: roomCreated,
	})
	if room.Status == domain.RoomStatusFull {
		s.publish(ctx, events.EventRoomFilled, userID, room, events.RoomStatusPayload{
			Stage:     room.Stage,
			OldStatus: domain.RoomStatusOpen,
			NewStatus: domain.RoomStatusFull,
		})
	}
}

func (s *AllocatorService) publishLeave(ctx context.Context, userID string, room *domain.Room, closed, wasFull bool) {
	if s.dispatcher == nil {
		return
	}
	s.publish(ctx, events.EventMemberLeft, userID, room, events.MemberLeftPayload{
		Stage:       room.Stage,
		MemberCount: room.MemberCount,
		RoomClosed:  closed,
	})
	if closed {
		s.publish(ctx, events.EventRoomClosed, userID, room, events.RoomStatusPayload{
			Stage:     room.Stage,
			OldStatus: domain.RoomStatusClosing,
			NewStatus: domain.RoomStatusClosed,
		})
	} else if wasFull {
		s.publish(ctx, events.EventRoomReopened, userID, room, events.RoomStatusPayload{
			Stage:     room.Stage,
			OldStatus: domain.RoomStatusFull,
			NewStatus: domain.RoomStatusOpen,
		})
	}
}

func (s *AllocatorService) publish(ctx context.Context, eventType events.EventType, userID string, room *domain.Room, payload any) {
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		GroupID:   room.GroupID,
		RoomID:    room.ID,
		Actor:     events.Actor{Type: domain.SubjectTypeUser, UserID: &userID},
		Timestamp: time.Now(),
		Payload:   payload,
	}
	_ = s.dispatcher.Publish(ctx, event)
}
