package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-room-service/internal/domain"
)

// RoomRepository encapsulates room persistence. Status and member_count are
// written only through the conditional mutations below, so the lifecycle
// service stays the sole writer of room state.
type RoomRepository interface {
	// WithTx rebinds the repository onto a transaction.
	WithTx(tx pgx.Tx) RoomRepository

	Create(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, id string) (*domain.Room, error)
	// ListOpen returns OPEN rooms for (groupID, stage) ordered oldest-created
	// first, room id as the deterministic tie-break.
	ListOpen(ctx context.Context, groupID, stage string) ([]domain.Room, error)
	// ListActiveByGroup returns every non-CLOSED room of the group.
	ListActiveByGroup(ctx context.Context, groupID string) ([]domain.Room, error)
	// ReserveSeat increments member_count iff the room is OPEN with free
	// capacity, returning the new count. pgx.ErrNoRows means the guard failed.
	ReserveSeat(ctx context.Context, roomID string) (int, error)
	// ReleaseSeat decrements member_count iff it is above zero on a non-CLOSED
	// room, returning the new count.
	ReleaseSeat(ctx context.Context, roomID string) (int, error)
	// TransitionStatus moves the room from one of the given statuses to the
	// target status. pgx.ErrNoRows means the room was not in an allowed state.
	TransitionStatus(ctx context.Context, roomID string, from []domain.RoomStatus, to domain.RoomStatus) error
}

type roomRepository struct {
	db Querier
}

// NewRoomRepository instantiates repository.
func NewRoomRepository(db Querier) RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) WithTx(tx pgx.Tx) RoomRepository {
	return &roomRepository{db: tx}
}

func (r *roomRepository) Create(ctx context.Context, room *domain.Room) error {
	const query = `
        INSERT INTO rooms (id, group_id, stage, capacity, member_count, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		room.ID,
		room.GroupID,
		room.Stage,
		room.Capacity,
		room.MemberCount,
		room.Status,
	).Scan(&room.CreatedAt, &room.UpdatedAt)
}

func (r *roomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	const query = `
        SELECT id, group_id, stage, capacity, member_count, status, created_at, updated_at
        FROM rooms WHERE id=$1`
	var room domain.Room
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&room.ID,
		&room.GroupID,
		&room.Stage,
		&room.Capacity,
		&room.MemberCount,
		&room.Status,
		&room.CreatedAt,
		&room.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) ListOpen(ctx context.Context, groupID, stage string) ([]domain.Room, error) {
	const query = `
        SELECT id, group_id, stage, capacity, member_count, status, created_at, updated_at
        FROM rooms
        WHERE group_id=$1 AND stage=$2 AND status=$3
        ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query, groupID, stage, domain.RoomStatusOpen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRooms(rows)
}

func (r *roomRepository) ListActiveByGroup(ctx context.Context, groupID string) ([]domain.Room, error) {
	const query = `
        SELECT id, group_id, stage, capacity, member_count, status, created_at, updated_at
        FROM rooms
        WHERE group_id=$1 AND status <> $2
        ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query, groupID, domain.RoomStatusClosed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRooms(rows)
}

func (r *roomRepository) ReserveSeat(ctx context.Context, roomID string) (int, error) {
	const query = `
        UPDATE rooms SET member_count = member_count + 1, updated_at = NOW()
        WHERE id=$1 AND status=$2 AND member_count < capacity
        RETURNING member_count`
	var count int
	if err := r.db.QueryRow(ctx, query, roomID, domain.RoomStatusOpen).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *roomRepository) ReleaseSeat(ctx context.Context, roomID string) (int, error) {
	const query = `
        UPDATE rooms SET member_count = member_count - 1, updated_at = NOW()
        WHERE id=$1 AND status <> $2 AND member_count > 0
        RETURNING member_count`
	var count int
	if err := r.db.QueryRow(ctx, query, roomID, domain.RoomStatusClosed).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *roomRepository) TransitionStatus(ctx context.Context, roomID string, from []domain.RoomStatus, to domain.RoomStatus) error {
	const query = `
        UPDATE rooms SET status=$1, updated_at=NOW()
        WHERE id=$2 AND status = ANY($3)`
	states := make([]string, 0, len(from))
	for _, s := range from {
		states = append(states, string(s))
	}
	cmd, err := r.db.Exec(ctx, query, to, roomID, states)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanRooms(rows pgx.Rows) ([]domain.Room, error) {
	var result []domain.Room
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(
			&room.ID,
			&room.GroupID,
			&room.Stage,
			&room.Capacity,
			&room.MemberCount,
			&room.Status,
			&room.CreatedAt,
			&room.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, room)
	}
	return result, rows.Err()
}
