package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-room-service/internal/domain"
)

// MembershipRepository is the durable ledger of room occupancy. Rows are
// deactivated, never deleted; a partial unique index keeps at most one active
// membership per (user, group).
type MembershipRepository interface {
	// WithTx rebinds the repository onto a transaction.
	WithTx(tx pgx.Tx) MembershipRepository

	// Create activates a membership. Keyed by (userID, roomID): rejoining a
	// room previously left reactivates the historical row instead of
	// inserting a duplicate.
	Create(ctx context.Context, membership *domain.Membership) error
	// GetForUserInRoom returns the membership row for (userID, roomID)
	// regardless of active flag, or pgx.ErrNoRows.
	GetForUserInRoom(ctx context.Context, userID, roomID string) (*domain.Membership, error)
	// ActiveForUserInGroup returns the single active membership for the user
	// in the group, or pgx.ErrNoRows.
	ActiveForUserInGroup(ctx context.Context, userID, groupID string) (*domain.Membership, error)
	// Deactivate flips the membership inactive. Already-inactive rows are a
	// no-op; the returned bool reports whether a row actually changed.
	Deactivate(ctx context.Context, userID, roomID string) (bool, error)
	// ListMembers returns active user identifiers for the room.
	ListMembers(ctx context.Context, roomID string) ([]string, error)
	// ListActiveByUser returns the user's current placements across groups.
	ListActiveByUser(ctx context.Context, userID string) ([]domain.ActiveRoom, error)
}

type membershipRepository struct {
	db Querier
}

// NewMembershipRepository instantiates repository.
func NewMembershipRepository(db Querier) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) WithTx(tx pgx.Tx) MembershipRepository {
	return &membershipRepository{db: tx}
}

func (r *membershipRepository) Create(ctx context.Context, membership *domain.Membership) error {
	const query = `
        INSERT INTO memberships (id, user_id, room_id, group_id, active)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (user_id, room_id)
        DO UPDATE SET active=EXCLUDED.active, joined_at=NOW(), left_at=NULL
        RETURNING joined_at`
	return r.db.QueryRow(ctx, query,
		membership.ID,
		membership.UserID,
		membership.RoomID,
		membership.GroupID,
		membership.Active,
	).Scan(&membership.JoinedAt)
}

func (r *membershipRepository) GetForUserInRoom(ctx context.Context, userID, roomID string) (*domain.Membership, error) {
	const query = `
        SELECT id, user_id, room_id, group_id, active, joined_at, left_at
        FROM memberships WHERE user_id=$1 AND room_id=$2`
	return r.fetchSingle(ctx, query, userID, roomID)
}

func (r *membershipRepository) ActiveForUserInGroup(ctx context.Context, userID, groupID string) (*domain.Membership, error) {
	const query = `
        SELECT id, user_id, room_id, group_id, active, joined_at, left_at
        FROM memberships WHERE user_id=$1 AND group_id=$2 AND active`
	return r.fetchSingle(ctx, query, userID, groupID)
}

func (r *membershipRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Membership, error) {
	var m domain.Membership
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&m.ID,
		&m.UserID,
		&m.RoomID,
		&m.GroupID,
		&m.Active,
		&m.JoinedAt,
		&m.LeftAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *membershipRepository) Deactivate(ctx context.Context, userID, roomID string) (bool, error) {
	const query = `
        UPDATE memberships SET active=FALSE, left_at=NOW()
        WHERE user_id=$1 AND room_id=$2 AND active`
	cmd, err := r.db.Exec(ctx, query, userID, roomID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *membershipRepository) ListMembers(ctx context.Context, roomID string) ([]string, error) {
	const query = `
        SELECT user_id FROM memberships
        WHERE room_id=$1 AND active
        ORDER BY joined_at, user_id`
	rows, err := r.db.Query(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		users = append(users, userID)
	}
	return users, rows.Err()
}

func (r *membershipRepository) ListActiveByUser(ctx context.Context, userID string) ([]domain.ActiveRoom, error) {
	const query = `
        SELECT m.group_id, m.room_id, r.stage
        FROM memberships m
        JOIN rooms r ON r.id = m.room_id
        WHERE m.user_id=$1 AND m.active
        ORDER BY m.joined_at`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ActiveRoom
	for rows.Next() {
		var ar domain.ActiveRoom
		if err := rows.Scan(&ar.GroupID, &ar.RoomID, &ar.Stage); err != nil {
			return nil, err
		}
		result = append(result, ar)
	}
	return result, rows.Err()
}
