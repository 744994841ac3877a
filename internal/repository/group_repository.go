package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-room-service/internal/domain"
)

// GroupRepository is the catalog of support groups and their stage
// configuration.
type GroupRepository interface {
	// WithTx rebinds the repository onto a transaction.
	WithTx(tx pgx.Tx) GroupRepository

	Create(ctx context.Context, group *domain.SupportGroup) error
	GetByID(ctx context.Context, id string) (*domain.SupportGroup, error)
	List(ctx context.Context, includeArchived bool) ([]domain.SupportGroup, error)
	// Archive flips is_archived. Archiving twice is a no-op.
	Archive(ctx context.Context, id string) error
}

type groupRepository struct {
	db Querier
}

// NewGroupRepository instantiates repository.
func NewGroupRepository(db Querier) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) WithTx(tx pgx.Tx) GroupRepository {
	return &groupRepository{db: tx}
}

func (r *groupRepository) Create(ctx context.Context, group *domain.SupportGroup) error {
	const groupQuery = `
        INSERT INTO support_groups (id, name, description, is_archived)
        VALUES ($1,$2,$3,FALSE)
        RETURNING created_at, updated_at`
	if err := r.db.QueryRow(ctx, groupQuery,
		group.ID,
		group.Name,
		group.Description,
	).Scan(&group.CreatedAt, &group.UpdatedAt); err != nil {
		return err
	}

	const stageQuery = `
        INSERT INTO group_stages (group_id, stage, capacity, position)
        VALUES ($1,$2,$3,$4)`
	for _, stage := range group.Stages {
		if _, err := r.db.Exec(ctx, stageQuery, group.ID, stage.Stage, stage.Capacity, stage.Position); err != nil {
			return err
		}
	}
	return nil
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (*domain.SupportGroup, error) {
	const query = `
        SELECT id, name, description, is_archived, created_at, updated_at
        FROM support_groups WHERE id=$1`
	var group domain.SupportGroup
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.Description,
		&group.IsArchived,
		&group.CreatedAt,
		&group.UpdatedAt,
	); err != nil {
		return nil, err
	}

	stages, err := r.listStages(ctx, id)
	if err != nil {
		return nil, err
	}
	group.Stages = stages
	return &group, nil
}

func (r *groupRepository) List(ctx context.Context, includeArchived bool) ([]domain.SupportGroup, error) {
	query := `
        SELECT id, name, description, is_archived, created_at, updated_at
        FROM support_groups`
	if !includeArchived {
		query += ` WHERE NOT is_archived`
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []domain.SupportGroup
	for rows.Next() {
		var group domain.SupportGroup
		if err := rows.Scan(
			&group.ID,
			&group.Name,
			&group.Description,
			&group.IsArchived,
			&group.CreatedAt,
			&group.UpdatedAt,
		); err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range groups {
		stages, err := r.listStages(ctx, groups[i].ID)
		if err != nil {
			return nil, err
		}
		groups[i].Stages = stages
	}
	return groups, nil
}

func (r *groupRepository) Archive(ctx context.Context, id string) error {
	const query = `
        UPDATE support_groups SET is_archived=TRUE, updated_at=NOW()
        WHERE id=$1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *groupRepository) listStages(ctx context.Context, groupID string) ([]domain.StageConfig, error) {
	const query = `
        SELECT stage, capacity, position
        FROM group_stages WHERE group_id=$1
        ORDER BY position`
	rows, err := r.db.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stages []domain.StageConfig
	for rows.Next() {
		var stage domain.StageConfig
		if err := rows.Scan(&stage.Stage, &stage.Capacity, &stage.Position); err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}
	return stages, rows.Err()
}
