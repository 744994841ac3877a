package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-room-service/internal/domain"
	"github.com/spec-kit/support-room-service/internal/repository"
	apperrors "github.com/spec-kit/support-room-service/pkg/util"
)

// GroupService manages the support-group catalog: groups, their stage lists
// and per-stage capacities.
type GroupService struct {
	groups          repository.GroupRepository
	tx              repository.TxRunner
	defaultCapacity int
}

// StageInput configures one stage at group creation.
type StageInput struct {
	Stage    string
	Capacity int
}

// GroupCreateInput captures group creation parameters.
type GroupCreateInput struct {
	Name        string
	Description string
	Stages      []StageInput
}

// NewGroupService creates the service.
func NewGroupService(groups repository.GroupRepository, tx repository.TxRunner, defaultCapacity int) *GroupService {
	if defaultCapacity <= 0 {
		defaultCapacity = 8
	}
	return &GroupService{groups: groups, tx: tx, defaultCapacity: defaultCapacity}
}

// CreateGroup validates and persists a group with its stages in one
// transaction.
func (s *GroupService) CreateGroup(ctx context.Context, input GroupCreateInput) (*domain.SupportGroup, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if len(input.Stages) == 0 {
		return nil, apperrors.NewValidationError("at least one stage required", nil)
	}

	seen := make(map[string]struct{}, len(input.Stages))
	stages := make([]domain.StageConfig, 0, len(input.Stages))
	for i, stage := range input.Stages {
		name := strings.TrimSpace(stage.Stage)
		if name == "" {
			return nil, apperrors.NewValidationError("stage name required", nil)
		}
		if _, dup := seen[name]; dup {
			return nil, apperrors.NewValidationError("duplicate stage", map[string]any{"stage": name})
		}
		seen[name] = struct{}{}

		capacity := stage.Capacity
		if capacity == 0 {
			capacity = s.defaultCapacity
		}
		if capacity < 0 {
			return nil, apperrors.NewValidationError("capacity must be positive", map[string]any{"stage": name})
		}
		stages = append(stages, domain.StageConfig{Stage: name, Capacity: capacity, Position: i})
	}

	group := &domain.SupportGroup{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Stages:      stages,
	}
	err := s.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		return s.groups.WithTx(tx).Create(ctx, group)
	})
	if err != nil {
		return nil, apperrors.NewPersistenceFailure(err)
	}
	return group, nil
}

// GetGroup returns a group by id.
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*domain.SupportGroup, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("group", map[string]any{"group_id": groupID})
		}
		return nil, apperrors.MapError(err)
	}
	return group, nil
}

// ListGroups lists groups, optionally including archived ones.
func (s *GroupService) ListGroups(ctx context.Context, includeArchived bool) ([]domain.SupportGroup, error) {
	groups, err := s.groups.List(ctx, includeArchived)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return groups, nil
}

// ArchiveGroup stops new rooms from being created for the group. Members of
// existing rooms are not evicted.
func (s *GroupService) ArchiveGroup(ctx context.Context, groupID string) (*domain.SupportGroup, error) {
	if err := s.groups.Archive(ctx, groupID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("group", map[string]any{"group_id": groupID})
		}
		return nil, apperrors.MapError(err)
	}
	return s.GetGroup(ctx, groupID)
}
