package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-room-service/internal/api/dto"
	"github.com/spec-kit/support-room-service/internal/auth"
	"github.com/spec-kit/support-room-service/internal/domain"
	"github.com/spec-kit/support-room-service/internal/service"
	apperrors "github.com/spec-kit/support-room-service/pkg/util"
)

// GroupsHandler manages the support-group catalog endpoints.
type GroupsHandler struct {
	groups *service.GroupService
	stats  *service.StatsService
}

// NewGroupsHandler constructs handler.
func NewGroupsHandler(groups *service.GroupService, stats *service.StatsService) *GroupsHandler {
	return &GroupsHandler{groups: groups, stats: stats}
}

// Create POST /groups.
func (h *GroupsHandler) Create(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	stages := make([]service.StageInput, 0, len(req.Stages))
	for _, stage := range req.Stages {
		stages = append(stages, service.StageInput{Stage: stage.Stage, Capacity: stage.Capacity})
	}
	group, err := h.groups.CreateGroup(c.UserContext(), service.GroupCreateInput{
		Name:        req.Name,
		Description: req.Description,
		Stages:      stages,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": groupResponse(group)})
}

// List GET /groups.
func (h *GroupsHandler) List(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("user required")
	}
	includeArchived := c.QueryBool("include_archived", false)
	groups, err := h.groups.ListGroups(c.UserContext(), includeArchived)
	if err != nil {
		return err
	}
	items := make([]dto.GroupResponse, 0, len(groups))
	for i := range groups {
		items = append(items, groupResponse(&groups[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /groups/:id.
func (h *GroupsHandler) Get(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("user required")
	}
	group, err := h.groups.GetGroup(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": groupResponse(group)})
}

// Archive POST /groups/:id/archive.
func (h *GroupsHandler) Archive(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("user required")
	}
	group, err := h.groups.ArchiveGroup(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": groupResponse(group)})
}

// Stats GET /groups/:id/stats.
func (h *GroupsHandler) Stats(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("user required")
	}
	stats, err := h.stats.GroupStats(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.GroupStatsFromDomain(stats)})
}

func groupResponse(group *domain.SupportGroup) dto.GroupResponse {
	stages := make([]dto.StageResponse, 0, len(group.Stages))
	for _, stage := range group.Stages {
		stages = append(stages, dto.StageResponse{Stage: stage.Stage, Capacity: stage.Capacity})
	}
	return dto.GroupResponse{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		Stages:      stages,
		IsArchived:  group.IsArchived,
		CreatedAt:   group.CreatedAt,
	}
}
