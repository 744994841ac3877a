package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-room-service/internal/api/dto"
	"github.com/spec-kit/support-room-service/internal/auth"
	"github.com/spec-kit/support-room-service/internal/domain"
	"github.com/spec-kit/support-room-service/internal/service"
	apperrors "github.com/spec-kit/support-room-service/pkg/util"
)

// RoomsHandler manages join/leave and room read endpoints.
type RoomsHandler struct {
	allocator *service.AllocatorService
	rooms     *service.RoomService
}

// NewRoomsHandler constructs handler.
func NewRoomsHandler(allocator *service.AllocatorService, rooms *service.RoomService) *RoomsHandler {
	return &RoomsHandler{allocator: allocator, rooms: rooms}
}

// Join POST /groups/:id/stages/:stage/join.
func (h *RoomsHandler) Join(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	groupID := c.Params("id")
	stage := c.Params("stage")
	if groupID == "" || stage == "" {
		return apperrors.NewValidationError("group id and stage required", nil)
	}

	room, err := h.allocator.Join(c.UserContext(), groupID, stage, principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": joinResponse(room)})
}

// Leave POST /rooms/:id/leave.
func (h *RoomsHandler) Leave(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.allocator.Leave(c.UserContext(), c.Params("id"), principal.User.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Members GET /rooms/:id/members.
func (h *RoomsHandler) Members(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return apperrors.NewUnauthorized("user required")
	}
	members, err := h.rooms.ListMembers(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if members == nil {
		members = []string{}
	}
	return c.JSON(fiber.Map{"data": members})
}

// MyRooms GET /me/rooms.
func (h *RoomsHandler) MyRooms(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	placements, err := h.rooms.MyRooms(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	items := make([]dto.ActiveRoomResponse, 0, len(placements))
	for _, p := range placements {
		items = append(items, dto.ActiveRoomResponse{
			GroupID: p.GroupID,
			RoomID:  p.RoomID,
			Stage:   p.Stage,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func joinResponse(room *domain.Room) dto.JoinRoomResponse {
	return dto.JoinRoomResponse{
		RoomID:      room.ID,
		GroupID:     room.GroupID,
		Stage:       room.Stage,
		MemberCount: room.MemberCount,
		Capacity:    room.Capacity,
		Status:      room.Status,
	}
}
