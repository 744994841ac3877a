package service

import (
	"context"
	"testing"

	"github.com/spec-kit/support-room-service/internal/domain"
)

func TestRoomServiceListMembers(t *testing.T) {
	f := newAllocatorFixture(t)
	group := f.seedGroup(t, domain.StageConfig{Stage: "intro", Capacity: 4})
	ctx := context.Background()
	svc := NewRoomService(f.rooms, f.memberships)

	room, err := f.allocator.Join(ctx, group.ID, "intro", "user-1")
	if err != nil {
		t.Fatalf("join user-1: %v", err)
	}
	if _, err := f.allocator.Join(ctx, group.ID, "intro", "user-2"); err != nil {
		t.Fatalf("join user-2: %v", err)
	}

	members, err := svc.ListMembers(ctx, room.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 || members[0] != "user-1" || members[1] != "user-2" {
		t.Fatalf("members = %v, want [user-1 user-2] in join order", members)
	}

	// Left members disappear from the roster.
	if err := f.allocator.Leave(ctx, room.ID, "user-1"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	members, err = svc.ListMembers(ctx, room.ID)
	if err != nil {
		t.Fatalf("list members after leave: %v", err)
	}
	if len(members) != 1 || members[0] != "user-2" {
		t.Fatalf("members = %v, want [user-2]", members)
	}

	_, err = svc.ListMembers(ctx, "missing-room")
	assertErrCode(t, err, "NOT_FOUND")
}

func TestRoomServiceMyRooms(t *testing.T) {
	f := newAllocatorFixture(t)
	first := f.seedGroup(t, domain.StageConfig{Stage: "intro", Capacity: 4})
	second := f.seedGroup(t, domain.StageConfig{Stage: "intro", Capacity: 4})
	ctx := context.Background()
	svc := NewRoomService(f.rooms, f.memberships)

	if _, err := f.allocator.Join(ctx, first.ID, "intro", "user-1"); err != nil {
		t.Fatalf("join first group: %v", err)
	}
	if _, err := f.allocator.Join(ctx, second.ID, "intro", "user-1"); err != nil {
		t.Fatalf("join second group: %v", err)
	}

	placements, err := svc.MyRooms(ctx, "user-1")
	if err != nil {
		t.Fatalf("my rooms: %v", err)
	}
	if len(placements) != 2 {
		t.Fatalf("placements = %d, want one per group", len(placements))
	}
	groupsSeen := map[string]bool{}
	for _, placement := range placements {
		groupsSeen[placement.GroupID] = true
		if placement.Stage != "intro" {
			t.Fatalf("stage = %s, want intro", placement.Stage)
		}
	}
	if !groupsSeen[first.ID] || !groupsSeen[second.ID] {
		t.Fatalf("placements %v missing a group", placements)
	}

	empty, err := svc.MyRooms(ctx, "nobody")
	if err != nil {
		t.Fatalf("my rooms for unknown user: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("placements = %v, want none", empty)
	}
}

func TestRoomServiceGetRoom(t *testing.T) {
	f := newAllocatorFixture(t)
	group := f.seedGroup(t, domain.StageConfig{Stage: "intro", Capacity: 4})
	ctx := context.Background()
	svc := NewRoomService(f.rooms, f.memberships)

	room, err := f.allocator.Join(ctx, group.ID, "intro", "user-1")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	got, err := svc.GetRoom(ctx, room.ID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if got.ID != room.ID || got.MemberCount != 1 {
		t.Fatalf("room = %+v, want id %s with one member", got, room.ID)
	}

	_, err = svc.GetRoom(ctx, "missing")
	assertErrCode(t, err, "NOT_FOUND")
}
