package service

import (
	"context"
	"testing"
)

func newGroupServiceFixture(t *testing.T) (*GroupService, *fakeGroupRepo) {
	t.Helper()
	store := newMemStore()
	groups := &fakeGroupRepo{store: store}
	return NewGroupService(groups, fakeTxRunner{}, 8), groups
}

func TestCreateGroup(t *testing.T) {
	svc, _ := newGroupServiceFixture(t)

	group, err := svc.CreateGroup(context.Background(), GroupCreateInput{
		Name:        "  grief support  ",
		Description: "weekly sessions",
		Stages: []StageInput{
			{Stage: "intro", Capacity: 6},
			{Stage: "deep-dive"},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if group.Name != "grief support" {
		t.Fatalf("name = %q, want trimmed", group.Name)
	}
	if len(group.Stages) != 2 {
		t.Fatalf("stages = %d, want 2", len(group.Stages))
	}
	if group.Stages[0].Capacity != 6 {
		t.Fatalf("intro capacity = %d, want 6", group.Stages[0].Capacity)
	}
	// Omitted capacity falls back to the configured default.
	if group.Stages[1].Capacity != 8 {
		t.Fatalf("deep-dive capacity = %d, want default 8", group.Stages[1].Capacity)
	}
	if group.Stages[1].Position != 1 {
		t.Fatalf("deep-dive position = %d, want 1", group.Stages[1].Position)
	}
}

func TestCreateGroupValidation(t *testing.T) {
	svc, _ := newGroupServiceFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input GroupCreateInput
	}{
		{"empty name", GroupCreateInput{Stages: []StageInput{{Stage: "intro"}}}},
		{"no stages", GroupCreateInput{Name: "g"}},
		{"blank stage", GroupCreateInput{Name: "g", Stages: []StageInput{{Stage: "  "}}}},
		{"duplicate stage", GroupCreateInput{Name: "g", Stages: []StageInput{{Stage: "intro"}, {Stage: "intro"}}}},
		{"negative capacity", GroupCreateInput{Name: "g", Stages: []StageInput{{Stage: "intro", Capacity: -1}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateGroup(ctx, tc.input)
			assertErrCode(t, err, "VALIDATION_FAILED")
		})
	}
}

func TestArchiveGroup(t *testing.T) {
	svc, _ := newGroupServiceFixture(t)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, GroupCreateInput{
		Name:   "panic support",
		Stages: []StageInput{{Stage: "intro"}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	archived, err := svc.ArchiveGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !archived.IsArchived {
		t.Fatal("group should be archived")
	}

	// Archiving twice is a no-op.
	if _, err := svc.ArchiveGroup(ctx, group.ID); err != nil {
		t.Fatalf("repeat archive: %v", err)
	}

	_, err = svc.ArchiveGroup(ctx, "missing")
	assertErrCode(t, err, "NOT_FOUND")
}

func TestListGroupsExcludesArchivedByDefault(t *testing.T) {
	svc, _ := newGroupServiceFixture(t)
	ctx := context.Background()

	active, err := svc.CreateGroup(ctx, GroupCreateInput{Name: "active", Stages: []StageInput{{Stage: "intro"}}})
	if err != nil {
		t.Fatalf("create active: %v", err)
	}
	retired, err := svc.CreateGroup(ctx, GroupCreateInput{Name: "retired", Stages: []StageInput{{Stage: "intro"}}})
	if err != nil {
		t.Fatalf("create retired: %v", err)
	}
	if _, err := svc.ArchiveGroup(ctx, retired.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}

	visible, err := svc.ListGroups(ctx, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != active.ID {
		t.Fatalf("visible groups = %+v, want only the active one", visible)
	}

	all, err := svc.ListGroups(ctx, true)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all groups = %d, want 2", len(all))
	}
}

func TestGetGroup(t *testing.T) {
	svc, _ := newGroupServiceFixture(t)
	ctx := context.Background()

	created, err := svc.CreateGroup(ctx, GroupCreateInput{Name: "g", Stages: []StageInput{{Stage: "intro", Capacity: 3}}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := svc.GetGroup(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if capacity, ok := got.StageCapacity("intro"); !ok || capacity != 3 {
		t.Fatalf("stage capacity = %d/%v, want 3/true", capacity, ok)
	}
	if _, ok := got.StageCapacity("nope"); ok {
		t.Fatal("unknown stage should not resolve")
	}

	_, err = svc.GetGroup(ctx, "missing")
	assertErrCode(t, err, "NOT_FOUND")
}
