package domain

import "time"

// StageConfig defines one discussion stage of a support group and the room
// capacity configured for it.
type StageConfig struct {
	Stage    string
	Capacity int
	Position int
}

// SupportGroup is the catalog entry for a support group. Immutable after
// creation except archival; archiving stops new rooms from being created but
// does not evict existing members.
type SupportGroup struct {
	ID          string
	Name        string
	Description string
	Stages      []StageConfig
	IsArchived  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StageCapacity returns the configured capacity for a stage, or false when
// the group does not run that stage.
func (g *SupportGroup) StageCapacity(stage string) (int, bool) {
	for _, s := range g.Stages {
		if s.Stage == stage {
			return s.Capacity, true
		}
	}
	return 0, false
}
