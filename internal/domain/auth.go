package domain

import "time"

// SubjectType identifies the kind of authenticated caller.
type SubjectType string

const (
	SubjectTypeUser SubjectType = "USER"
)

// Token represents issued authentication token metadata.
type Token struct {
	ID        string
	SubjectID string
	Subject   SubjectType
	ExpiresAt time.Time
	IssuedAt  time.Time
}
