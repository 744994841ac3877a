package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

// NewGroupArchived rejects joins against a group that no longer accepts them.
func NewGroupArchived(groupID string) error {
	return NewDomainError("GROUP_ARCHIVED", "group no longer accepts joins", http.StatusConflict,
		map[string]any{"group_id": groupID})
}

// NewAlreadyMember signals the caller already holds an active membership in
// another room of the group.
func NewAlreadyMember(groupID, roomID string) error {
	return NewDomainError("ALREADY_MEMBER", "user already occupies a room in this group", http.StatusConflict,
		map[string]any{"group_id": groupID, "room_id": roomID})
}

// NewNotAMember signals a leave for a membership that never existed.
func NewNotAMember(roomID, userID string) error {
	return NewDomainError("NOT_A_MEMBER", "no membership for user in room", http.StatusNotFound,
		map[string]any{"room_id": roomID, "user_id": userID})
}

// NewCapacityRace marks a capacity guard failure inside the serialized
// critical section. It must never reach callers under correct serialization.
func NewCapacityRace(roomID string) error {
	return &DomainError{
		Code:       "CAPACITY_RACE",
		Message:    "capacity guard rejected a serialized update",
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"room_id": roomID},
	}
}

// NewPersistenceFailure wraps a failed transactional write. The whole unit
// rolled back; callers may retry.
func NewPersistenceFailure(err error) error {
	return &DomainError{
		Code:       "PERSISTENCE_FAILURE",
		Message:    "transactional write failed",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// IsCode reports whether err is a DomainError carrying the given code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
