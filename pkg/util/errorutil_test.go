package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestToDomainErrorPassthrough(t *testing.T) {
	original := NewAlreadyMember("g1", "r1")
	mapped := ToDomainError(original)
	if mapped.Code != "ALREADY_MEMBER" || mapped.HTTPStatus != http.StatusConflict {
		t.Fatalf("mapped = %+v, want ALREADY_MEMBER 409", mapped)
	}
	if mapped.Details["room_id"] != "r1" {
		t.Fatalf("details = %v, want room_id r1", mapped.Details)
	}
}

func TestToDomainErrorWrapped(t *testing.T) {
	wrapped := fmt.Errorf("leave failed: %w", NewNotAMember("r1", "u1"))
	mapped := ToDomainError(wrapped)
	if mapped.Code != "NOT_A_MEMBER" {
		t.Fatalf("code = %s, want NOT_A_MEMBER", mapped.Code)
	}
}

func TestToDomainErrorNoRows(t *testing.T) {
	mapped := ToDomainError(pgx.ErrNoRows)
	if mapped.Code != "NOT_FOUND" || mapped.HTTPStatus != http.StatusNotFound {
		t.Fatalf("mapped = %+v, want NOT_FOUND 404", mapped)
	}
}

func TestToDomainErrorUnknown(t *testing.T) {
	mapped := ToDomainError(errors.New("boom"))
	if mapped.Code != "INTERNAL_ERROR" || mapped.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("mapped = %+v, want INTERNAL_ERROR 500", mapped)
	}
}

func TestPersistenceFailureUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewPersistenceFailure(cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected the cause to survive wrapping")
	}
	if !IsCode(err, "PERSISTENCE_FAILURE") {
		t.Fatalf("err = %v, want PERSISTENCE_FAILURE", err)
	}
}

func TestIsCode(t *testing.T) {
	if !IsCode(NewGroupArchived("g1"), "GROUP_ARCHIVED") {
		t.Fatal("expected GROUP_ARCHIVED match")
	}
	if IsCode(NewGroupArchived("g1"), "NOT_FOUND") {
		t.Fatal("codes must not cross-match")
	}
	if IsCode(errors.New("plain"), "GROUP_ARCHIVED") {
		t.Fatal("plain errors carry no code")
	}
	if IsCode(nil, "GROUP_ARCHIVED") {
		t.Fatal("nil carries no code")
	}
}
