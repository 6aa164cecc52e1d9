package errors

import (
	"fmt"
	"testing"
)

func TestMoodyError_Error(t *testing.T) {
	err := &MoodyError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "reminder not found",
	}

	expected := "NOT_FOUND: reminder not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("mood level must be between 1 and 5")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "mood level must be between 1 and 5" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("task-1")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["identifier"] != "task-1" {
		t.Errorf("Details[identifier] = %v, want %q", err.Details["identifier"], "task-1")
	}
}

func TestNewStorageWrite(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := NewStorageWrite("moody_entries", cause)

	if err.Code != ErrStorageWrite {
		t.Errorf("Code = %q, want %q", err.Code, ErrStorageWrite)
	}
	if err.Status != 507 {
		t.Errorf("Status = %d, want 507", err.Status)
	}
	if err.Message != "disk full" {
		t.Errorf("Message = %q, want %q", err.Message, "disk full")
	}
	if err.Details["key"] != "moody_entries" {
		t.Errorf("Details[key] = %v, want %q", err.Details["key"], "moody_entries")
	}
}

func TestNewStorageWrite_NilCause(t *testing.T) {
	err := NewStorageWrite("coachData", nil)

	if err.Message != "storage write failed" {
		t.Errorf("Message = %q, want default message", err.Message)
	}
}

func TestNewUpstreamUnavailable(t *testing.T) {
	err := NewUpstreamUnavailable(fmt.Errorf("connection refused"))

	if err.Code != ErrUpstreamUnavailable {
		t.Errorf("Code = %q, want %q", err.Code, ErrUpstreamUnavailable)
	}
	if err.Status != 502 {
		t.Errorf("Status = %d, want 502", err.Status)
	}
}

func TestNewInternal(t *testing.T) {
	err := NewInternal(fmt.Errorf("database locked"))

	if err.Code != ErrInternal {
		t.Errorf("Code = %q, want %q", err.Code, ErrInternal)
	}
	if err.Message != "database locked" {
		t.Errorf("Message = %q, want %q", err.Message, "database locked")
	}
}

func TestNewInternal_NilError(t *testing.T) {
	err := NewInternal(nil)

	if err.Message != "internal error" {
		t.Errorf("Message = %q, want %q", err.Message, "internal error")
	}
}

func TestIs(t *testing.T) {
	notFound := NewNotFound("x")

	if !Is(notFound, ErrNotFound) {
		t.Error("Is(notFound, ErrNotFound) = false, want true")
	}
	if Is(notFound, ErrInternal) {
		t.Error("Is(notFound, ErrInternal) = true, want false")
	}
	if Is(fmt.Errorf("plain"), ErrNotFound) {
		t.Error("Is(plain error, ErrNotFound) = true, want false")
	}
	if Is(nil, ErrNotFound) {
		t.Error("Is(nil, ErrNotFound) = true, want false")
	}
}
