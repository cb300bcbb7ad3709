package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeBadRequest, "slot is full", http.StatusBadRequest)

	if err.Code != CodeBadRequest {
		t.Errorf("expected code %s, got %s", CodeBadRequest, err.Code)
	}
	if err.Message != "slot is full" {
		t.Errorf("expected message 'slot is full', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, err.HTTPStatus)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   &AppError{Code: CodeNotFound, Message: "Slot not found"},
			expected: "NOT_FOUND: Slot not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "Failed to load slot",
				Err:     errors.New("connection reset"),
			},
			expected: "INTERNAL_ERROR: Failed to load slot (caused by: connection reset)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("write conflict")
	appErr := Wrap(cause, CodeInternal, "wrapped", http.StatusInternalServerError)

	if !errors.Is(appErr, cause) {
		t.Errorf("errors.Is should reach the wrapped cause")
	}
}

func TestConstructorsStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFound("User"), CodeNotFound, http.StatusNotFound},
		{"not found with id", NotFoundWithID("Slot", "abc"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad body", nil), CodeValidation, http.StatusBadRequest},
		{"invalid input", InvalidInput("bad id"), CodeInvalidInput, http.StatusBadRequest},
		{"bad request", BadRequest("Slot is full"), CodeBadRequest, http.StatusBadRequest},
		{"unauthorized", Unauthorized("Invalid credentials"), CodeUnauthorized, http.StatusUnauthorized},
		{"conflict", Conflict("phone taken"), CodeConflict, http.StatusConflict},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
		{"unavailable", Unavailable("MongoDB"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
			if tt.err.StatusCode() != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.StatusCode())
			}
		})
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Slot", "65f0c0ffee")

	if err.Message != "Slot not found" {
		t.Errorf("expected message 'Slot not found', got %s", err.Message)
	}
	if err.Details["id"] != "65f0c0ffee" {
		t.Errorf("expected id '65f0c0ffee', got %v", err.Details["id"])
	}
	if err.Details["resource"] != "Slot" {
		t.Errorf("expected resource 'Slot', got %v", err.Details["resource"])
	}
}

func TestWithDetails(t *testing.T) {
	err := Validation("invalid body", nil).WithDetails(map[string]any{"field": "pincode"})

	if err.Details["field"] != "pincode" {
		t.Errorf("expected field 'pincode', got %v", err.Details["field"])
	}
}

func TestIsAppError(t *testing.T) {
	wrapped := fmt.Errorf("register: %w", BadRequest("Slot is full"))

	if !IsAppError(wrapped) {
		t.Errorf("IsAppError() should see through wrapping")
	}
	if IsAppError(errors.New("plain")) {
		t.Errorf("IsAppError() should return false for a plain error")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("User")
	if AsAppError(appErr) != appErr {
		t.Errorf("AsAppError() should return the same AppError")
	}

	plain := errors.New("socket closed")
	result := AsAppError(plain)
	if result.Code != CodeInternal {
		t.Errorf("expected internal code, got %s", result.Code)
	}
	if result.Message != "Internal server error" {
		t.Errorf("expected generic message, got %s", result.Message)
	}
	if result.Err != plain {
		t.Errorf("AsAppError() should keep the original error")
	}
}
