package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   &AppError{Code: CodeNotFound, Message: "Booking not found"},
			expected: "NOT_FOUND: Booking not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("connection reset"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: connection reset)",
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

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFound("Room"), CodeNotFound, http.StatusNotFound},
		{"not found with id", NotFoundWithID("Booking", "b-1"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("invalid profile", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad date"), CodeInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("missing identity"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("not the booking owner"), CodeForbidden, http.StatusForbidden},
		{"conflict", Conflict("room is not available"), CodeConflict, http.StatusConflict},
		{"internal", Internal("boom", errors.New("db")), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"too large", TooLarge(1024), CodeTooLarge, http.StatusRequestEntityTooLarge},
		{"rate limited", RateLimited(), CodeRateLimited, http.StatusTooManyRequests},
		{"external", External("payment", errors.New("stripe down")), CodeExternal, http.StatusBadGateway},
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
	err := NotFoundWithID("Booking", "b-42")

	if err.Message != "Booking not found" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if err.Details["id"] != "b-42" || err.Details["resource"] != "Booking" {
		t.Errorf("unexpected details %v", err.Details)
	}
}

func TestValidationFields(t *testing.T) {
	err := ValidationFields("invalid guest profile", map[string]string{
		"birth_date":      "guest must be at least 18 years old",
		"document_number": "document_number has an invalid format",
	})

	if err.Code != CodeValidation {
		t.Fatalf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if len(err.Details) != 2 {
		t.Fatalf("expected every field in details, got %v", err.Details)
	}
	if err.Details["birth_date"] != "guest must be at least 18 years old" {
		t.Errorf("unexpected birth_date message %v", err.Details["birth_date"])
	}
}

func TestExternal_KeepsCause(t *testing.T) {
	cause := errors.New("lock offline")
	err := External("smart lock", cause)

	if !errors.Is(err, cause) {
		t.Errorf("External() should unwrap to the cause")
	}
	if err.Details["service"] != "smart lock" {
		t.Errorf("expected service detail, got %v", err.Details)
	}
}

func TestIsAppError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("create booking: %w", Conflict("room is not available"))

	if !IsAppError(wrapped) {
		t.Errorf("IsAppError() should see through wrapping")
	}
	if IsAppError(errors.New("plain")) {
		t.Errorf("IsAppError() should return false for a plain error")
	}
	if !HasCode(wrapped, CodeConflict) {
		t.Errorf("HasCode() should match the wrapped conflict")
	}
	if HasCode(wrapped, CodeNotFound) {
		t.Errorf("HasCode() should not match a different code")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("Guest")
	if AsAppError(appErr) != appErr {
		t.Errorf("AsAppError() should return the same AppError")
	}

	plain := errors.New("plain")
	result := AsAppError(plain)
	if result.Code != CodeInternal || result.Err != plain {
		t.Errorf("AsAppError() should wrap a plain error as internal, got %+v", result)
	}
}
