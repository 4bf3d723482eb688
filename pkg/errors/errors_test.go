package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeInvalidInput, "bad key")

	if err.Code != CodeInvalidInput {
		t.Errorf("expected code %s, got %s", CodeInvalidInput, err.Code)
	}
	if err.Message != "bad key" {
		t.Errorf("expected message 'bad key', got %s", err.Message)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("database connection failed")
	wrapped := Wrap(originalErr, CodeInternal, "internal error")

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if wrapped.Code != CodeInternal {
		t.Errorf("expected code %s, got %s", CodeInternal, wrapped.Code)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "user not found",
			},
			expected: "NOT_FOUND: user not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("database connection failed"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := PropagationFailed(originalErr)

	if !errors.Is(appErr, originalErr) {
		t.Errorf("errors.Is should find the original error through Unwrap")
	}
}

func TestAppError_WithDetailsMerges(t *testing.T) {
	err := ConflictDetected("overlapping_booking", "slot taken")
	err = err.WithDetails(map[string]any{"booking_id": "abc"})

	if err.Details["reason"] != "overlapping_booking" {
		t.Errorf("existing detail lost, got %v", err.Details["reason"])
	}
	if err.Details["booking_id"] != "abc" {
		t.Errorf("expected booking_id 'abc', got %v", err.Details["booking_id"])
	}
}

func TestSchemaViolation(t *testing.T) {
	err := SchemaViolation(
		Violation{Field: "equipment[0].available_quantity", Reason: "exceeds total_quantity"},
		Violation{Field: "name", Reason: "name is required"},
	)

	if err.Code != CodeSchemaViolation {
		t.Errorf("expected code %s, got %s", CodeSchemaViolation, err.Code)
	}
	if err.Details["field"] != "equipment[0].available_quantity" {
		t.Errorf("expected first field, got %v", err.Details["field"])
	}
	violations, ok := err.Details["violations"].([]Violation)
	if !ok || len(violations) != 2 {
		t.Fatalf("expected 2 violations, got %v", err.Details["violations"])
	}
}

func TestSchemaViolation_Empty(t *testing.T) {
	err := SchemaViolation()
	if err.Details["field"] != "document" {
		t.Errorf("expected placeholder field, got %v", err.Details["field"])
	}
}

func TestReferentialConflict(t *testing.T) {
	err := ReferentialConflict("Gymnasium", 1, map[string]int64{"bookings": 2})

	if err.Code != CodeReferentialConflict {
		t.Errorf("expected code %s, got %s", CodeReferentialConflict, err.Code)
	}
	refs, ok := err.Details["references"].(map[string]int64)
	if !ok || refs["bookings"] != 2 {
		t.Errorf("expected 2 booking references, got %v", err.Details["references"])
	}
}

func TestHasCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("create booking: %w", ConflictDetected("court_unavailable", "court is in maintenance"))

	if !HasCode(err, CodeConflictDetected) {
		t.Errorf("HasCode should see through fmt.Errorf wrapping")
	}
	if HasCode(err, CodeNotFound) {
		t.Errorf("HasCode matched the wrong code")
	}
	if HasCode(errors.New("plain"), CodeInternal) {
		t.Errorf("HasCode should be false for plain errors")
	}
	if Reason(err) != "court_unavailable" {
		t.Errorf("Reason() = %q, want court_unavailable", Reason(err))
	}
}

func TestInvalidTransition(t *testing.T) {
	err := InvalidTransition("ticket", "open", "resolved")
	if err.Details["from"] != "open" || err.Details["to"] != "resolved" {
		t.Errorf("unexpected details %v", err.Details)
	}
}

func TestIsAppError(t *testing.T) {
	appErr := NotFound("User")
	regularErr := errors.New("regular error")

	if !IsAppError(appErr) {
		t.Errorf("IsAppError() should return true for AppError")
	}
	if IsAppError(regularErr) {
		t.Errorf("IsAppError() should return false for regular error")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("User")
	regularErr := errors.New("regular error")

	result := AsAppError(appErr)
	if result != appErr {
		t.Errorf("AsAppError() should return same AppError")
	}

	result = AsAppError(regularErr)
	if result.Code != CodeInternal {
		t.Errorf("AsAppError() should wrap regular error as internal error")
	}
	if result.Err != regularErr {
		t.Errorf("AsAppError() should wrap the original error")
	}
}

func TestAppError_ToJSON(t *testing.T) {
	err := NotFoundWithKey("User", "11122233344")
	jsonStr := string(err.ToJSON())

	if !strings.Contains(jsonStr, "NOT_FOUND") {
		t.Errorf("ToJSON() should contain error code")
	}
	if !strings.Contains(jsonStr, "11122233344") {
		t.Errorf("ToJSON() should contain the key")
	}
}
