package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
)

const (
	CodeSchemaViolation     = "SCHEMA_VIOLATION"
	CodeDuplicateKey        = "DUPLICATE_KEY"
	CodeNotFound            = "NOT_FOUND"
	CodeReferentialConflict = "REFERENTIAL_CONFLICT"
	CodeConflictDetected    = "CONFLICT_DETECTED"
	CodePropagationFailed   = "PROPAGATION_FAILED"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeLockUnavailable     = "LOCK_UNAVAILABLE"
	CodeInternal            = "INTERNAL_ERROR"
	CodeTimeout             = "TIMEOUT"
)

// AppError is the typed result every store operation returns on failure.
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Err     error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) ToJSON() []byte {
	response := ErrorResponse{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
	data, _ := json.Marshal(response)
	return data
}

type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// Violation is one failed structural check.
type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// SchemaViolation reports the first violation in field/reason and keeps the
// full list under "violations".
func SchemaViolation(violations ...Violation) *AppError {
	if len(violations) == 0 {
		violations = []Violation{{Field: "document", Reason: "invalid document"}}
	}
	first := violations[0]
	return &AppError{
		Code:    CodeSchemaViolation,
		Message: fmt.Sprintf("%s: %s", first.Field, first.Reason),
		Details: map[string]any{
			"field":      first.Field,
			"reason":     first.Reason,
			"violations": violations,
		},
	}
}

func DuplicateKey(collection string, key any) *AppError {
	return &AppError{
		Code:    CodeDuplicateKey,
		Message: fmt.Sprintf("%s with key %v already exists", collection, key),
		Details: map[string]any{
			"collection": collection,
			"key":        key,
		},
	}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func NotFoundWithKey(resource string, key any) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Details: map[string]any{
			"resource": resource,
			"key":      key,
		},
	}
}

// ReferentialConflict is returned when a delete is blocked by live references.
// refs maps the referencing collection to the number of referencing documents.
func ReferentialConflict(resource string, key any, refs map[string]int64) *AppError {
	return &AppError{
		Code:    CodeReferentialConflict,
		Message: fmt.Sprintf("%s %v is still referenced", resource, key),
		Details: map[string]any{
			"resource":   resource,
			"key":        key,
			"references": refs,
		},
	}
}

func ConflictDetected(reason, message string) *AppError {
	return &AppError{
		Code:    CodeConflictDetected,
		Message: message,
		Details: map[string]any{
			"reason": reason,
		},
	}
}

func PropagationFailed(err error) *AppError {
	return &AppError{
		Code:    CodePropagationFailed,
		Message: "failed to propagate snapshot changes, update rolled back",
		Err:     err,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidInput,
		Message: message,
	}
}

func InvalidTransition(resource, from, to string) *AppError {
	return &AppError{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("%s cannot move from %q to %q", resource, from, to),
		Details: map[string]any{
			"from": from,
			"to":   to,
		},
	}
}

func LockUnavailable(resource string) *AppError {
	return &AppError{
		Code:    CodeLockUnavailable,
		Message: fmt.Sprintf("%s is currently being modified by another request, try again", resource),
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Err:     err,
	}
}

func Timeout(message string) *AppError {
	return &AppError{
		Code:    CodeTimeout,
		Message: message,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Reason returns details["reason"] of a ConflictDetected error, or "".
func Reason(err error) string {
	var appErr *AppError
	if !stderrors.As(err, &appErr) || appErr.Details == nil {
		return ""
	}
	reason, _ := appErr.Details["reason"].(string)
	return reason
}
