package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
)

// AppError carries a stable code alongside the human message. Codes, not
// messages, are what callers branch on.
type AppError struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
	Cause     error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is matches any *AppError with the same code, so HasCode can check a chain
// with a bare template.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// WithCause sets the cause and returns e.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges details into e and returns e.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	maps.Copy(e.Details, details)
	return e
}

// WithDetail sets one detail and returns e.
func (e *AppError) WithDetail(key string, value any) *AppError {
	return e.WithDetails(map[string]any{key: value})
}

// New builds an error whose Retryable flag follows the code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Retryable: IsRetryableCode(code)}
}

// AsAppError finds the outermost *AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}

// CodeOf returns the code of the outermost AppError in err's chain, or the
// empty code when there is none.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// HasCode reports whether any AppError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	return stderrors.Is(err, &AppError{Code: code})
}

// --- Constructors ---

// InvalidArgument creates an AppError for a malformed or missing argument.
func InvalidArgument(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("Invalid argument: %s", reason),
		Details: details,
	}
}

// Validation creates an AppError for a failed struct validation.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidArgument, Message: message}
}

// Locked creates an AppError for a modification of a locked traversal.
func Locked(operation string) *AppError {
	return &AppError{
		Code: ErrCodeLocked, Message: fmt.Sprintf("Cannot %s: the traversal is locked.", operation),
		Details: map[string]any{"operation": operation},
	}
}

// Unsupported creates an AppError for a capability the graph does not provide.
func Unsupported(capability string) *AppError {
	return &AppError{
		Code: ErrCodeUnsupported, Message: fmt.Sprintf("The graph does not support %s.", capability),
		Details: map[string]any{"capability": capability},
	}
}

// NoValue creates an AppError for a child traversal that produced no result.
func NoValue(traversal string) *AppError {
	return &AppError{
		Code: ErrCodeNoValue, Message: "The provided traverser does not map to a value.",
		Details: map[string]any{"traversal": traversal},
	}
}

// ListenerFailed wraps the failure of a mutation listener.
func ListenerFailed(step string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeListenerFailed, Message: fmt.Sprintf("A mutation listener of step %s failed.", step),
		Details: map[string]any{"step": step}, Cause: cause,
	}
}

// GraphWrite wraps a write rejected by the backing graph.
func GraphWrite(operation string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeGraphWrite, Message: fmt.Sprintf("The graph rejected %s.", operation),
		Details: map[string]any{"operation": operation}, Cause: cause,
	}
}

// CommitFailed wraps a failed transaction commit.
func CommitFailed(cause error) *AppError {
	return &AppError{
		Code: ErrCodeCommitFailed, Message: "The transaction could not be committed.",
		Retryable: true, Cause: cause,
	}
}

// NotFound creates an AppError for an element that was not found.
func NotFound(resource string, id any) *AppError {
	details := map[string]any{"resource": resource}
	if id != nil {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		Details: details,
	}
}

// Conflict creates an AppError for an element whose identity is already taken.
func Conflict(resource string, id any) *AppError {
	return &AppError{
		Code: ErrCodeConflict, Message: fmt.Sprintf("A %s with id %v already exists.", resource, id),
		Details: map[string]any{"resource": resource, "id": id},
	}
}

// InvalidFormat creates an AppError for malformed serialized input.
func InvalidFormat(what, expected string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidFormat, Message: fmt.Sprintf("Invalid format for %s. Expected: %s", what, expected),
		Details: map[string]any{"input": what, "expected_format": expected},
	}
}

// Internal creates an AppError for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		Cause: cause,
	}
}
