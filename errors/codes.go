package errors

// ErrorCode is the stable, machine-readable part of an AppError.
type ErrorCode string

// Configuration errors, raised while a traversal is being assembled.
const (
	// ErrCodeInvalidArgument indicates a required collaborator or argument is missing or malformed.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeLocked indicates a traversal was modified after its requirements were frozen.
	ErrCodeLocked ErrorCode = "TRAVERSAL_LOCKED"
	// ErrCodeUnsupported indicates the backing graph lacks a capability the caller declared.
	ErrCodeUnsupported ErrorCode = "UNSUPPORTED_OPERATION"
)

// Execution errors, raised while traversers are pulled.
const (
	// ErrCodeNoValue indicates a bound child traversal produced nothing for a traverser.
	ErrCodeNoValue ErrorCode = "NO_VALUE"
	// ErrCodeListenerFailed indicates a mutation listener failed.
	ErrCodeListenerFailed ErrorCode = "LISTENER_FAILED"
	// ErrCodeGraphWrite indicates the backing graph rejected a write.
	ErrCodeGraphWrite ErrorCode = "GRAPH_WRITE_FAILED"
	// ErrCodeCommitFailed indicates a transaction commit failed.
	ErrCodeCommitFailed ErrorCode = "COMMIT_FAILED"
)

// Resource and input errors.
const (
	// ErrCodeNotFound indicates a referenced element was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeConflict indicates an element with the same identity already exists.
	ErrCodeConflict ErrorCode = "CONFLICT"
	// ErrCodeInvalidFormat indicates malformed serialized input.
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// IsRetryableCode reports whether an operation failing with code may be
// attempted again. Only commit failures are retryable.
func IsRetryableCode(code ErrorCode) bool {
	return code == ErrCodeCommitFailed
}
