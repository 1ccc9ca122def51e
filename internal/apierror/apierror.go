// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
// The Kind field lets callers — including our own client orchestrator —
// branch on the failure class without parsing human-readable text.
package apierror

// Error kinds. Validation failures are reported and never retried,
// conflicts refresh caches, unavailability is retryable once, unauthorized
// propagates to the auth collaborator.
const (
	KindValidation   = "validation"
	KindConflict     = "conflict"
	KindNotFound     = "not_found"
	KindUnauthorized = "unauthorized"
	KindUnavailable  = "unavailable"
	KindInternal     = "internal"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

func New(kind, msg string) *APIError {
	return &APIError{Kind: kind, Detail: msg}
}

func Validation(msg string) *APIError   { return New(KindValidation, msg) }
func Conflict(msg string) *APIError     { return New(KindConflict, msg) }
func NotFound(msg string) *APIError     { return New(KindNotFound, msg) }
func Unauthorized(msg string) *APIError { return New(KindUnauthorized, msg) }
func Internal(msg string) *APIError     { return New(KindInternal, msg) }

// FieldErrors wraps multiple per-field validation failures.
type FieldErrors struct {
	Kind   string            `json:"kind"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewFieldErrors(fields map[string]string) *FieldErrors {
	return &FieldErrors{Kind: KindValidation, Detail: "erro de validação", Fields: fields}
}
