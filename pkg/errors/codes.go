package errors

// Common application error codes.
const (
	ErrInternal        = "INTERNAL"
	ErrNotFound        = "NOT_FOUND"
	ErrInvalidArgument = "INVALID_ARGUMENT"
	ErrConflict        = "CONFLICT"
	ErrTimeout         = "TIMEOUT"
	ErrUpstream        = "UPSTREAM_FAILED"
	ErrNotImplemented  = "NOT_IMPLEMENTED"
)

// codeMapping maps application error codes to HTTP status codes.
var codeMapping = map[string]int{
	ErrInternal:        500,
	ErrNotFound:        404,
	ErrInvalidArgument: 400,
	ErrConflict:        409,
	ErrTimeout:         504,
	ErrUpstream:        502,
	ErrNotImplemented:  501,
}

// HTTPStatus returns the HTTP status for an error code, defaulting to 500.
func HTTPStatus(code string) int {
	if status, ok := codeMapping[code]; ok {
		return status
	}
	return 500
}
