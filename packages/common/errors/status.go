package errs

import (
	"fmt"
	"net/http"
)

// Taxonomy code of an error or warning.
// Every failure that leaves the engine is classified with one of these.
type Code string

const (
	BadRequest       Code = "bad_request"
	Unauthorized     Code = "unauthorized"
	Forbidden        Code = "forbidden"
	NotFound         Code = "not_found"
	Conflict         Code = "conflict"
	ValidationFailed Code = "validation_failed"
	Internal         Code = "internal_error"
)

var codeToHttpStatus = map[Code]int{
	BadRequest:       http.StatusBadRequest,
	Unauthorized:     http.StatusUnauthorized,
	Forbidden:        http.StatusForbidden,
	NotFound:         http.StatusNotFound,
	Conflict:         http.StatusConflict,
	ValidationFailed: http.StatusUnprocessableEntity,
	Internal:         http.StatusInternalServerError,
}

func (c Code) HttpStatus() int {
	s, ok := codeToHttpStatus[c]
	if !ok {
		panic("unknown error taxonomy code: " + string(c))
	}
	return s
}

// Field-scoped codes must carry the offending field,
// entity-scoped ones must not.
func (c Code) RequiresField() bool {
	return c == Conflict || c == ValidationFailed
}

// User-safe messages are capped at this length so raw driver output
// never reaches the caller in full.
const MaxMessageLength = 100

func CapMessage(message string) string {
	if len(message) > MaxMessageLength {
		return message[:MaxMessageLength]
	}
	return message
}

type Status struct {
	code    Code
	status  int
	message string
	field   string
}

func (e *Status) Error() string {
	return e.message
}

func (e *Status) Code() Code {
	return e.code
}

func (e *Status) Status() int {
	return e.status
}

// Empty for entity-scoped codes.
func (e *Status) Field() string {
	return e.field
}

type errorSide string

const (
	ClientSide errorSide = "client"
	ServerSide errorSide = "server"
)

// Side returns whether the status represents a client or server error.
//
// Returns ClientSide for status codes 400-499.
//
// Returns ServerSide for status codes 500-599.
//
// Panics if the status isn't in either of these ranges.
func (e *Status) Side() errorSide {
	if e.status > 399 && e.status < 500 {
		return ClientSide
	}
	if e.status >= 500 && e.status < 600 {
		return ServerSide
	}
	panic(fmt.Sprintf("invalid error status range: must be between 400 and 599, but got - %d", e.status))
}

// Creates a new entity-scoped status error.
// Panics if code requires a field (use NewFieldError for those).
func NewStatusError(code Code, message string) *Status {
	if code.RequiresField() {
		panic(fmt.Sprintf("taxonomy code %q requires a field, use NewFieldError", code))
	}
	return &Status{
		code:    code,
		status:  code.HttpStatus(),
		message: CapMessage(message),
	}
}

// Creates a new field-scoped status error.
// Panics if code forbids a field (use NewStatusError for those).
func NewFieldError(code Code, field string, message string) *Status {
	if !code.RequiresField() {
		panic(fmt.Sprintf("taxonomy code %q forbids a field, use NewStatusError", code))
	}
	if field == "" {
		panic(fmt.Sprintf("taxonomy code %q requires a non-empty field", code))
	}
	return &Status{
		code:    code,
		status:  code.HttpStatus(),
		message: CapMessage(message),
		field:   field,
	}
}

func IsStatusError(err error) (bool, *Status) {
	e, is := err.(*Status)

	return is, e
}

var StatusInternalError = NewStatusError(
	Internal,
	"Internal Server Error",
)

var StatusNotFound = NewStatusError(
	NotFound,
	"Requested resource wasn't found",
)

// Deadlines are surfaced as internal errors, a partial page
// must never be assembled into a successful response.
var StatusTimeout = NewStatusError(
	Internal,
	"Operation timeout",
)
