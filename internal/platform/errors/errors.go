// Package errors carries coded errors from the metrics source and intent layers out to the HTTP envelope
// Import it as perr
package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode is the machine facing kind of an error. Values are on the wire; append only
type ErrorCode uint16

const (
	ErrorCodeUnknown ErrorCode = iota
	// ErrorCodePanic marks a recovered panic
	ErrorCodePanic
	// ErrorCodeUnavailable is transient; a retry may succeed
	ErrorCodeUnavailable
	ErrorCodeTooManyRequests
	// ErrorCodeUnauthorized also covers a metrics source that is not connected
	ErrorCodeUnauthorized
	ErrorCodeForbidden
	// ErrorCodeInvalidArgument is a bad intent parameter such as missing brand terms or page url
	ErrorCodeInvalidArgument
	// ErrorCodeValidation is a request body that failed struct validation
	ErrorCodeValidation
	ErrorCodeJSON
	ErrorCodeNotFound
	// ErrorCodeUpstream is a failed metrics source query
	ErrorCodeUpstream
	ErrorCodeDB
)

var codeStatus = map[ErrorCode]int{
	ErrorCodeNotFound:        http.StatusNotFound,
	ErrorCodeInvalidArgument: http.StatusUnprocessableEntity,
	ErrorCodeValidation:      http.StatusBadRequest,
	ErrorCodeJSON:            http.StatusBadRequest,
	ErrorCodeUnauthorized:    http.StatusUnauthorized,
	ErrorCodeForbidden:       http.StatusForbidden,
	ErrorCodeTooManyRequests: http.StatusTooManyRequests,
	ErrorCodeUnavailable:     http.StatusServiceUnavailable,
	ErrorCodeUpstream:        http.StatusBadGateway,
}

// Status is the default HTTP status for the code; anything unmapped is a 500
func (c ErrorCode) Status() int {
	if s, ok := codeStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is a coded error. status, when set, is the upstream HTTP status and wins over the code mapping
type Error struct {
	code   ErrorCode
	msg    string
	field  string
	status int
	cause  error
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.cause == nil:
		return e.msg
	default:
		return e.msg + ": " + e.cause.Error()
	}
}

func (e *Error) Unwrap() error { return e.cause }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Field names the offending request field, empty when none
func (e *Error) Field() string { return e.field }

// Status is the attached upstream status, zero when unset
func (e *Error) Status() int { return e.status }

// Wire is the error part of the response envelope
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Status  int       `json:"upstream_status,omitempty"`
}

// WireFrom renders err for the envelope. Foreign errors keep their text under ErrorCodeUnknown
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	e, ok := As(err)
	if !ok {
		return Wire{Code: ErrorCodeUnknown, Message: err.Error()}
	}
	return Wire{Code: e.code, Message: e.msg, Field: e.field, Status: e.status}
}

// HTTP returns the response status and wire body for err
func HTTP(err error) (int, Wire) {
	if err == nil {
		return http.StatusOK, Wire{}
	}
	return HTTPStatus(err), WireFrom(err)
}

// As finds the outermost *Error in the chain
func As(err error) (*Error, bool) {
	var e *Error
	ok := stderrs.As(err, &e)
	return e, ok
}

// CodeOf returns the code of the outermost *Error, ErrorCodeUnknown otherwise
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether CodeOf(err) == code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// StatusOf walks every *Error in the chain and returns the first upstream status found
func StatusOf(err error) int {
	for e, ok := As(err); ok; e, ok = As(e.cause) {
		if e.status != 0 {
			return e.status
		}
	}
	return 0
}

// HTTPStatus prefers a valid 4xx/5xx upstream status over the code mapping
func HTTPStatus(err error) int {
	if s := StatusOf(err); s >= 400 && s < 600 {
		return s
	}
	return CodeOf(err).Status()
}

// with applies fn to a copy of the outermost *Error. Foreign errors pass through
func with(err error, fn func(*Error)) error {
	e, ok := As(err)
	if !ok {
		return err
	}
	c := *e
	fn(&c)
	return &c
}

// WithField returns a copy of err naming the offending field
func WithField(err error, field string) error {
	return with(err, func(e *Error) { e.field = field })
}

// WithStatus returns a copy of err carrying an upstream status. A foreign err becomes Upstream
func WithStatus(err error, status int) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); !ok {
		return &Error{code: ErrorCodeUpstream, msg: err.Error(), status: status, cause: err}
	}
	return with(err, func(e *Error) { e.status = status })
}

func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

func Newf(code ErrorCode, format string, a ...any) error {
	return New(code, fmt.Sprintf(format, a...))
}

// Wrap codes cause under msg
func Wrap(cause error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, cause: cause}
}

func Wrapf(cause error, code ErrorCode, format string, a ...any) error {
	return Wrap(cause, code, fmt.Sprintf(format, a...))
}

func NotFoundf(format string, a ...any) error     { return Newf(ErrorCodeNotFound, format, a...) }
func InvalidArgf(format string, a ...any) error   { return Newf(ErrorCodeInvalidArgument, format, a...) }
func Upstreamf(format string, a ...any) error     { return Newf(ErrorCodeUpstream, format, a...) }
func JSONErrf(format string, a ...any) error      { return Newf(ErrorCodeJSON, format, a...) }
func PanicErrf(format string, a ...any) error     { return Newf(ErrorCodePanic, format, a...) }
func Unauthorizedf(format string, a ...any) error { return Newf(ErrorCodeUnauthorized, format, a...) }
func Forbiddenf(format string, a ...any) error    { return Newf(ErrorCodeForbidden, format, a...) }
func Unavailablef(format string, a ...any) error  { return Newf(ErrorCodeUnavailable, format, a...) }
