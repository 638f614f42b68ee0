package exceptions

import (
	"docbook-service/internal/pkg/constvars"
	"errors"
	"fmt"
	"runtime"
)

// Kind is the domain classification of an error, independent of transport.
type Kind string

const (
	KindInternal        Kind = "internal"
	KindInvalid         Kind = "invalid"
	KindUnauthenticated Kind = "unauthenticated"
	KindUnauthorized    Kind = "unauthorized"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindTooLate         Kind = "too_late"
	KindTooManyRequests Kind = "too_many_requests"
	KindUnavailable     Kind = "unavailable"
	KindTimeout         Kind = "timeout"
)

var statusKinds = map[int]Kind{
	constvars.StatusBadRequest:          KindInvalid,
	constvars.StatusUnauthorized:        KindUnauthenticated,
	constvars.StatusForbidden:           KindUnauthorized,
	constvars.StatusNotFound:            KindNotFound,
	constvars.StatusConflict:            KindConflict,
	constvars.StatusUnprocessableEntity: KindTooLate,
	constvars.StatusTooManyRequests:     KindTooManyRequests,
	constvars.StatusServiceUnavailable:  KindUnavailable,
	constvars.StatusGatewayTimeout:      KindTimeout,
}

type CustomError struct {
	StatusCode    int        `json:"status_code"`
	Success       bool       `json:"success"`
	ClientMessage string     `json:"message"`
	DevMessage    string     `json:"dev_message,omitempty"`
	Locations     []Location `json:"locations,omitempty"`
	Kind          Kind       `json:"-"`
	Err           error      `json:"-"`

	// RetryAfterSecs is sent as Retry-After when positive.
	RetryAfterSecs int `json:"-"`
}

type Location struct {
	File         string `json:"file"`
	Line         int    `json:"line"`
	FunctionName string `json:"function_name"`
}

func (e *CustomError) Error() string {
	if len(e.Locations) == 0 {
		return e.DevMessage
	}
	loc := e.Locations[0]
	return fmt.Sprintf("%s (%s:%d %s)", e.DevMessage, loc.File, loc.Line, loc.FunctionName)
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

func (e *CustomError) WithRetryAfter(seconds int) *CustomError {
	e.RetryAfterSecs = seconds
	return e
}

// BuildNewCustomError is used by the ErrX constructors, the recorded location
// is the caller of the constructor.
func BuildNewCustomError(err error, statusCode int, clientMessage, devMessage string) *CustomError {
	kind, ok := statusKinds[statusCode]
	if !ok {
		kind = KindInternal
	}

	if err != nil {
		devMessage = fmt.Sprintf("%s: %s", devMessage, err.Error())
	}

	return &CustomError{
		StatusCode:    statusCode,
		ClientMessage: clientMessage,
		DevMessage:    devMessage,
		Locations:     []Location{getLocation(3)},
		Kind:          kind,
		Err:           err,
	}
}

// KindOf reports the Kind of err, KindInternal when err is not a CustomError.
func KindOf(err error) Kind {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func getLocation(skip int) Location {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return Location{
			File:         constvars.ResponseUnknown,
			Line:         0,
			FunctionName: constvars.ResponseUnknown,
		}
	}
	function := runtime.FuncForPC(pc).Name()
	return Location{
		File:         file,
		Line:         line,
		FunctionName: function,
	}
}
