package weather

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures of a fetch or search call.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindConfiguration
	KindUpstream
	KindTransport
	KindEmptyResponse
	KindSchema
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindUpstream:
		return "upstream"
	case KindTransport:
		return "transport"
	case KindEmptyResponse:
		return "empty_response"
	case KindSchema:
		return "schema"
	default:
		return "unknown"
	}
}

func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Error is the error type returned by the weather client and the fetch cycle.
// Status is only set for KindUpstream.
type Error struct {
	Kind   ErrorKind
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindConfiguration:
		msg = "api key is missing"
	case KindUpstream:
		msg = fmt.Sprintf("api request failed with status %d", e.Status)
	case KindTransport:
		msg = "network error: unable to reach the api"
	case KindEmptyResponse:
		msg = "no data received"
	case KindSchema:
		msg = "response is missing expected data"
	default:
		msg = "unknown error occurred"
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so callers can write
// errors.Is(err, weather.ErrTransport).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrUpstream      = &Error{Kind: KindUpstream}
	ErrTransport     = &Error{Kind: KindTransport}
	ErrEmptyResponse = &Error{Kind: KindEmptyResponse}
)

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return KindUnknown
}

// StatusOf returns the upstream HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var we *Error
	if errors.As(err, &we) {
		return we.Status
	}
	return 0
}
