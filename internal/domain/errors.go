package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrNotReady is the failure reason once every health attempt is spent.
var ErrNotReady = errors.New("service not ready")

type ErrorKind string

const (
	KindConnection ErrorKind = "connection_error"
	KindTimeout    ErrorKind = "timeout"
	KindHTTP       ErrorKind = "http_error"
	KindParse      ErrorKind = "parse_error"
)

// ProbeError carries the kind of failure seen while talking to the service.
type ProbeError struct {
	Kind       ErrorKind
	StatusCode int
	Body       string
	Err        error
}

func (e *ProbeError) Error() string {
	switch {
	case e.Kind == KindHTTP:
		return fmt.Sprintf("%s: status %d", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *ProbeError) Unwrap() error { return e.Err }

func HTTPError(status int, body string) *ProbeError {
	return &ProbeError{Kind: KindHTTP, StatusCode: status, Body: body}
}

func ParseError(status int, body string, err error) *ProbeError {
	return &ProbeError{Kind: KindParse, StatusCode: status, Body: body, Err: err}
}

// Classify wraps a transport error into a ProbeError. Errors that already
// are ProbeErrors are returned unchanged; nil stays nil.
func Classify(err error) *ProbeError {
	if err == nil {
		return nil
	}
	var pe *ProbeError
	if errors.As(err, &pe) {
		return pe
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ProbeError{Kind: KindTimeout, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &ProbeError{Kind: KindTimeout, Err: err}
	}
	return &ProbeError{Kind: KindConnection, Err: err}
}

// KindOf reports the ErrorKind of err, or "" for nil.
func KindOf(err error) ErrorKind {
	if pe := Classify(err); pe != nil {
		return pe.Kind
	}
	return ""
}
