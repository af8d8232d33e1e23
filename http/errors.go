package http

import (
	"errors"
	"fmt"
)

var (
	ErrNoReport   = errors.New("worker pool: no error report pending")
	ErrQueueFull  = errors.New("worker pool: job queue is full")
	ErrPoolClosed = errors.New("worker pool: closed")
)

type ErrorKind uint8

const (
	KindTransport ErrorKind = iota + 1
	KindMalformedRequest
	KindRouteHandler
	KindNoRoute
)

func (kind ErrorKind) String() string {
	switch kind {
	case KindTransport:
		return "transport"
	case KindMalformedRequest:
		return "malformed_request"
	case KindRouteHandler:
		return "route_handler"
	case KindNoRoute:
		return "no_route"
	}
	return "unknown"
}

// ConnectionError is returned by ServeConn for every way handling a single
// connection can fail.
type ConnectionError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ConnectionError) Error() string {
	switch e.Kind {
	case KindTransport:
		if e.Err != nil {
			return e.Err.Error()
		}
	case KindNoRoute:
		return fmt.Sprintf("Nonexistent route: `%s`", e.Message)
	}
	return e.Message
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func TransportError(err error) *ConnectionError {
	return &ConnectionError{Kind: KindTransport, Message: err.Error(), Err: err}
}

func MalformedRequestError(message string) *ConnectionError {
	return &ConnectionError{Kind: KindMalformedRequest, Message: message}
}

func RouteHandlerError(err error) *ConnectionError {
	return &ConnectionError{Kind: KindRouteHandler, Message: err.Error(), Err: err}
}

func NoRouteError(path string) *ConnectionError {
	return &ConnectionError{Kind: KindNoRoute, Message: path}
}

// KindOf reports the kind of the first ConnectionError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return connErr.Kind, true
	}
	return 0, false
}
