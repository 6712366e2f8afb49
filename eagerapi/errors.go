package eagerapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bitfsorg/eagerapi-go/hgid"
	"github.com/bitfsorg/eagerapi-go/storage"
)

var (
	// ErrNotFound matches 404 server errors: the requested record is absent.
	ErrNotFound = errors.New("eagerapi: not found")

	// ErrInternal matches 500 server errors: store or graph failures and
	// malformed ids coming out of the graph.
	ErrInternal = errors.New("eagerapi: internal error")

	// ErrNotImplemented matches 501 server errors from unsupported methods.
	ErrNotImplemented = errors.New("eagerapi: not implemented")

	// ErrInvalidRequest matches 400 server errors: the request asks for
	// something this repository cannot compute.
	ErrInvalidRequest = errors.New("eagerapi: invalid request")

	// ErrNotConfigured indicates no config value names an eager repository.
	ErrNotConfigured = errors.New("eagerapi: no eager repository configured")
)

// ServerError is a failure reported the way the remote server would,
// with an HTTP status.
type ServerError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("eagerapi: %d %s: %v", e.Status, e.Message, e.cause)
	}
	return fmt.Sprintf("eagerapi: %d %s", e.Status, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServerError) Unwrap() error { return e.cause }

// Is matches the sentinel for the status class.
func (e *ServerError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrInternal:
		return e.Status == http.StatusInternalServerError
	case ErrNotImplemented:
		return e.Status == http.StatusNotImplemented
	case ErrInvalidRequest:
		return e.Status == http.StatusBadRequest
	}
	return false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var se *ServerError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

func notFound(id hgid.ID) *ServerError {
	return &ServerError{Status: http.StatusNotFound, Message: id.Hex() + " cannot be found"}
}

func internal(err error) *ServerError {
	return &ServerError{Status: http.StatusInternalServerError, Message: "internal error", cause: err}
}

func notImplemented(method string) *ServerError {
	return &ServerError{Status: http.StatusNotImplemented, Message: "eager repo does not support " + method}
}

func invalidRequest(msg string) *ServerError {
	return &ServerError{Status: http.StatusBadRequest, Message: msg}
}

// storeError maps a store failure for id onto a server error.
func storeError(id hgid.ID, err error) *ServerError {
	if errors.Is(err, storage.ErrNotFound) {
		return notFound(id)
	}
	return internal(err)
}
