package adapter

import "errors"

// Sentinel errors mapped from blob service responses. Callers match with
// [errors.Is] to decide between retry, re-authentication, and surfacing.
var (
	// ErrNetwork reports a transport-level failure: the request never
	// produced an HTTP response. Transient and retry-eligible, but only on
	// explicit user action or the next debounce window.
	ErrNetwork = errors.New("blob service unreachable")

	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("operation forbidden for role")
	ErrNotFound            = errors.New("object not found")
	ErrConflict            = errors.New("conflicting remote state")
	ErrBadGateway          = errors.New("bad gateway")
	ErrInternalServerError = errors.New("internal server error")
)
