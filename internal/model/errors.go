package model

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the actor has no permission for the
	// target organization or project.
	ErrForbidden = errors.New("forbidden")
	// ErrBadRequest is returned for requests that are well-formed but
	// not allowed, e.g. a non-user actor touching personal secrets.
	ErrBadRequest = errors.New("bad request")
	// ErrUnauthenticated is returned when no valid actor can be resolved
	// from the request credentials.
	ErrUnauthenticated = errors.New("unauthenticated")
)
