package errors

import "errors"

var (
	// ErrNotFound is returned when a project, material or preference id does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is returned for missing or malformed request fields.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrStore wraps durable-store failures.
	ErrStore = errors.New("store failure")
)
