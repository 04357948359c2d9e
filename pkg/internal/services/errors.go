package services

import "errors"

// The error kinds this service surfaces to callers. Handlers map them onto
// transport statuses; none of them is ever retried. Anything else coming out
// of a service is an infrastructure failure and safe to retry whole.
var (
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotFound            = errors.New("not found")
	ErrConstraintViolation = errors.New("constraint violation")
)
