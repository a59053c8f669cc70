package tracker

import "errors"

// ErrNotFound marks a sprint/project/team id that does not resolve. Callers
// surface it directly; it is never retried.
var ErrNotFound = errors.New("not found")

// ErrPrecondition marks a client-correctable request error, such as asking for
// a burndown on a sprint that has not started or omitting a required filter.
var ErrPrecondition = errors.New("precondition failed")
