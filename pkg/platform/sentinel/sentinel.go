package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Storage backends and transports return
// these (optionally wrapped) so call sites can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: key or record does not exist in the backend
// - ErrUnavailable: backend temporarily unreachable
// - ErrClosed: backend was closed and can no longer serve requests
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
	ErrClosed      = errors.New("closed")
)
