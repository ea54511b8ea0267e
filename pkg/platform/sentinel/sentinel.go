package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Session and audit stores return
// these (optionally wrapped) and the bulk-check services translate them into
// domain errors.
//
// - ErrNotFound: key or row does not exist in the store
// - ErrInvalidState: stored value could not be decoded
// - ErrUnavailable: backing store is temporarily unreachable
//
// For validation failures use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
