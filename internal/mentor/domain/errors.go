package domain

import "errors"

// Transport-level failures the provider adapters can distinguish. Anything
// else coming out of an adapter is treated as "backend unreachable".
var (
	ErrUnauthorized = errors.New("mentor backend rejected credentials")
	ErrRateLimited  = errors.New("mentor backend rate limited")
	ErrUnreachable  = errors.New("mentor backend unreachable")
)
