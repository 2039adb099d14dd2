package diagram

import (
	"errors"
	"fmt"
)

// Model invariant violations. These are developer-facing: they mean a
// caller handed the engine something that a well-formed diagram cannot
// contain, so they are returned rather than masked.
var (
	ErrInvalidIndex      = errors.New("invalid index")
	ErrIndexOutOfRange   = fmt.Errorf("waypoint %w", ErrInvalidIndex)
	ErrDanglingReference = errors.New("dangling node reference")
	ErrUnsetEndpoint     = errors.New("endpoint is unset")
	ErrUnknownNode       = errors.New("unknown node")
	ErrUnknownConnection = errors.New("unknown connection")
	ErrDuplicateID       = errors.New("duplicate id")
	ErrNonFinitePoint    = errors.New("point is not finite")
)
