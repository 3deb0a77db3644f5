package spec

import "errors"

// Every validation failure raised by this package wraps exactly one of
// these kinds, so callers can branch with errors.Is instead of matching
// message text.
var (
	ErrInvalidType    = errors.New("invalid type")
	ErrInvalidName    = errors.New("invalid name")
	ErrDuplicateName  = errors.New("duplicate name")
	ErrUnknownColumn  = errors.New("unknown column")
	ErrUnknownIndex   = errors.New("unknown index")
	ErrInvalidSpec    = errors.New("invalid index column specification")
	ErrUnresolvedType = errors.New("unresolved type")
)
