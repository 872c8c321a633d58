package data

import "errors"

// ErrUnknownKind is returned when a data file references a kind name that
// no table defines.
var ErrUnknownKind = errors.New("unknown kind")
