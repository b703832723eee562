package seq

import (
	"errors"
	"fmt"
)

// UnsupportedSequenceError indicates a sequence expression evaluated
// to something other than empty/falsy, an ordered list, or a
// recognized live collection.
//
// Fatal for that recomputation: it propagates synchronously to the
// caller and no partial events are emitted for the run.
type UnsupportedSequenceError struct {
	// Value is the offending sequence value.
	Value any
}

// Error implements the error interface.
func (e *UnsupportedSequenceError) Error() string {
	return fmt.Sprintf("unsupported sequence type %T", e.Value)
}

// DuplicateKeyError indicates two entries share a key within one
// snapshot (e.g., two keyless list items colliding, or a malformed
// identity field).
//
// This is a caller contract violation, not a recoverable condition -
// the Materializer guarantees uniqueness before handing a snapshot to
// the diff engine, whose behavior on duplicate keys is undefined.
type DuplicateKeyError struct {
	// Key is the colliding key.
	Key Key
}

// Error implements the error interface.
func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %q in snapshot", string(e.Key))
}

// IsUnsupportedSequence returns true if the error is an
// UnsupportedSequenceError. Uses errors.As to handle wrapped errors.
func IsUnsupportedSequence(err error) bool {
	var ue *UnsupportedSequenceError
	return errors.As(err, &ue)
}

// IsDuplicateKey returns true if the error is a DuplicateKeyError.
// Uses errors.As to handle wrapped errors.
func IsDuplicateKey(err error) bool {
	var de *DuplicateKeyError
	return errors.As(err, &de)
}
