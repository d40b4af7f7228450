package feedview

import (
	"errors"
	"fmt"
)

// DuplicateIDError indicates an insert would violate the backing sequence's
// unique-id invariant. The offending mutation is rejected wholesale; prior
// state is kept.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	if e.ID == "" {
		return "feedview: item with empty id"
	}
	return fmt.Sprintf("feedview: duplicate item id %q", e.ID)
}

// IsDuplicateID returns true when err is (or wraps) a DuplicateIDError.
func IsDuplicateID(err error) bool {
	var target *DuplicateIDError
	return errors.As(err, &target)
}

// LoadError reports a failed data-source fetch for one edge. Load failures
// are non-fatal: the edge reverts to idle and the next qualifying scroll (or
// an explicit Retry) may re-trigger the fetch.
type LoadError struct {
	Edge  Edge
	Cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("feedview: %s load failed: %v", e.Edge, e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
