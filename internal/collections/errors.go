package collections

import (
	"errors"
	"fmt"
)

// Outcomes of membership operations. Persistence failures are returned
// wrapped and never match any of these.
var (
	// ErrNotFound: the collection, or the membership being removed, does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDenied: the requester does not own the collection.
	ErrDenied = errors.New("access denied")
	// ErrInvalidInput: the request itself is malformed (empty reorder list,
	// duplicate ids, blank name).
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidReference: the referenced book or author does not exist.
	ErrInvalidReference = errors.New("referenced entity does not exist")
)

// ErrNotMember narrows ErrNotFound to a missing membership on a collection
// the requester owns.
var ErrNotMember = fmt.Errorf("membership %w", ErrNotFound)
