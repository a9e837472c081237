package model

import "github.com/pkg/errors"

// Precondition failures. These signal malformed input from the definition
// loader and are never reported as safety violations.
var (
	ErrUnknownInterface   = errors.New("unknown interface")
	ErrDuplicateInterface = errors.New("duplicate interface")
	ErrArityMismatch      = errors.New("generic argument count mismatch")
	ErrCyclicParents      = errors.New("cyclic parent interfaces")
	ErrGenericIndex       = errors.New("generic parameter index out of range")
)

// IsPrecondition reports whether err is one of the precondition failures of this package
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrUnknownInterface) ||
		errors.Is(err, ErrDuplicateInterface) ||
		errors.Is(err, ErrArityMismatch) ||
		errors.Is(err, ErrCyclicParents) ||
		errors.Is(err, ErrGenericIndex)
}
