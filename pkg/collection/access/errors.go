package access

import (
	"errors"
	"fmt"

	"github.com/storacha/go-ucanto/did"
)

// ErrUnauthorized indicates that a caller lacks the capability an operation
// requires.
var ErrUnauthorized = errors.New("unauthorized")

// UnauthorizedError describes which caller was refused which capability.
type UnauthorizedError struct {
	Caller     did.DID
	Capability Capability
}

func (e UnauthorizedError) Error() string {
	return fmt.Sprintf("%s lacks capability %q: %s", e.Caller, e.Capability, ErrUnauthorized)
}

func (e UnauthorizedError) Unwrap() error {
	return ErrUnauthorized
}
