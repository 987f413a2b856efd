// Package types holds the small value types shared across the collection
// packages.
package types

import "fmt"

// ErrEmpty reports a required field left empty.
type ErrEmpty struct {
	Field string
}

func (e ErrEmpty) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}
