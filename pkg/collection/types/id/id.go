// Package id provides random identifiers for persisted collection records,
// stored as 16-byte BLOBs.
package id

import (
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
)

// ID identifies a stored record, such as an event.
type ID uuid.UUID

var (
	_ driver.Valuer = ID{}
	_ sql.Scanner   = (*ID)(nil)
)

// Nil is the zero ID, which no record carries.
var Nil ID

// New returns a random (version 4) ID.
func New() ID {
	return ID(uuid.New())
}

// IsNil reports whether id is the zero ID.
func (id ID) IsNil() bool {
	return id == Nil
}

func (id ID) Value() (driver.Value, error) {
	return id[:], nil
}

func (id *ID) Scan(src any) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("scanning ID: expected BLOB, got %T", src)
	}
	u, err := uuid.FromBytes(b)
	if err != nil {
		return fmt.Errorf("scanning ID: %w", err)
	}
	*id = ID(u)
	return nil
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}
