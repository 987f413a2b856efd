package sqlrepo

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/storacha/go-ucanto/did"
)

// unixTime reads and writes a timestamp as whole seconds since the Unix
// epoch, in UTC. NULL reads as the zero time.
type unixTime struct {
	t *time.Time
}

var _ driver.Valuer = unixTime{}
var _ sql.Scanner = unixTime{}

func timeValue(t time.Time) unixTime {
	return unixTime{t: &t}
}

func timeScanner(t *time.Time) unixTime {
	return unixTime{t: t}
}

func (ut unixTime) Value() (driver.Value, error) {
	return ut.t.Unix(), nil
}

func (ut unixTime) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*ut.t = time.Time{}
	case int64:
		*ut.t = time.Unix(v, 0).UTC()
	default:
		return fmt.Errorf("unsupported type for timestamp scanning: %T (%v)", v, v)
	}
	return nil
}

// dbDID reads and writes a DID as its string form. The empty DID is stored as
// NULL.
type dbDID struct {
	did *did.DID
}

var _ driver.Valuer = dbDID{}
var _ sql.Scanner = dbDID{}

func didValue(d did.DID) dbDID {
	return dbDID{did: &d}
}

func didScanner(d *did.DID) dbDID {
	return dbDID{did: d}
}

func (dd dbDID) Value() (driver.Value, error) {
	if dd.did == nil || *dd.did == (did.DID{}) {
		return nil, nil
	}
	return dd.did.String(), nil
}

func (dd dbDID) Scan(value any) error {
	if value == nil {
		*dd.did = did.DID{}
		return nil
	}
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("unsupported type for DID scanning: %T (%v)", v, v)
	}
	d, err := did.Parse(s)
	if err != nil {
		return fmt.Errorf("parsing DID %q: %w", s, err)
	}
	*dd.did = d
	return nil
}
