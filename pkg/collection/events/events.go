// Package events defines the notifications a collection emits when its state
// changes, and sinks that record them.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/storacha/batchmint/pkg/collection/types"
	"github.com/storacha/batchmint/pkg/collection/types/id"
)

type Kind string

const (
	// KindRangeUpdated is emitted when the metadata of a token range may have
	// changed: a batch was appended or its base URI overwritten.
	KindRangeUpdated Kind = "range_updated"
	// KindTransfer is emitted when a token is minted, burned or transferred.
	KindTransfer Kind = "transfer"
	// KindApproval is emitted when the approved address of a token changes.
	KindApproval Kind = "approval"
	// KindApprovalForAll is emitted when an operator is enabled or disabled.
	KindApprovalForAll Kind = "approval_for_all"
	// KindRolesUpdated is emitted when an account's roles change.
	KindRolesUpdated Kind = "roles_updated"
)

func validKind(kind Kind) bool {
	switch kind {
	case KindRangeUpdated, KindTransfer, KindApproval, KindApprovalForAll, KindRolesUpdated:
		return true
	default:
		return false
	}
}

// Payload is the body of an event.
type Payload interface {
	Kind() Kind
}

// RangeUpdated covers the token IDs whose metadata locators may have changed.
// FromTokenID is the first token of the batch. For an appended batch
// ToTokenID is its last token; for a base URI overwrite it is the batch ID,
// the end marker one past the last token.
type RangeUpdated struct {
	FromTokenID uint64 `json:"fromTokenId"`
	ToTokenID   uint64 `json:"toTokenId"`
}

func (RangeUpdated) Kind() Kind { return KindRangeUpdated }

// Transfer records a change of token ownership. From is empty for mints and To
// is empty for burns.
type Transfer struct {
	From    string `json:"from"`
	To      string `json:"to"`
	TokenID uint64 `json:"tokenId"`
}

func (Transfer) Kind() Kind { return KindTransfer }

// Approval records the approved account of a token. Approved is empty when the
// approval was cleared.
type Approval struct {
	Owner    string `json:"owner"`
	Approved string `json:"approved"`
	TokenID  uint64 `json:"tokenId"`
}

func (Approval) Kind() Kind { return KindApproval }

type ApprovalForAll struct {
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

func (ApprovalForAll) Kind() Kind { return KindApprovalForAll }

type RolesUpdated struct {
	Account string `json:"account"`
	Roles   uint64 `json:"roles"`
}

func (RolesUpdated) Kind() Kind { return KindRolesUpdated }

// Event is a recorded payload.
type Event struct {
	id        id.ID
	kind      Kind
	payload   []byte
	createdAt time.Time
}

func (e *Event) ID() id.ID {
	return e.id
}

func (e *Event) Kind() Kind {
	return e.kind
}

// RawPayload returns the JSON encoding of the payload.
func (e *Event) RawPayload() []byte {
	return e.payload
}

func (e *Event) CreatedAt() time.Time {
	return e.createdAt
}

// Payload decodes the event body into its typed form.
func (e *Event) Payload() (Payload, error) {
	var p Payload
	switch e.kind {
	case KindRangeUpdated:
		p = &RangeUpdated{}
	case KindTransfer:
		p = &Transfer{}
	case KindApproval:
		p = &Approval{}
	case KindApprovalForAll:
		p = &ApprovalForAll{}
	case KindRolesUpdated:
		p = &RolesUpdated{}
	default:
		return nil, fmt.Errorf("unknown event kind: %s", e.kind)
	}
	if err := json.Unmarshal(e.payload, p); err != nil {
		return nil, fmt.Errorf("decoding %s event %s: %w", e.kind, e.id, err)
	}
	return p, nil
}

func validateEvent(e *Event) (*Event, error) {
	if e.id.IsNil() {
		return nil, types.ErrEmpty{Field: "event ID"}
	}
	if !validKind(e.kind) {
		return nil, fmt.Errorf("invalid event kind: %s", e.kind)
	}
	return e, nil
}

// NewEvent wraps a payload in a new event.
func NewEvent(p Payload) (*Event, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding %s event: %w", p.Kind(), err)
	}
	return validateEvent(&Event{
		id:        id.New(),
		kind:      p.Kind(),
		payload:   b,
		createdAt: time.Now().UTC().Truncate(time.Second),
	})
}

// EventRowScanner is a function type for scanning an event row from the database.
type EventRowScanner func(id *id.ID, kind *Kind, payload *[]byte, createdAt *time.Time) error

// ReadEventFromDatabase reads an Event from the database using the provided scanner function.
func ReadEventFromDatabase(scanner EventRowScanner) (*Event, error) {
	event := &Event{}
	err := scanner(&event.id, &event.kind, &event.payload, &event.createdAt)
	if err != nil {
		return nil, fmt.Errorf("reading event from database: %w", err)
	}
	return validateEvent(event)
}
