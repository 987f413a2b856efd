package ledger

import (
	"context"

	"github.com/storacha/go-ucanto/did"
)

// State holds the ledger's counters.
type State struct {
	// NextTokenID is the ID the next minted token receives.
	NextTokenID uint64
	// Burned is the number of tokens burned so far.
	Burned uint64
}

// Repo stores token ownership and approvals.
type Repo interface {
	// GetLedgerState returns the ledger counters, zero-valued for a new ledger.
	GetLedgerState(ctx context.Context) (State, error)
	// SetLedgerState stores the ledger counters.
	SetLedgerState(ctx context.Context, state State) error
	// CreateTokens records quantity tokens owned by owner, starting at start.
	CreateTokens(ctx context.Context, owner did.DID, start, quantity uint64) error
	// GetOwner returns the owner of tokenID, and false if it does not exist.
	GetOwner(ctx context.Context, tokenID uint64) (did.DID, bool, error)
	// SetOwner changes the owner of tokenID and clears its approval.
	SetOwner(ctx context.Context, tokenID uint64, owner did.DID) error
	// DeleteToken removes tokenID and its approval.
	DeleteToken(ctx context.Context, tokenID uint64) error
	// CountTokens returns the number of tokens owned by owner.
	CountTokens(ctx context.Context, owner did.DID) (uint64, error)
	// GetApproved returns the approved account of tokenID, and false if none.
	GetApproved(ctx context.Context, tokenID uint64) (did.DID, bool, error)
	// SetApproved sets the approved account of tokenID. The empty DID clears it.
	SetApproved(ctx context.Context, tokenID uint64, approved did.DID) error
	// IsOperator reports whether operator may manage every token of owner.
	IsOperator(ctx context.Context, owner, operator did.DID) (bool, error)
	// SetOperator enables or disables operator for owner.
	SetOperator(ctx context.Context, owner, operator did.DID, approved bool) error
}
