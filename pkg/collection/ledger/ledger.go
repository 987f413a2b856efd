// Package ledger keeps ERC-721 style ownership, transfer and approval records
// for the tokens of a collection.
package ledger

import (
	"context"
	"fmt"
	"math"

	logging "github.com/ipfs/go-log/v2"
	"github.com/storacha/batchmint/pkg/collection/events"
	"github.com/storacha/go-ucanto/did"
)

var log = logging.Logger("collection/ledger")

func isEmpty(d did.DID) bool {
	return d == did.DID{}
}

func didString(d did.DID) string {
	if isEmpty(d) {
		return ""
	}
	return d.String()
}

// API provides the ledger operations over a Repo.
type API struct {
	Repo   Repo
	Events events.Sink
	// Limit caps the next token ID a mint may reach. Zero means
	// math.MaxUint64.
	Limit uint64
}

func (a API) limit() uint64 {
	if a.Limit == 0 {
		return math.MaxUint64
	}
	return a.Limit
}

// NextTokenID returns the ID the next minted token receives.
func (a API) NextTokenID(ctx context.Context) (uint64, error) {
	state, err := a.Repo.GetLedgerState(ctx)
	if err != nil {
		return 0, fmt.Errorf("getting ledger state: %w", err)
	}
	return state.NextTokenID, nil
}

// TotalSupply returns the number of tokens minted and not burned.
func (a API) TotalSupply(ctx context.Context) (uint64, error) {
	state, err := a.Repo.GetLedgerState(ctx)
	if err != nil {
		return 0, fmt.Errorf("getting ledger state: %w", err)
	}
	return state.NextTokenID - state.Burned, nil
}

// Mint creates quantity consecutive tokens owned by to and returns the first
// token ID.
func (a API) Mint(ctx context.Context, to did.DID, quantity uint64) (uint64, error) {
	if isEmpty(to) {
		return 0, ErrInvalidRecipient
	}
	if quantity == 0 {
		return 0, ErrZeroQuantity
	}
	state, err := a.Repo.GetLedgerState(ctx)
	if err != nil {
		return 0, fmt.Errorf("getting ledger state: %w", err)
	}
	start := state.NextTokenID
	if limit := a.limit(); start > limit || quantity > limit-start {
		return 0, fmt.Errorf("minting %d tokens from %d: %w", quantity, start, ErrSupplyOverflow)
	}
	if _, taken, err := a.Repo.GetOwner(ctx, start); err != nil {
		return 0, fmt.Errorf("getting owner of token %d: %w", start, err)
	} else if taken {
		return 0, fmt.Errorf("token %d: %w", start, ErrAlreadyMinted)
	}
	if err := a.Repo.CreateTokens(ctx, to, start, quantity); err != nil {
		return 0, fmt.Errorf("creating tokens [%d, %d): %w", start, start+quantity, err)
	}
	state.NextTokenID = start + quantity
	if err := a.Repo.SetLedgerState(ctx, state); err != nil {
		return 0, fmt.Errorf("updating ledger state: %w", err)
	}
	for tokenID := start; tokenID < start+quantity; tokenID++ {
		if err := a.emit(ctx, events.Transfer{To: to.String(), TokenID: tokenID}); err != nil {
			return 0, err
		}
	}
	log.Infow("minted", "to", to, "start", start, "quantity", quantity)
	return start, nil
}

// Exists reports whether tokenID has been minted and not burned.
func (a API) Exists(ctx context.Context, tokenID uint64) (bool, error) {
	_, ok, err := a.Repo.GetOwner(ctx, tokenID)
	if err != nil {
		return false, fmt.Errorf("getting owner of token %d: %w", tokenID, err)
	}
	return ok, nil
}

// OwnerOf returns the owner of tokenID.
func (a API) OwnerOf(ctx context.Context, tokenID uint64) (did.DID, error) {
	owner, ok, err := a.Repo.GetOwner(ctx, tokenID)
	if err != nil {
		return did.DID{}, fmt.Errorf("getting owner of token %d: %w", tokenID, err)
	}
	if !ok {
		return did.DID{}, fmt.Errorf("token %d: %w", tokenID, ErrNonexistentToken)
	}
	return owner, nil
}

// BalanceOf returns the number of tokens owned by owner.
func (a API) BalanceOf(ctx context.Context, owner did.DID) (uint64, error) {
	if isEmpty(owner) {
		return 0, ErrInvalidRecipient
	}
	return a.Repo.CountTokens(ctx, owner)
}

// GetApproved returns the account approved for tokenID, or the empty DID.
func (a API) GetApproved(ctx context.Context, tokenID uint64) (did.DID, error) {
	if _, err := a.OwnerOf(ctx, tokenID); err != nil {
		return did.DID{}, err
	}
	approved, _, err := a.Repo.GetApproved(ctx, tokenID)
	if err != nil {
		return did.DID{}, fmt.Errorf("getting approval of token %d: %w", tokenID, err)
	}
	return approved, nil
}

// IsApprovedForAll reports whether operator may manage every token of owner.
func (a API) IsApprovedForAll(ctx context.Context, owner, operator did.DID) (bool, error) {
	return a.Repo.IsOperator(ctx, owner, operator)
}

// Approve lets to transfer tokenID. The caller must own the token or be an
// operator of its owner. The empty DID clears the approval.
func (a API) Approve(ctx context.Context, caller, to did.DID, tokenID uint64) error {
	owner, err := a.OwnerOf(ctx, tokenID)
	if err != nil {
		return err
	}
	if to == owner {
		return ErrApprovalToCurrentOwner
	}
	if caller != owner {
		ok, err := a.Repo.IsOperator(ctx, owner, caller)
		if err != nil {
			return fmt.Errorf("checking operator: %w", err)
		}
		if !ok {
			return fmt.Errorf("approving token %d: %w", tokenID, ErrNotOwnerOrApproved)
		}
	}
	if err := a.Repo.SetApproved(ctx, tokenID, to); err != nil {
		return fmt.Errorf("setting approval of token %d: %w", tokenID, err)
	}
	return a.emit(ctx, events.Approval{Owner: owner.String(), Approved: didString(to), TokenID: tokenID})
}

// SetApprovalForAll enables or disables operator for every token the caller
// owns.
func (a API) SetApprovalForAll(ctx context.Context, caller, operator did.DID, approved bool) error {
	if caller == operator {
		return ErrApproveToCaller
	}
	if isEmpty(operator) {
		return ErrInvalidRecipient
	}
	if err := a.Repo.SetOperator(ctx, caller, operator, approved); err != nil {
		return fmt.Errorf("setting operator %s for %s: %w", operator, caller, err)
	}
	return a.emit(ctx, events.ApprovalForAll{Owner: caller.String(), Operator: operator.String(), Approved: approved})
}

func (a API) isApprovedOrOwner(ctx context.Context, caller, owner did.DID, tokenID uint64) (bool, error) {
	if caller == owner {
		return true, nil
	}
	ok, err := a.Repo.IsOperator(ctx, owner, caller)
	if err != nil {
		return false, fmt.Errorf("checking operator: %w", err)
	}
	if ok {
		return true, nil
	}
	approved, found, err := a.Repo.GetApproved(ctx, tokenID)
	if err != nil {
		return false, fmt.Errorf("getting approval of token %d: %w", tokenID, err)
	}
	return found && approved == caller, nil
}

// TransferFrom moves tokenID from from to to. The caller must be the owner,
// the token's approved account, or an operator of the owner.
func (a API) TransferFrom(ctx context.Context, caller, from, to did.DID, tokenID uint64) error {
	owner, err := a.OwnerOf(ctx, tokenID)
	if err != nil {
		return err
	}
	if owner != from {
		return fmt.Errorf("token %d: %w", tokenID, ErrIncorrectOwner)
	}
	if isEmpty(to) {
		return ErrInvalidRecipient
	}
	ok, err := a.isApprovedOrOwner(ctx, caller, owner, tokenID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("transferring token %d: %w", tokenID, ErrNotOwnerOrApproved)
	}
	if err := a.Repo.SetOwner(ctx, tokenID, to); err != nil {
		return fmt.Errorf("setting owner of token %d: %w", tokenID, err)
	}
	if err := a.emit(ctx, events.Transfer{From: from.String(), To: to.String(), TokenID: tokenID}); err != nil {
		return err
	}
	log.Debugw("transferred", "token", tokenID, "from", from, "to", to)
	return nil
}

// Burn destroys tokenID. The caller must be the owner, the token's approved
// account, or an operator of the owner.
func (a API) Burn(ctx context.Context, caller did.DID, tokenID uint64) error {
	owner, err := a.OwnerOf(ctx, tokenID)
	if err != nil {
		return err
	}
	ok, err := a.isApprovedOrOwner(ctx, caller, owner, tokenID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("burning token %d: %w", tokenID, ErrNotOwnerOrApproved)
	}
	state, err := a.Repo.GetLedgerState(ctx)
	if err != nil {
		return fmt.Errorf("getting ledger state: %w", err)
	}
	if err := a.Repo.DeleteToken(ctx, tokenID); err != nil {
		return fmt.Errorf("deleting token %d: %w", tokenID, err)
	}
	state.Burned++
	if err := a.Repo.SetLedgerState(ctx, state); err != nil {
		return fmt.Errorf("updating ledger state: %w", err)
	}
	return a.emit(ctx, events.Transfer{From: owner.String(), TokenID: tokenID})
}

func (a API) emit(ctx context.Context, p events.Payload) error {
	if a.Events == nil {
		return nil
	}
	return a.Events.Emit(ctx, p)
}
