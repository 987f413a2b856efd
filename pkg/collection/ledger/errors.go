package ledger

import "errors"

var (
	// ErrNonexistentToken indicates a query or operation on a token that has
	// not been minted, or has been burned.
	ErrNonexistentToken = errors.New("nonexistent token")
	// ErrAlreadyMinted indicates a mint onto a token ID that is already owned.
	ErrAlreadyMinted = errors.New("token already minted")
	// ErrZeroQuantity indicates a mint of zero tokens.
	ErrZeroQuantity = errors.New("mint quantity must be greater than zero")
	// ErrInvalidRecipient indicates a mint or transfer to the empty account.
	ErrInvalidRecipient = errors.New("invalid recipient")
	// ErrIncorrectOwner indicates a transfer whose from account does not own
	// the token.
	ErrIncorrectOwner = errors.New("transfer from incorrect owner")
	// ErrNotOwnerOrApproved indicates a caller acting on a token it neither
	// owns nor is approved for.
	ErrNotOwnerOrApproved = errors.New("caller is not token owner or approved")
	// ErrApproveToCaller indicates an account setting itself as its own
	// operator.
	ErrApproveToCaller = errors.New("approve to caller")
	// ErrApprovalToCurrentOwner indicates approving a token's own owner.
	ErrApprovalToCurrentOwner = errors.New("approval to current owner")
	// ErrSupplyOverflow indicates a mint that would run past the largest
	// token ID.
	ErrSupplyOverflow = errors.New("mint overflows token ID space")
)
