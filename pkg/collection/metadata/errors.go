package metadata

import "errors"

// ErrZeroAmount indicates a batch upload for zero tokens.
var ErrZeroAmount = errors.New("batch amount must be greater than zero")

// ErrNoMetadataForTokenID indicates that no batch contains the queried token
// ID, or that no batch ends exactly at the queried batch ID.
var ErrNoMetadataForTokenID = errors.New("no metadata for token ID")

// ErrMetadataAlreadySet indicates an attempt to assign metadata to token IDs
// that already belong to a batch.
var ErrMetadataAlreadySet = errors.New("metadata already set for token range")

// ErrRangeOverflow indicates that a batch would push the next token ID past
// the largest representable token ID.
var ErrRangeOverflow = errors.New("batch range overflows token ID space")
