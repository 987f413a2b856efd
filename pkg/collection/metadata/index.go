package metadata

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/storacha/batchmint/pkg/collection/metadata/model"
)

// Index is the batch metadata range index. It holds an append-only, strictly
// increasing sequence of range ends, each keyed to the batch (and base URI) it
// closes. The range of the batch at position i is [ends[i-1], ends[i]), with
// the first batch starting at zero.
//
// Index does no locking of its own; callers serialise access.
type Index struct {
	ends  []uint64
	byEnd map[uint64]*model.Batch
	next  uint64
	limit uint64
}

// IndexOption configures an Index.
type IndexOption func(x *Index)

// WithLimit caps the range ends the index accepts, for stores that cannot hold
// the full uint64 range. Appends past limit fail with [ErrRangeOverflow].
func WithLimit(limit uint64) IndexOption {
	return func(x *Index) {
		x.limit = limit
	}
}

// NewIndex returns an empty index.
func NewIndex(options ...IndexOption) *Index {
	x := &Index{byEnd: make(map[uint64]*model.Batch), limit: math.MaxUint64}
	for _, opt := range options {
		opt(x)
	}
	return x
}

// LoadIndex rebuilds an index from persisted batches. The batches must be
// ordered by start and form a gap-free partition starting at zero.
func LoadIndex(batches []*model.Batch, options ...IndexOption) (*Index, error) {
	x := NewIndex(options...)
	for _, b := range batches {
		if err := x.Push(b); err != nil {
			return nil, fmt.Errorf("loading batch %d: %w", b.ID(), err)
		}
	}
	return x, nil
}

// NextRangeStart returns the first token ID not covered by any batch.
func (x *Index) NextRangeStart() uint64 {
	return x.next
}

// Len returns the number of batches.
func (x *Index) Len() int {
	return len(x.ends)
}

// PrepareAppend returns the batch that appending amount tokens with the given
// base URI would create, without changing the index.
func (x *Index) PrepareAppend(amount uint64, uri string) (*model.Batch, error) {
	if amount == 0 {
		return nil, ErrZeroAmount
	}
	if x.next > x.limit || amount > x.limit-x.next {
		return nil, fmt.Errorf("appending %d tokens from %d: %w", amount, x.next, ErrRangeOverflow)
	}
	return model.NewBatch(x.next, x.next+amount, uri)
}

// Push appends a prepared batch. The batch must start where the index ends.
func (x *Index) Push(b *model.Batch) error {
	if b.Start() != x.next {
		return fmt.Errorf("batch starts at %d but next range starts at %d", b.Start(), x.next)
	}
	if b.End() > x.limit {
		return fmt.Errorf("batch %d: %w", b.ID(), ErrRangeOverflow)
	}
	x.ends = append(x.ends, b.End())
	x.byEnd[b.End()] = b.Clone()
	x.next = b.End()
	return nil
}

// Append adds a batch of amount tokens sharing the given base URI.
func (x *Index) Append(amount uint64, uri string) (*model.Batch, error) {
	b, err := x.PrepareAppend(amount, uri)
	if err != nil {
		return nil, err
	}
	if err := x.Push(b); err != nil {
		return nil, err
	}
	return b, nil
}

// SetURI overwrites the base URI of an existing batch. It fails with
// [ErrNoMetadataForTokenID] if batchID is not the end marker of a batch.
func (x *Index) SetURI(batchID uint64, uri string) error {
	b, ok := x.byEnd[batchID]
	if !ok {
		return fmt.Errorf("batch %d: %w", batchID, ErrNoMetadataForTokenID)
	}
	b.SetBaseURI(uri)
	return nil
}

// search returns the position of the first range end strictly greater than
// tokenID. Because ends are strictly increasing this is the same batch a scan
// from the start would stop at.
func (x *Index) search(tokenID uint64) (int, bool) {
	i := sort.Search(len(x.ends), func(i int) bool { return tokenID < x.ends[i] })
	return i, i < len(x.ends)
}

func (x *Index) startOf(i int) uint64 {
	if i == 0 {
		return 0
	}
	return x.ends[i-1]
}

// Resolve returns the base URI of the batch containing tokenID and the
// token's zero-based offset within it.
func (x *Index) Resolve(tokenID uint64) (string, uint64, error) {
	i, ok := x.search(tokenID)
	if !ok {
		return "", 0, fmt.Errorf("token %d: %w", tokenID, ErrNoMetadataForTokenID)
	}
	return x.byEnd[x.ends[i]].BaseURI(), tokenID - x.startOf(i), nil
}

// TokenURI returns the full metadata locator for tokenID: the batch's base
// URI followed by the token's offset in decimal.
func (x *Index) TokenURI(tokenID uint64) (string, error) {
	base, offset, err := x.Resolve(tokenID)
	if err != nil {
		return "", err
	}
	return base + strconv.FormatUint(offset, 10), nil
}

// BatchID returns the ID of the batch containing tokenID and the batch's
// position in the index.
func (x *Index) BatchID(tokenID uint64) (uint64, int, error) {
	i, ok := x.search(tokenID)
	if !ok {
		return 0, 0, fmt.Errorf("token %d: %w", tokenID, ErrNoMetadataForTokenID)
	}
	return x.ends[i], i, nil
}

// BatchRange returns the first and last (inclusive) token IDs of the batch
// ending exactly at batchID.
func (x *Index) BatchRange(batchID uint64) (uint64, uint64, error) {
	i := sort.Search(len(x.ends), func(i int) bool { return x.ends[i] >= batchID })
	if i == len(x.ends) || x.ends[i] != batchID {
		return 0, 0, fmt.Errorf("batch %d: %w", batchID, ErrNoMetadataForTokenID)
	}
	return x.startOf(i), batchID - 1, nil
}

// Batch returns a copy of the batch ending at batchID, if any.
func (x *Index) Batch(batchID uint64) (*model.Batch, bool) {
	b, ok := x.byEnd[batchID]
	if !ok {
		return nil, false
	}
	return b.Clone(), true
}

// Batches returns every batch in order. Together they partition
// [0, NextRangeStart()) without gaps or overlaps.
func (x *Index) Batches() []*model.Batch {
	batches := make([]*model.Batch, 0, len(x.ends))
	for _, end := range x.ends {
		batches = append(batches, x.byEnd[end].Clone())
	}
	return batches
}
