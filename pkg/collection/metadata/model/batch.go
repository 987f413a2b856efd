package model

import (
	"fmt"
	"time"
)

// Batch is a contiguous range of token IDs sharing one base metadata URI. A
// batch is identified by its exclusive end marker, the first token ID it does
// not include.
type Batch struct {
	start     uint64
	end       uint64
	baseURI   string
	createdAt time.Time
	updatedAt time.Time
}

// ID returns the batch ID, which is the batch's exclusive end marker.
func (b *Batch) ID() uint64 {
	return b.end
}

// Start returns the first token ID in the batch.
func (b *Batch) Start() uint64 {
	return b.start
}

// End returns the exclusive end of the batch.
func (b *Batch) End() uint64 {
	return b.end
}

// Last returns the last token ID in the batch (inclusive).
func (b *Batch) Last() uint64 {
	return b.end - 1
}

// Size returns the number of token IDs covered by the batch.
func (b *Batch) Size() uint64 {
	return b.end - b.start
}

// BaseURI returns the base URI shared by every token in the batch.
func (b *Batch) BaseURI() string {
	return b.baseURI
}

// CreatedAt returns the time the batch was appended.
func (b *Batch) CreatedAt() time.Time {
	return b.createdAt
}

// UpdatedAt returns the time the batch's base URI was last written.
func (b *Batch) UpdatedAt() time.Time {
	return b.updatedAt
}

// SetBaseURI replaces the base URI, leaving the boundaries untouched.
func (b *Batch) SetBaseURI(uri string) {
	b.baseURI = uri
	b.updatedAt = time.Now().UTC().Truncate(time.Second)
}

// Clone returns a copy of the batch that shares no state with the original.
func (b *Batch) Clone() *Batch {
	c := *b
	return &c
}

func validateBatch(b *Batch) (*Batch, error) {
	if b.end <= b.start {
		return nil, fmt.Errorf("invalid batch range [%d, %d)", b.start, b.end)
	}
	return b, nil
}

// NewBatch creates a batch covering [start, end) with the given base URI.
func NewBatch(start, end uint64, baseURI string) (*Batch, error) {
	now := time.Now().UTC().Truncate(time.Second)
	return validateBatch(&Batch{
		start:     start,
		end:       end,
		baseURI:   baseURI,
		createdAt: now,
		updatedAt: now,
	})
}

// BatchRowScanner is a function type for scanning a batch row from the database.
type BatchRowScanner func(start, end *uint64, baseURI *string, createdAt, updatedAt *time.Time) error

// ReadBatchFromDatabase reads a Batch from the database using the provided scanner function.
func ReadBatchFromDatabase(scanner BatchRowScanner) (*Batch, error) {
	batch := &Batch{}
	err := scanner(&batch.start, &batch.end, &batch.baseURI, &batch.createdAt, &batch.updatedAt)
	if err != nil {
		return nil, fmt.Errorf("reading batch from database: %w", err)
	}
	return validateBatch(batch)
}

// BatchWriter is a function type for writing a batch to the database.
type BatchWriter func(start, end uint64, baseURI string, createdAt, updatedAt time.Time) error

// WriteBatchToDatabase writes a Batch to the database using the provided writer function.
func WriteBatchToDatabase(writer BatchWriter, batch *Batch) error {
	return writer(batch.start, batch.end, batch.baseURI, batch.createdAt, batch.updatedAt)
}
