package metadata

import (
	"context"

	"github.com/storacha/batchmint/pkg/collection/metadata/model"
)

// Repo persists the batches of the range index.
type Repo interface {
	// CreateBatch stores a newly appended batch.
	CreateBatch(ctx context.Context, batch *model.Batch) error
	// UpdateBatch stores the base URI of an existing batch.
	UpdateBatch(ctx context.Context, batch *model.Batch) error
	// ListBatches lists every batch ordered by start.
	ListBatches(ctx context.Context) ([]*model.Batch, error)
}
