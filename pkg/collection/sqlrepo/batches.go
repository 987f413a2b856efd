package sqlrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/storacha/batchmint/pkg/collection/metadata"
	"github.com/storacha/batchmint/pkg/collection/metadata/model"
)

var _ metadata.Repo = (*repo)(nil)

// CreateBatch stores a newly appended batch.
func (r *repo) CreateBatch(ctx context.Context, batch *model.Batch) error {
	insertQuery := `INSERT INTO batches (range_end, range_start, base_uri, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	return model.WriteBatchToDatabase(func(start, end uint64, baseURI string, createdAt, updatedAt time.Time) error {
		_, err := r.q.ExecContext(ctx, insertQuery, end, start, baseURI, timeValue(createdAt), timeValue(updatedAt))
		return err
	}, batch)
}

// UpdateBatch stores the base URI of an existing batch. Batch boundaries are
// never rewritten.
func (r *repo) UpdateBatch(ctx context.Context, batch *model.Batch) error {
	updateQuery := `UPDATE batches SET base_uri = ?, updated_at = ? WHERE range_end = ? AND range_start = ?`
	return model.WriteBatchToDatabase(func(start, end uint64, baseURI string, _, updatedAt time.Time) error {
		res, err := r.q.ExecContext(ctx, updateQuery, baseURI, timeValue(updatedAt), end, start)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n != 1 {
			return fmt.Errorf("batch [%d, %d) not found", start, end)
		}
		return nil
	}, batch)
}

// ListBatches lists every batch ordered by start.
func (r *repo) ListBatches(ctx context.Context) ([]*model.Batch, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT range_start, range_end, base_uri, created_at, updated_at FROM batches ORDER BY range_start`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []*model.Batch
	for rows.Next() {
		batch, err := model.ReadBatchFromDatabase(func(start, end *uint64, baseURI *string, createdAt, updatedAt *time.Time) error {
			return rows.Scan(start, end, baseURI, timeScanner(createdAt), timeScanner(updatedAt))
		})
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return batches, rows.Err()
}
