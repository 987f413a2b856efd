package sqlrepo

import (
	"context"
	"time"

	"github.com/storacha/batchmint/pkg/collection/events"
	"github.com/storacha/batchmint/pkg/collection/types/id"
)

var _ events.Repo = (*repo)(nil)

// CreateEvent stores a new event.
func (r *repo) CreateEvent(ctx context.Context, event *events.Event) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO events (id, kind, payload, created_at) VALUES (?, ?, ?, ?)`,
		event.ID(), event.Kind(), event.RawPayload(), timeValue(event.CreatedAt()),
	)
	return err
}

// ListEvents lists events in the order they were emitted. A nil kind lists
// every event.
func (r *repo) ListEvents(ctx context.Context, kind *events.Kind) ([]*events.Event, error) {
	query := `SELECT id, kind, payload, created_at FROM events ORDER BY seq`
	var args []any
	if kind != nil {
		query = `SELECT id, kind, payload, created_at FROM events WHERE kind = ? ORDER BY seq`
		args = append(args, *kind)
	}
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*events.Event
	for rows.Next() {
		event, err := events.ReadEventFromDatabase(func(id *id.ID, kind *events.Kind, payload *[]byte, createdAt *time.Time) error {
			return rows.Scan(id, kind, payload, timeScanner(createdAt))
		})
		if err != nil {
			return nil, err
		}
		list = append(list, event)
	}
	return list, rows.Err()
}
