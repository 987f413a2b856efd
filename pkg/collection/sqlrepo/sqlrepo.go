// Package sqlrepo implements the collection repositories on top of SQLite.
package sqlrepo

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"math"

	"github.com/storacha/batchmint/pkg/collection/access"
	"github.com/storacha/batchmint/pkg/collection/events"
	"github.com/storacha/batchmint/pkg/collection/ledger"
	"github.com/storacha/batchmint/pkg/collection/metadata"
	_ "modernc.org/sqlite"
)

// Schema creates every table the repository uses. It is idempotent.
//
//go:embed schema.sql
var Schema string

// MaxTokenID is the largest token ID, or batch ID, the repository can store.
// SQLite integers are signed 64-bit.
const MaxTokenID uint64 = math.MaxInt64

// Repo is the interface that combines the metadata, ledger, access and events
// repositories.
type Repo interface {
	metadata.Repo
	ledger.Repo
	access.Repo
	events.Repo
	// WithTx runs fn against a repository bound to a single transaction,
	// committing if fn returns nil and rolling back otherwise. Calling WithTx
	// on a transaction-bound repository runs fn in the same transaction.
	WithTx(ctx context.Context, fn func(tx Repo) error) error
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new Repo instance with the given database connection.
func New(db *sql.DB) Repo {
	return &repo{db: db, q: db}
}

// Open opens (creating if needed) the SQLite database at path and applies the
// schema.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	// SQLite allows a single writer, and each connection to ":memory:" is a
	// separate database.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return db, nil
}

type repo struct {
	db *sql.DB // nil when bound to a transaction
	q  querier
}

func (r *repo) WithTx(ctx context.Context, fn func(tx Repo) error) (err error) {
	if r.db == nil {
		return fn(r)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("rolling back: %w", rbErr))
			}
		}
	}()
	if err = fn(&repo{q: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
