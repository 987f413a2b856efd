package sqlrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/storacha/batchmint/pkg/collection/ledger"
	"github.com/storacha/go-ucanto/did"
)

var _ ledger.Repo = (*repo)(nil)

// GetLedgerState returns the ledger counters, zero-valued for a new ledger.
func (r *repo) GetLedgerState(ctx context.Context) (ledger.State, error) {
	var state ledger.State
	err := r.q.QueryRowContext(ctx,
		`SELECT next_token_id, burned FROM ledger_state WHERE id = 0`,
	).Scan(&state.NextTokenID, &state.Burned)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.State{}, nil
	}
	return state, err
}

// SetLedgerState stores the ledger counters.
func (r *repo) SetLedgerState(ctx context.Context, state ledger.State) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO ledger_state (id, next_token_id, burned) VALUES (0, ?, ?)
		ON CONFLICT (id) DO UPDATE SET next_token_id = excluded.next_token_id, burned = excluded.burned`,
		state.NextTokenID, state.Burned,
	)
	return err
}

// CreateTokens records quantity tokens owned by owner, starting at start.
func (r *repo) CreateTokens(ctx context.Context, owner did.DID, start, quantity uint64) error {
	insertQuery := `INSERT INTO tokens (token_id, owner) VALUES (?, ?)`
	for tokenID := start; tokenID < start+quantity; tokenID++ {
		if _, err := r.q.ExecContext(ctx, insertQuery, tokenID, didValue(owner)); err != nil {
			return err
		}
	}
	return nil
}

// GetOwner returns the owner of tokenID, and false if it does not exist.
func (r *repo) GetOwner(ctx context.Context, tokenID uint64) (did.DID, bool, error) {
	var owner did.DID
	err := r.q.QueryRowContext(ctx,
		`SELECT owner FROM tokens WHERE token_id = ?`, tokenID,
	).Scan(didScanner(&owner))
	if errors.Is(err, sql.ErrNoRows) {
		return did.DID{}, false, nil
	}
	if err != nil {
		return did.DID{}, false, err
	}
	return owner, true, nil
}

// SetOwner changes the owner of tokenID and clears its approval.
func (r *repo) SetOwner(ctx context.Context, tokenID uint64, owner did.DID) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE tokens SET owner = ?, approved = NULL WHERE token_id = ?`, didValue(owner), tokenID,
	)
	return err
}

// DeleteToken removes tokenID and its approval.
func (r *repo) DeleteToken(ctx context.Context, tokenID uint64) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM tokens WHERE token_id = ?`, tokenID)
	return err
}

// CountTokens returns the number of tokens owned by owner.
func (r *repo) CountTokens(ctx context.Context, owner did.DID) (uint64, error) {
	var n uint64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tokens WHERE owner = ?`, didValue(owner),
	).Scan(&n)
	return n, err
}

// GetApproved returns the approved account of tokenID, and false if none.
func (r *repo) GetApproved(ctx context.Context, tokenID uint64) (did.DID, bool, error) {
	var approved did.DID
	err := r.q.QueryRowContext(ctx,
		`SELECT approved FROM tokens WHERE token_id = ?`, tokenID,
	).Scan(didScanner(&approved))
	if errors.Is(err, sql.ErrNoRows) {
		return did.DID{}, false, nil
	}
	if err != nil {
		return did.DID{}, false, err
	}
	return approved, approved != did.DID{}, nil
}

// SetApproved sets the approved account of tokenID. The empty DID clears it.
func (r *repo) SetApproved(ctx context.Context, tokenID uint64, approved did.DID) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE tokens SET approved = ? WHERE token_id = ?`, didValue(approved), tokenID,
	)
	return err
}

// IsOperator reports whether operator may manage every token of owner.
func (r *repo) IsOperator(ctx context.Context, owner, operator did.DID) (bool, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM operators WHERE owner = ? AND operator = ?`, didValue(owner), didValue(operator),
	).Scan(&n)
	return n > 0, err
}

// SetOperator enables or disables operator for owner.
func (r *repo) SetOperator(ctx context.Context, owner, operator did.DID, approved bool) error {
	if !approved {
		_, err := r.q.ExecContext(ctx,
			`DELETE FROM operators WHERE owner = ? AND operator = ?`, didValue(owner), didValue(operator),
		)
		return err
	}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO operators (owner, operator) VALUES (?, ?) ON CONFLICT DO NOTHING`, didValue(owner), didValue(operator),
	)
	return err
}
