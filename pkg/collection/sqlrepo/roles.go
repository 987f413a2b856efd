package sqlrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/storacha/batchmint/pkg/collection/access"
	"github.com/storacha/go-ucanto/did"
)

var _ access.Repo = (*repo)(nil)

// GetRoles returns the roles held by account, or RoleNone if it holds none.
func (r *repo) GetRoles(ctx context.Context, account did.DID) (access.Role, error) {
	var roles access.Role
	err := r.q.QueryRowContext(ctx,
		`SELECT roles FROM roles WHERE account = ?`, didValue(account),
	).Scan(&roles)
	if errors.Is(err, sql.ErrNoRows) {
		return access.RoleNone, nil
	}
	return roles, err
}

// SetRoles replaces the roles held by account. Accounts left with no roles are
// removed.
func (r *repo) SetRoles(ctx context.Context, account did.DID, roles access.Role) error {
	if roles == access.RoleNone {
		_, err := r.q.ExecContext(ctx, `DELETE FROM roles WHERE account = ?`, didValue(account))
		return err
	}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO roles (account, roles) VALUES (?, ?)
		ON CONFLICT (account) DO UPDATE SET roles = excluded.roles`,
		didValue(account), uint64(roles),
	)
	return err
}

// CountRoleHolders returns the number of accounts holding any role.
func (r *repo) CountRoleHolders(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM roles`).Scan(&n)
	return n, err
}
