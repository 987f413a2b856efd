package access

import (
	"context"
	"errors"
	"fmt"

	logging "github.com/ipfs/go-log/v2"
	"github.com/storacha/batchmint/pkg/collection/events"
	"github.com/storacha/go-ucanto/did"
)

var log = logging.Logger("collection/access")

// ErrAlreadyBootstrapped indicates that roles have already been assigned, so
// the first admin can no longer be installed without an existing admin.
var ErrAlreadyBootstrapped = errors.New("roles already assigned")

// Gate answers whether a caller holds a capability.
type Gate interface {
	HasCapability(ctx context.Context, caller did.DID, capability Capability) (bool, error)
}

// Repo stores the role bitmask of each account.
type Repo interface {
	// GetRoles returns the roles held by account, or RoleNone if it holds none.
	GetRoles(ctx context.Context, account did.DID) (Role, error)
	// SetRoles replaces the roles held by account.
	SetRoles(ctx context.Context, account did.DID, roles Role) error
	// CountRoleHolders returns the number of accounts holding any role.
	CountRoleHolders(ctx context.Context) (uint64, error)
}

// Check returns an [UnauthorizedError] unless the gate grants the capability
// to the caller.
func Check(ctx context.Context, gate Gate, caller did.DID, capability Capability) error {
	if capability == CapabilityNone {
		return nil
	}
	ok, err := gate.HasCapability(ctx, caller, capability)
	if err != nil {
		return fmt.Errorf("checking capability %q for %s: %w", capability, caller, err)
	}
	if !ok {
		return UnauthorizedError{Caller: caller, Capability: capability}
	}
	return nil
}

// API provides role management backed by a Repo.
type API struct {
	Repo   Repo
	Events events.Sink
}

var _ Gate = API{}

// HasCapability implements Gate.
func (a API) HasCapability(ctx context.Context, caller did.DID, capability Capability) (bool, error) {
	required, err := capability.Roles()
	if err != nil {
		return false, err
	}
	if required == RoleNone {
		return true, nil
	}
	return a.HasAllRoles(ctx, caller, required)
}

// RolesOf returns the roles held by account.
func (a API) RolesOf(ctx context.Context, account did.DID) (Role, error) {
	return a.Repo.GetRoles(ctx, account)
}

// HasAllRoles reports whether account holds every role in roles.
func (a API) HasAllRoles(ctx context.Context, account did.DID, roles Role) (bool, error) {
	held, err := a.Repo.GetRoles(ctx, account)
	if err != nil {
		return false, fmt.Errorf("getting roles of %s: %w", account, err)
	}
	return held.Has(roles), nil
}

// GrantRoles adds roles to account. The caller must be an admin.
func (a API) GrantRoles(ctx context.Context, caller, account did.DID, roles Role) error {
	if err := Check(ctx, a, caller, CapabilityAdmin); err != nil {
		return err
	}
	held, err := a.Repo.GetRoles(ctx, account)
	if err != nil {
		return fmt.Errorf("getting roles of %s: %w", account, err)
	}
	return a.setRoles(ctx, account, held|roles)
}

// RevokeRoles removes roles from account. The caller must be an admin.
func (a API) RevokeRoles(ctx context.Context, caller, account did.DID, roles Role) error {
	if err := Check(ctx, a, caller, CapabilityAdmin); err != nil {
		return err
	}
	held, err := a.Repo.GetRoles(ctx, account)
	if err != nil {
		return fmt.Errorf("getting roles of %s: %w", account, err)
	}
	return a.setRoles(ctx, account, held&^roles)
}

// Bootstrap grants every role to admin, provided no account holds any role
// yet.
func (a API) Bootstrap(ctx context.Context, admin did.DID) error {
	n, err := a.Repo.CountRoleHolders(ctx)
	if err != nil {
		return fmt.Errorf("counting role holders: %w", err)
	}
	if n > 0 {
		return ErrAlreadyBootstrapped
	}
	return a.setRoles(ctx, admin, RoleAll)
}

func (a API) setRoles(ctx context.Context, account did.DID, roles Role) error {
	if err := a.Repo.SetRoles(ctx, account, roles); err != nil {
		return fmt.Errorf("setting roles of %s: %w", account, err)
	}
	if a.Events != nil {
		if err := a.Events.Emit(ctx, events.RolesUpdated{Account: account.String(), Roles: uint64(roles)}); err != nil {
			return err
		}
	}
	log.Infow("roles updated", "account", account, "roles", roles)
	return nil
}
