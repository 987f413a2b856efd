// Package access implements the bitmask role gate that restricts collection
// operations to accounts holding the right capability.
package access

import (
	"fmt"
	"math/bits"
	"strings"
)

// Role is a bitmask of roles held by an account.
type Role uint64

const (
	// RoleAdmin may grant and revoke roles.
	RoleAdmin Role = 1 << iota
	// RoleMinter may upload metadata batches and mint tokens.
	RoleMinter
	// RoleManager may overwrite the base URI of existing batches.
	RoleManager

	// RoleNone holds no roles.
	RoleNone Role = 0
	// RoleAll holds every defined role.
	RoleAll = RoleAdmin | RoleMinter | RoleManager
)

var roleNames = []struct {
	role Role
	name string
}{
	{RoleAdmin, "admin"},
	{RoleMinter, "minter"},
	{RoleManager, "manager"},
}

// Has reports whether r includes every role in other.
func (r Role) Has(other Role) bool {
	return r&other == other
}

// Count returns the number of roles set in r.
func (r Role) Count() int {
	return bits.OnesCount64(uint64(r))
}

func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	var names []string
	rest := r
	for _, rn := range roleNames {
		if r.Has(rn.role) {
			names = append(names, rn.name)
			rest &^= rn.role
		}
	}
	if rest != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint64(rest)))
	}
	return strings.Join(names, "|")
}

// ParseRoles parses role names ("admin", "minter", "manager", "all") into a
// bitmask.
func ParseRoles(names ...string) (Role, error) {
	var r Role
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "all" {
			r |= RoleAll
			continue
		}
		found := false
		for _, rn := range roleNames {
			if rn.name == name {
				r |= rn.role
				found = true
				break
			}
		}
		if !found {
			return RoleNone, fmt.Errorf("unknown role: %q", name)
		}
	}
	return r, nil
}

// Capability is the tag an operation declares as required of its caller.
type Capability string

const (
	CapabilityNone    Capability = "none"
	CapabilityAdmin   Capability = "admin"
	CapabilityMinter  Capability = "minter"
	CapabilityManager Capability = "manager"
)

// Roles returns the roles a caller must hold to exercise the capability.
func (c Capability) Roles() (Role, error) {
	switch c {
	case CapabilityNone:
		return RoleNone, nil
	case CapabilityAdmin:
		return RoleAdmin, nil
	case CapabilityMinter:
		return RoleMinter, nil
	case CapabilityManager:
		return RoleManager, nil
	default:
		return RoleNone, fmt.Errorf("unknown capability: %q", string(c))
	}
}
