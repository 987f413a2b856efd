package access_test

import (
	"testing"

	"github.com/storacha/batchmint/pkg/collection/access"
	"github.com/stretchr/testify/require"
)

func TestRoles(t *testing.T) {
	t.Run("parses role names", func(t *testing.T) {
		r, err := access.ParseRoles("minter", " Manager ")
		require.NoError(t, err)
		require.Equal(t, access.RoleMinter|access.RoleManager, r)
		require.Equal(t, 2, r.Count())
		require.Equal(t, "minter|manager", r.String())

		r, err = access.ParseRoles("all")
		require.NoError(t, err)
		require.Equal(t, access.RoleAll, r)

		_, err = access.ParseRoles("owner")
		require.Error(t, err)
	})

	t.Run("checks every role is held", func(t *testing.T) {
		r := access.RoleAdmin | access.RoleMinter
		require.True(t, r.Has(access.RoleMinter))
		require.True(t, r.Has(access.RoleNone))
		require.False(t, r.Has(access.RoleMinter|access.RoleManager))
		require.Equal(t, "none", access.RoleNone.String())
		require.Equal(t, "admin|0x10", (access.RoleAdmin | 1<<4).String())
	})

	t.Run("maps capabilities to roles", func(t *testing.T) {
		for capability, want := range map[access.Capability]access.Role{
			access.CapabilityNone:    access.RoleNone,
			access.CapabilityAdmin:   access.RoleAdmin,
			access.CapabilityMinter:  access.RoleMinter,
			access.CapabilityManager: access.RoleManager,
		} {
			r, err := capability.Roles()
			require.NoError(t, err)
			require.Equal(t, want, r)
		}
		_, err := access.Capability("owner").Roles()
		require.Error(t, err)
	})
}
