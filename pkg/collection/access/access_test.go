package access_test

import (
	"testing"

	"github.com/storacha/batchmint/pkg/collection/access"
	"github.com/storacha/batchmint/pkg/collection/events"
	"github.com/storacha/batchmint/pkg/collection/testutil"
	"github.com/stretchr/testify/require"
)

func TestAccess(t *testing.T) {
	t.Run("bootstraps the first admin once", func(t *testing.T) {
		recorder := &events.Recorder{}
		api := access.API{Repo: testutil.CreateTestRepo(t), Events: recorder}
		admin := testutil.RandomDID(t)

		require.NoError(t, api.Bootstrap(t.Context(), admin))
		roles, err := api.RolesOf(t.Context(), admin)
		require.NoError(t, err)
		require.Equal(t, access.RoleAll, roles)
		require.Equal(t, []events.Payload{
			events.RolesUpdated{Account: admin.String(), Roles: uint64(access.RoleAll)},
		}, recorder.Events)

		err = api.Bootstrap(t.Context(), testutil.RandomDID(t))
		require.ErrorIs(t, err, access.ErrAlreadyBootstrapped)
	})

	t.Run("lets admins grant and revoke roles", func(t *testing.T) {
		api := access.API{Repo: testutil.CreateTestRepo(t)}
		admin := testutil.RandomDID(t)
		account := testutil.RandomDID(t)
		require.NoError(t, api.Bootstrap(t.Context(), admin))

		require.NoError(t, api.GrantRoles(t.Context(), admin, account, access.RoleMinter|access.RoleManager))
		ok, err := api.HasAllRoles(t.Context(), account, access.RoleMinter|access.RoleManager)
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, api.RevokeRoles(t.Context(), admin, account, access.RoleManager))
		roles, err := api.RolesOf(t.Context(), account)
		require.NoError(t, err)
		require.Equal(t, access.RoleMinter, roles)

		ok, err = api.HasCapability(t.Context(), account, access.CapabilityManager)
		require.NoError(t, err)
		require.False(t, ok)
		ok, err = api.HasCapability(t.Context(), account, access.CapabilityMinter)
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, api.RevokeRoles(t.Context(), admin, account, access.RoleAll))
		roles, err = api.RolesOf(t.Context(), account)
		require.NoError(t, err)
		require.Equal(t, access.RoleNone, roles)
	})

	t.Run("refuses role changes by non-admins", func(t *testing.T) {
		api := access.API{Repo: testutil.CreateTestRepo(t)}
		admin := testutil.RandomDID(t)
		minter := testutil.RandomDID(t)
		require.NoError(t, api.Bootstrap(t.Context(), admin))
		require.NoError(t, api.GrantRoles(t.Context(), admin, minter, access.RoleMinter))

		err := api.GrantRoles(t.Context(), minter, minter, access.RoleAdmin)
		require.ErrorIs(t, err, access.ErrUnauthorized)
		err = api.RevokeRoles(t.Context(), minter, admin, access.RoleAdmin)
		require.ErrorIs(t, err, access.ErrUnauthorized)

		roles, err := api.RolesOf(t.Context(), admin)
		require.NoError(t, err)
		require.Equal(t, access.RoleAll, roles)
	})

	t.Run("grants the none capability to anyone", func(t *testing.T) {
		api := access.API{Repo: testutil.CreateTestRepo(t)}
		require.NoError(t, access.Check(t.Context(), api, testutil.RandomDID(t), access.CapabilityNone))
		err := access.Check(t.Context(), api, testutil.RandomDID(t), access.CapabilityAdmin)
		require.ErrorIs(t, err, access.ErrUnauthorized)
	})
}
