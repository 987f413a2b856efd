package ledger_test

import (
	"math"
	"testing"

	"github.com/storacha/batchmint/pkg/collection/events"
	"github.com/storacha/batchmint/pkg/collection/ledger"
	"github.com/storacha/batchmint/pkg/collection/testutil"
	"github.com/storacha/go-ucanto/did"
	"github.com/stretchr/testify/require"
)

func newAPI(t *testing.T) (ledger.API, *events.Recorder) {
	recorder := &events.Recorder{}
	return ledger.API{Repo: testutil.CreateTestRepo(t), Events: recorder}, recorder
}

func TestMint(t *testing.T) {
	t.Run("mints consecutive tokens", func(t *testing.T) {
		api, recorder := newAPI(t)
		alice := testutil.RandomDID(t)
		bob := testutil.RandomDID(t)

		start, err := api.Mint(t.Context(), alice, 3)
		require.NoError(t, err)
		require.Equal(t, uint64(0), start)
		start, err = api.Mint(t.Context(), bob, 2)
		require.NoError(t, err)
		require.Equal(t, uint64(3), start)

		for tokenID, want := range []did.DID{alice, alice, alice, bob, bob} {
			owner, err := api.OwnerOf(t.Context(), uint64(tokenID))
			require.NoError(t, err)
			require.Equal(t, want, owner)
		}
		balance, err := api.BalanceOf(t.Context(), alice)
		require.NoError(t, err)
		require.Equal(t, uint64(3), balance)
		supply, err := api.TotalSupply(t.Context())
		require.NoError(t, err)
		require.Equal(t, uint64(5), supply)

		require.Len(t, recorder.Events, 5)
		require.Equal(t, events.Transfer{To: bob.String(), TokenID: 4}, recorder.Events[4])
	})

	t.Run("rejects a zero quantity or empty recipient", func(t *testing.T) {
		api, _ := newAPI(t)
		_, err := api.Mint(t.Context(), testutil.RandomDID(t), 0)
		require.ErrorIs(t, err, ledger.ErrZeroQuantity)
		_, err = api.Mint(t.Context(), did.DID{}, 1)
		require.ErrorIs(t, err, ledger.ErrInvalidRecipient)
	})

	t.Run("rejects minting onto an owned token", func(t *testing.T) {
		api, _ := newAPI(t)
		alice := testutil.RandomDID(t)
		_, err := api.Mint(t.Context(), alice, 2)
		require.NoError(t, err)
		require.NoError(t, api.Repo.SetLedgerState(t.Context(), ledger.State{NextTokenID: 1}))

		_, err = api.Mint(t.Context(), alice, 1)
		require.ErrorIs(t, err, ledger.ErrAlreadyMinted)
	})

	t.Run("refuses to mint past the limit", func(t *testing.T) {
		api, recorder := newAPI(t)
		api.Limit = 4
		alice := testutil.RandomDID(t)

		_, err := api.Mint(t.Context(), alice, 5)
		require.ErrorIs(t, err, ledger.ErrSupplyOverflow)
		start, err := api.Mint(t.Context(), alice, 4)
		require.NoError(t, err)
		require.Equal(t, uint64(0), start)
		_, err = api.Mint(t.Context(), alice, 1)
		require.ErrorIs(t, err, ledger.ErrSupplyOverflow)
		require.Len(t, recorder.Events, 4)
	})

	t.Run("mints up to the largest storable token ID", func(t *testing.T) {
		api, _ := newAPI(t)
		api.Limit = math.MaxInt64
		alice := testutil.RandomDID(t)
		require.NoError(t, api.Repo.SetLedgerState(t.Context(), ledger.State{NextTokenID: math.MaxInt64 - 1}))

		_, err := api.Mint(t.Context(), alice, 2)
		require.ErrorIs(t, err, ledger.ErrSupplyOverflow)
		start, err := api.Mint(t.Context(), alice, 1)
		require.NoError(t, err)
		require.Equal(t, uint64(math.MaxInt64-1), start)
		owner, err := api.OwnerOf(t.Context(), start)
		require.NoError(t, err)
		require.Equal(t, alice, owner)
	})
}

func TestTransferFrom(t *testing.T) {
	api, recorder := newAPI(t)
	alice := testutil.RandomDID(t)
	bob := testutil.RandomDID(t)
	carol := testutil.RandomDID(t)
	_, err := api.Mint(t.Context(), alice, 3)
	require.NoError(t, err)

	t.Run("lets the owner transfer", func(t *testing.T) {
		require.NoError(t, api.TransferFrom(t.Context(), alice, alice, bob, 0))
		owner, err := api.OwnerOf(t.Context(), 0)
		require.NoError(t, err)
		require.Equal(t, bob, owner)
		require.Equal(t, events.Transfer{From: alice.String(), To: bob.String(), TokenID: 0}, recorder.Events[len(recorder.Events)-1])
	})

	t.Run("refuses strangers", func(t *testing.T) {
		err := api.TransferFrom(t.Context(), carol, alice, carol, 1)
		require.ErrorIs(t, err, ledger.ErrNotOwnerOrApproved)
	})

	t.Run("refuses the wrong from account", func(t *testing.T) {
		err := api.TransferFrom(t.Context(), bob, bob, carol, 1)
		require.ErrorIs(t, err, ledger.ErrIncorrectOwner)
	})

	t.Run("refuses the empty recipient", func(t *testing.T) {
		err := api.TransferFrom(t.Context(), alice, alice, did.DID{}, 1)
		require.ErrorIs(t, err, ledger.ErrInvalidRecipient)
	})

	t.Run("lets the approved account transfer once", func(t *testing.T) {
		require.NoError(t, api.Approve(t.Context(), alice, carol, 1))
		approved, err := api.GetApproved(t.Context(), 1)
		require.NoError(t, err)
		require.Equal(t, carol, approved)

		require.NoError(t, api.TransferFrom(t.Context(), carol, alice, carol, 1))
		approved, err = api.GetApproved(t.Context(), 1)
		require.NoError(t, err)
		require.Equal(t, did.DID{}, approved)
	})

	t.Run("lets an operator transfer", func(t *testing.T) {
		require.NoError(t, api.SetApprovalForAll(t.Context(), alice, bob, true))
		ok, err := api.IsApprovedForAll(t.Context(), alice, bob)
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, api.TransferFrom(t.Context(), bob, alice, carol, 2))

		require.NoError(t, api.SetApprovalForAll(t.Context(), alice, bob, false))
		ok, err = api.IsApprovedForAll(t.Context(), alice, bob)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("fails for nonexistent tokens", func(t *testing.T) {
		err := api.TransferFrom(t.Context(), alice, alice, bob, 99)
		require.ErrorIs(t, err, ledger.ErrNonexistentToken)
	})
}

func TestApprove(t *testing.T) {
	api, _ := newAPI(t)
	alice := testutil.RandomDID(t)
	bob := testutil.RandomDID(t)
	_, err := api.Mint(t.Context(), alice, 1)
	require.NoError(t, err)

	require.ErrorIs(t, api.Approve(t.Context(), alice, alice, 0), ledger.ErrApprovalToCurrentOwner)
	require.ErrorIs(t, api.Approve(t.Context(), bob, bob, 0), ledger.ErrNotOwnerOrApproved)
	require.ErrorIs(t, api.SetApprovalForAll(t.Context(), alice, alice, true), ledger.ErrApproveToCaller)

	require.NoError(t, api.Approve(t.Context(), alice, bob, 0))
	require.NoError(t, api.Approve(t.Context(), alice, did.DID{}, 0))
	approved, err := api.GetApproved(t.Context(), 0)
	require.NoError(t, err)
	require.Equal(t, did.DID{}, approved)
}

func TestBurn(t *testing.T) {
	api, recorder := newAPI(t)
	alice := testutil.RandomDID(t)
	bob := testutil.RandomDID(t)
	_, err := api.Mint(t.Context(), alice, 2)
	require.NoError(t, err)

	require.ErrorIs(t, api.Burn(t.Context(), bob, 0), ledger.ErrNotOwnerOrApproved)
	require.NoError(t, api.Burn(t.Context(), alice, 0))

	exists, err := api.Exists(t.Context(), 0)
	require.NoError(t, err)
	require.False(t, exists)
	_, err = api.OwnerOf(t.Context(), 0)
	require.ErrorIs(t, err, ledger.ErrNonexistentToken)

	supply, err := api.TotalSupply(t.Context())
	require.NoError(t, err)
	require.Equal(t, uint64(1), supply)
	next, err := api.NextTokenID(t.Context())
	require.NoError(t, err)
	require.Equal(t, uint64(2), next)

	require.Equal(t, events.Transfer{From: alice.String(), TokenID: 0}, recorder.Events[len(recorder.Events)-1])
	require.ErrorIs(t, api.Burn(t.Context(), alice, 0), ledger.ErrNonexistentToken)
}
