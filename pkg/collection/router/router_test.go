package router_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/storacha/batchmint/pkg/collection/access"
	"github.com/storacha/batchmint/pkg/collection/router"
	"github.com/storacha/batchmint/pkg/collection/testutil"
	"github.com/storacha/batchmint/pkg/collection/types"
	"github.com/storacha/go-ucanto/did"
	"github.com/stretchr/testify/require"
)

// staticGate grants the capabilities it lists to every caller.
type staticGate map[access.Capability]bool

func (g staticGate) HasCapability(_ context.Context, _ did.DID, capability access.Capability) (bool, error) {
	return capability == access.CapabilityNone || g[capability], nil
}

type echoArgs struct {
	Value string `json:"value"`
}

func echo(_ context.Context, _ did.DID, raw json.RawMessage) (any, error) {
	args, err := router.DecodeArgs[echoArgs](raw)
	if err != nil {
		return nil, err
	}
	return args.Value, nil
}

func TestRouter(t *testing.T) {
	caller := testutil.RandomDID(t)

	r := router.New(staticGate{access.CapabilityMinter: true})
	require.NoError(t, r.Handle("echo", router.Route{Capability: access.CapabilityNone, Handler: echo}))
	require.NoError(t, r.Handle("mintEcho", router.Route{Capability: access.CapabilityMinter, Handler: echo}))
	require.NoError(t, r.Handle("manageEcho", router.Route{Capability: access.CapabilityManager, Handler: echo}))

	t.Run("dispatches to the named handler", func(t *testing.T) {
		result, err := r.Dispatch(t.Context(), caller, "echo", json.RawMessage(`{"value":"hello"}`))
		require.NoError(t, err)
		require.Equal(t, "hello", result)

		result, err = r.Dispatch(t.Context(), caller, "mintEcho", nil)
		require.NoError(t, err)
		require.Equal(t, "", result)
	})

	t.Run("enforces the route capability", func(t *testing.T) {
		_, err := r.Dispatch(t.Context(), caller, "manageEcho", json.RawMessage(`{"value":"hello"}`))
		require.ErrorIs(t, err, access.ErrUnauthorized)
	})

	t.Run("rejects unknown operations", func(t *testing.T) {
		_, err := r.Dispatch(t.Context(), caller, "missing", nil)
		require.ErrorIs(t, err, router.ErrUnknownOperation)
	})

	t.Run("rejects malformed arguments", func(t *testing.T) {
		_, err := r.Dispatch(t.Context(), caller, "echo", json.RawMessage(`{"other":1}`))
		require.ErrorIs(t, err, router.ErrInvalidArgs)
		_, err = r.Dispatch(t.Context(), caller, "echo", json.RawMessage(`[`))
		require.ErrorIs(t, err, router.ErrInvalidArgs)
	})

	t.Run("lists operations in order", func(t *testing.T) {
		require.Equal(t, []string{"echo", "manageEcho", "mintEcho"}, r.Operations())
		route, ok := r.Route("mintEcho")
		require.True(t, ok)
		require.Equal(t, access.CapabilityMinter, route.Capability)
	})

	t.Run("refuses invalid routes", func(t *testing.T) {
		err := r.Handle("echo", router.Route{Capability: access.CapabilityNone, Handler: echo})
		require.ErrorIs(t, err, router.ErrDuplicateOperation)
		err = r.Handle("", router.Route{Capability: access.CapabilityNone, Handler: echo})
		require.ErrorAs(t, err, &types.ErrEmpty{})
		err = r.Handle("other", router.Route{Capability: access.CapabilityNone})
		require.ErrorAs(t, err, &types.ErrEmpty{})
		err = r.Handle("other", router.Route{Capability: "owner", Handler: echo})
		require.Error(t, err)
	})
}
