package collection

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/storacha/batchmint/pkg/collection/access"
	"github.com/storacha/batchmint/pkg/collection/router"
	"github.com/storacha/go-ucanto/did"
)

type tokenArgs struct {
	TokenID uint64 `json:"tokenId"`
}

type batchArgs struct {
	BatchID uint64 `json:"batchId"`
}

type uploadBatchArgs struct {
	Amount  uint64 `json:"amount"`
	BaseURI string `json:"baseUri"`
}

type setBaseURIArgs struct {
	BatchID uint64 `json:"batchId"`
	BaseURI string `json:"baseUri"`
}

type mintArgs struct {
	To       string `json:"to"`
	Quantity uint64 `json:"quantity"`
	BaseURI  string `json:"baseUri,omitempty"`
}

type transferArgs struct {
	From    string `json:"from"`
	To      string `json:"to"`
	TokenID uint64 `json:"tokenId"`
}

type approveArgs struct {
	To      string `json:"to"`
	TokenID uint64 `json:"tokenId"`
}

type approvalForAllArgs struct {
	Owner    string `json:"owner,omitempty"`
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

type accountArgs struct {
	Account string   `json:"account"`
	Roles   []string `json:"roles,omitempty"`
}

// BatchInfo is the listing form of a batch. End is inclusive.
type BatchInfo struct {
	BatchID uint64 `json:"batchId"`
	Start   uint64 `json:"start"`
	End     uint64 `json:"end"`
	URI     string `json:"uri"`
}

// BatchIDResult is the result of the getBatchId operation.
type BatchIDResult struct {
	BatchID uint64 `json:"batchId"`
	Index   int    `json:"index"`
}

// BatchRangeResult is the result of the getBatchRange operation. End is
// inclusive.
type BatchRangeResult struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

func parseDID(field, s string) (did.DID, error) {
	d, err := did.Parse(s)
	if err != nil {
		return did.DID{}, fmt.Errorf("%w: parsing %s: %w", router.ErrInvalidArgs, field, err)
	}
	return d, nil
}

// parseOptionalDID parses s, treating the empty string as the empty DID.
func parseOptionalDID(field, s string) (did.DID, error) {
	if s == "" {
		return did.DID{}, nil
	}
	return parseDID(field, s)
}

func didOrEmpty(d did.DID) string {
	if d == (did.DID{}) {
		return ""
	}
	return d.String()
}

func route[T any](capability access.Capability, fn func(ctx context.Context, caller did.DID, args T) (any, error)) router.Route {
	return router.Route{
		Capability: capability,
		Handler: func(ctx context.Context, caller did.DID, raw json.RawMessage) (any, error) {
			args, err := router.DecodeArgs[T](raw)
			if err != nil {
				return nil, err
			}
			return fn(ctx, caller, args)
		},
	}
}

// Router builds the routing table of every operation the collection exposes.
func (c *Collection) Router() (*router.Router, error) {
	routes := map[string]router.Route{
		"resolveTokenUri": route(access.CapabilityNone, func(_ context.Context, _ did.DID, a tokenArgs) (any, error) {
			return c.ResolveTokenURI(a.TokenID)
		}),
		"tokenUri": route(access.CapabilityNone, func(ctx context.Context, _ did.DID, a tokenArgs) (any, error) {
			return c.TokenURI(ctx, a.TokenID)
		}),
		"uploadBatch": route(access.CapabilityMinter, func(ctx context.Context, caller did.DID, a uploadBatchArgs) (any, error) {
			b, err := c.UploadBatch(ctx, caller, a.Amount, a.BaseURI)
			if err != nil {
				return nil, err
			}
			return BatchInfo{BatchID: b.ID(), Start: b.Start(), End: b.Last(), URI: b.BaseURI()}, nil
		}),
		"setBaseUri": route(access.CapabilityManager, func(ctx context.Context, caller did.DID, a setBaseURIArgs) (any, error) {
			return nil, c.SetBaseURI(ctx, caller, a.BatchID, a.BaseURI)
		}),
		"listAllBatches": route(access.CapabilityNone, func(context.Context, did.DID, struct{}) (any, error) {
			batches := c.ListAllBatches()
			infos := make([]BatchInfo, 0, len(batches))
			for _, b := range batches {
				infos = append(infos, BatchInfo{BatchID: b.ID(), Start: b.Start(), End: b.Last(), URI: b.BaseURI()})
			}
			return infos, nil
		}),
		"nextTokenIdToMint": route(access.CapabilityNone, func(context.Context, did.DID, struct{}) (any, error) {
			return c.NextTokenIDToMint(), nil
		}),
		"getBatchId": route(access.CapabilityNone, func(_ context.Context, _ did.DID, a tokenArgs) (any, error) {
			batchID, index, err := c.GetBatchID(a.TokenID)
			if err != nil {
				return nil, err
			}
			return BatchIDResult{BatchID: batchID, Index: index}, nil
		}),
		"getBatchRange": route(access.CapabilityNone, func(_ context.Context, _ did.DID, a batchArgs) (any, error) {
			start, end, err := c.GetBatchRange(a.BatchID)
			if err != nil {
				return nil, err
			}
			return BatchRangeResult{Start: start, End: end}, nil
		}),
		"mint": route(access.CapabilityMinter, func(ctx context.Context, caller did.DID, a mintArgs) (any, error) {
			to, err := parseDID("to", a.To)
			if err != nil {
				return nil, err
			}
			return c.Mint(ctx, caller, to, a.Quantity)
		}),
		"mintWithUri": route(access.CapabilityMinter, func(ctx context.Context, caller did.DID, a mintArgs) (any, error) {
			to, err := parseDID("to", a.To)
			if err != nil {
				return nil, err
			}
			return c.MintWithURI(ctx, caller, to, a.Quantity, a.BaseURI)
		}),
		"burn": route(access.CapabilityNone, func(ctx context.Context, caller did.DID, a tokenArgs) (any, error) {
			return nil, c.Burn(ctx, caller, a.TokenID)
		}),
		"transferFrom": route(access.CapabilityNone, func(ctx context.Context, caller did.DID, a transferArgs) (any, error) {
			from, err := parseDID("from", a.From)
			if err != nil {
				return nil, err
			}
			to, err := parseDID("to", a.To)
			if err != nil {
				return nil, err
			}
			return nil, c.TransferFrom(ctx, caller, from, to, a.TokenID)
		}),
		"approve": route(access.CapabilityNone, func(ctx context.Context, caller did.DID, a approveArgs) (any, error) {
			to, err := parseOptionalDID("to", a.To)
			if err != nil {
				return nil, err
			}
			return nil, c.Approve(ctx, caller, to, a.TokenID)
		}),
		"setApprovalForAll": route(access.CapabilityNone, func(ctx context.Context, caller did.DID, a approvalForAllArgs) (any, error) {
			operator, err := parseDID("operator", a.Operator)
			if err != nil {
				return nil, err
			}
			return nil, c.SetApprovalForAll(ctx, caller, operator, a.Approved)
		}),
		"ownerOf": route(access.CapabilityNone, func(ctx context.Context, _ did.DID, a tokenArgs) (any, error) {
			owner, err := c.OwnerOf(ctx, a.TokenID)
			if err != nil {
				return nil, err
			}
			return owner.String(), nil
		}),
		"balanceOf": route(access.CapabilityNone, func(ctx context.Context, _ did.DID, a accountArgs) (any, error) {
			owner, err := parseDID("account", a.Account)
			if err != nil {
				return nil, err
			}
			return c.BalanceOf(ctx, owner)
		}),
		"getApproved": route(access.CapabilityNone, func(ctx context.Context, _ did.DID, a tokenArgs) (any, error) {
			approved, err := c.GetApproved(ctx, a.TokenID)
			if err != nil {
				return nil, err
			}
			return didOrEmpty(approved), nil
		}),
		"isApprovedForAll": route(access.CapabilityNone, func(ctx context.Context, _ did.DID, a approvalForAllArgs) (any, error) {
			owner, err := parseDID("owner", a.Owner)
			if err != nil {
				return nil, err
			}
			operator, err := parseDID("operator", a.Operator)
			if err != nil {
				return nil, err
			}
			return c.IsApprovedForAll(ctx, owner, operator)
		}),
		"exists": route(access.CapabilityNone, func(ctx context.Context, _ did.DID, a tokenArgs) (any, error) {
			return c.Exists(ctx, a.TokenID)
		}),
		"totalSupply": route(access.CapabilityNone, func(ctx context.Context, _ did.DID, _ struct{}) (any, error) {
			return c.TotalSupply(ctx)
		}),
		"grantRoles": route(access.CapabilityAdmin, func(ctx context.Context, caller did.DID, a accountArgs) (any, error) {
			account, roles, err := parseAccountRoles(a)
			if err != nil {
				return nil, err
			}
			return nil, c.GrantRoles(ctx, caller, account, roles)
		}),
		"revokeRoles": route(access.CapabilityAdmin, func(ctx context.Context, caller did.DID, a accountArgs) (any, error) {
			account, roles, err := parseAccountRoles(a)
			if err != nil {
				return nil, err
			}
			return nil, c.RevokeRoles(ctx, caller, account, roles)
		}),
		"rolesOf": route(access.CapabilityNone, func(ctx context.Context, _ did.DID, a accountArgs) (any, error) {
			account, err := parseDID("account", a.Account)
			if err != nil {
				return nil, err
			}
			return c.RolesOf(ctx, account)
		}),
		"hasAllRoles": route(access.CapabilityNone, func(ctx context.Context, _ did.DID, a accountArgs) (any, error) {
			account, roles, err := parseAccountRoles(a)
			if err != nil {
				return nil, err
			}
			return c.HasAllRoles(ctx, account, roles)
		}),
	}

	r := router.New(c)
	for name, rt := range routes {
		if err := r.Handle(name, rt); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func parseAccountRoles(a accountArgs) (did.DID, access.Role, error) {
	account, err := parseDID("account", a.Account)
	if err != nil {
		return did.DID{}, access.RoleNone, err
	}
	roles, err := access.ParseRoles(a.Roles...)
	if err != nil {
		return did.DID{}, access.RoleNone, fmt.Errorf("%w: %w", router.ErrInvalidArgs, err)
	}
	return account, roles, nil
}
