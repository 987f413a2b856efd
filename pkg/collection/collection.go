// Package collection composes the batch metadata index, the token ledger and
// the role gate into a single NFT collection backed by a SQLite repository.
//
// A Collection serialises mutations: each one runs in its own transaction and
// is applied to the in-memory index only once it has been written. Read-only
// calls run concurrently with each other.
package collection

import (
	"context"
	"errors"
	"fmt"
	"sync"

	logging "github.com/ipfs/go-log/v2"
	"github.com/storacha/batchmint/pkg/collection/access"
	"github.com/storacha/batchmint/pkg/collection/events"
	"github.com/storacha/batchmint/pkg/collection/ledger"
	"github.com/storacha/batchmint/pkg/collection/metadata"
	"github.com/storacha/batchmint/pkg/collection/metadata/model"
	"github.com/storacha/batchmint/pkg/collection/sqlrepo"
	"github.com/storacha/go-ucanto/did"
	"golang.org/x/sync/errgroup"
)

var log = logging.Logger("collection")

// resolveConcurrency bounds the goroutines ResolveTokenURIs starts.
const resolveConcurrency = 8

type Collection struct {
	mu        sync.RWMutex
	repo      sqlrepo.Repo
	index     *metadata.Index
	cache     *metadata.URICache
	cacheSize int
	sink      events.Sink
}

var _ access.Gate = (*Collection)(nil)

// Load creates a Collection over repo, rebuilding the metadata index from the
// persisted batches.
func Load(ctx context.Context, repo sqlrepo.Repo, options ...Option) (*Collection, error) {
	c := &Collection{
		repo:      repo,
		cacheSize: DefaultResolverCacheSize,
	}
	for _, opt := range options {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.cacheSize > 0 {
		cache, err := metadata.NewURICache(c.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating resolver cache: %w", err)
		}
		c.cache = cache
	}
	if err := c.reload(ctx); err != nil {
		return nil, err
	}
	log.Infow("collection loaded", "batches", c.index.Len(), "nextTokenIdToMint", c.index.NextRangeStart())
	return c, nil
}

func (c *Collection) reload(ctx context.Context) error {
	batches, err := c.repo.ListBatches(ctx)
	if err != nil {
		return fmt.Errorf("listing batches: %w", err)
	}
	index, err := metadata.LoadIndex(batches, metadata.WithLimit(sqlrepo.MaxTokenID))
	if err != nil {
		return fmt.Errorf("loading index: %w", err)
	}
	c.index = index
	if c.cache != nil {
		c.cache.Purge()
	}
	return nil
}

// update runs fn in a transaction while holding the write lock. If the call
// fails, the in-memory index is rebuilt from the repository so that nothing
// fn applied to it outlives the rolled back transaction.
func (c *Collection) update(ctx context.Context, fn func(tx sqlrepo.Repo, sink events.Sink) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending := &events.Recorder{}
	err := c.repo.WithTx(ctx, func(tx sqlrepo.Repo) error {
		return fn(tx, events.Multi{events.Log{Repo: tx}, pending})
	})
	if err != nil {
		if rerr := c.reload(context.WithoutCancel(ctx)); rerr != nil {
			log.Errorw("reloading index after failed call", "err", rerr)
			return errors.Join(err, rerr)
		}
		return err
	}

	if c.sink != nil {
		for _, p := range pending.Events {
			if err := c.sink.Emit(ctx, p); err != nil {
				log.Warnw("forwarding event", "kind", p.Kind(), "err", err)
			}
		}
	}
	return nil
}

func (c *Collection) metadataAPI(tx sqlrepo.Repo, sink events.Sink) metadata.API {
	return metadata.API{
		Index:  c.index,
		Repo:   tx,
		Gate:   access.API{Repo: tx},
		Events: sink,
		Cache:  c.cache,
	}
}

func (c *Collection) readMetadata() metadata.API {
	return metadata.API{Index: c.index, Repo: c.repo, Gate: c.accessAPI(), Cache: c.cache}
}

func (c *Collection) ledgerAPI() ledger.API {
	return ledger.API{Repo: c.repo, Limit: sqlrepo.MaxTokenID}
}

func (c *Collection) txLedgerAPI(tx sqlrepo.Repo, sink events.Sink) ledger.API {
	return ledger.API{Repo: tx, Events: sink, Limit: sqlrepo.MaxTokenID}
}

func (c *Collection) accessAPI() access.API {
	return access.API{Repo: c.repo}
}

// Bootstrap grants every role to admin. It fails with
// [access.ErrAlreadyBootstrapped] once any account holds a role.
func (c *Collection) Bootstrap(ctx context.Context, admin did.DID) error {
	return c.update(ctx, func(tx sqlrepo.Repo, sink events.Sink) error {
		return access.API{Repo: tx, Events: sink}.Bootstrap(ctx, admin)
	})
}

// UploadBatch appends a batch of amount tokens sharing baseURI. The caller
// must hold the minter capability.
func (c *Collection) UploadBatch(ctx context.Context, caller did.DID, amount uint64, baseURI string) (*model.Batch, error) {
	var batch *model.Batch
	err := c.update(ctx, func(tx sqlrepo.Repo, sink events.Sink) error {
		var err error
		batch, err = c.metadataAPI(tx, sink).UploadBatch(ctx, caller, amount, baseURI)
		return err
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// SetBaseURI overwrites the base URI of the batch ending at batchID. The
// caller must hold the manager capability.
func (c *Collection) SetBaseURI(ctx context.Context, caller did.DID, batchID uint64, baseURI string) error {
	return c.update(ctx, func(tx sqlrepo.Repo, sink events.Sink) error {
		return c.metadataAPI(tx, sink).SetBaseURI(ctx, caller, batchID, baseURI)
	})
}

// Mint mints quantity tokens to to and returns the first token ID. The caller
// must hold the minter capability, and every minted token must already be
// covered by an uploaded batch.
func (c *Collection) Mint(ctx context.Context, caller, to did.DID, quantity uint64) (uint64, error) {
	var start uint64
	err := c.update(ctx, func(tx sqlrepo.Repo, sink events.Sink) error {
		if err := access.Check(ctx, access.API{Repo: tx}, caller, access.CapabilityMinter); err != nil {
			return err
		}
		l := c.txLedgerAPI(tx, sink)
		next, err := l.NextTokenID(ctx)
		if err != nil {
			return err
		}
		covered := c.index.NextRangeStart()
		if quantity > 0 && (next >= covered || quantity > covered-next) {
			return fmt.Errorf("minting %d tokens from %d: %w", quantity, next, metadata.ErrNoMetadataForTokenID)
		}
		start, err = l.Mint(ctx, to, quantity)
		return err
	})
	if err != nil {
		return 0, err
	}
	return start, nil
}

// MintWithURI mints quantity tokens to to and assigns them a new batch with
// baseURI. The caller must hold the minter capability. It fails with
// [metadata.ErrMetadataAlreadySet] if the tokens would start inside an
// existing batch.
func (c *Collection) MintWithURI(ctx context.Context, caller, to did.DID, quantity uint64, baseURI string) (uint64, error) {
	var start uint64
	err := c.update(ctx, func(tx sqlrepo.Repo, sink events.Sink) error {
		if err := access.Check(ctx, access.API{Repo: tx}, caller, access.CapabilityMinter); err != nil {
			return err
		}
		var err error
		start, err = c.txLedgerAPI(tx, sink).Mint(ctx, to, quantity)
		if err != nil {
			return err
		}
		_, err = c.metadataAPI(tx, sink).OnBatchMinted(ctx, to, start, quantity, baseURI)
		return err
	})
	if err != nil {
		return 0, err
	}
	return start, nil
}

// Burn destroys tokenID on behalf of caller.
func (c *Collection) Burn(ctx context.Context, caller did.DID, tokenID uint64) error {
	return c.update(ctx, func(tx sqlrepo.Repo, sink events.Sink) error {
		return c.txLedgerAPI(tx, sink).Burn(ctx, caller, tokenID)
	})
}

// TransferFrom moves tokenID from from to to on behalf of caller.
func (c *Collection) TransferFrom(ctx context.Context, caller, from, to did.DID, tokenID uint64) error {
	return c.update(ctx, func(tx sqlrepo.Repo, sink events.Sink) error {
		return c.txLedgerAPI(tx, sink).TransferFrom(ctx, caller, from, to, tokenID)
	})
}

// Approve lets to transfer tokenID on behalf of caller.
func (c *Collection) Approve(ctx context.Context, caller, to did.DID, tokenID uint64) error {
	return c.update(ctx, func(tx sqlrepo.Repo, sink events.Sink) error {
		return c.txLedgerAPI(tx, sink).Approve(ctx, caller, to, tokenID)
	})
}

// SetApprovalForAll enables or disables operator for every token of caller.
func (c *Collection) SetApprovalForAll(ctx context.Context, caller, operator did.DID, approved bool) error {
	return c.update(ctx, func(tx sqlrepo.Repo, sink events.Sink) error {
		return c.txLedgerAPI(tx, sink).SetApprovalForAll(ctx, caller, operator, approved)
	})
}

// GrantRoles adds roles to account. The caller must hold the admin capability.
func (c *Collection) GrantRoles(ctx context.Context, caller, account did.DID, roles access.Role) error {
	return c.update(ctx, func(tx sqlrepo.Repo, sink events.Sink) error {
		return access.API{Repo: tx, Events: sink}.GrantRoles(ctx, caller, account, roles)
	})
}

// RevokeRoles removes roles from account. The caller must hold the admin
// capability.
func (c *Collection) RevokeRoles(ctx context.Context, caller, account did.DID, roles access.Role) error {
	return c.update(ctx, func(tx sqlrepo.Repo, sink events.Sink) error {
		return access.API{Repo: tx, Events: sink}.RevokeRoles(ctx, caller, account, roles)
	})
}

// ResolveTokenURI returns the metadata locator of tokenID, whether or not the
// token has been minted.
func (c *Collection) ResolveTokenURI(tokenID uint64) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.readMetadata().ResolveTokenURI(tokenID)
}

// ResolveTokenURIs resolves several token IDs at once. The result holds the
// URI of tokenIDs[i] at position i.
func (c *Collection) ResolveTokenURIs(ctx context.Context, tokenIDs []uint64) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	api := c.readMetadata()
	uris := make([]string, len(tokenIDs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i, tokenID := range tokenIDs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			uri, err := api.ResolveTokenURI(tokenID)
			if err != nil {
				return err
			}
			uris[i] = uri
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return uris, nil
}

// TokenURI returns the metadata locator of a minted token. It fails with
// [ledger.ErrNonexistentToken] if tokenID has not been minted or was burned.
func (c *Collection) TokenURI(ctx context.Context, tokenID uint64) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ok, err := c.ledgerAPI().Exists(ctx, tokenID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("token %d: %w", tokenID, ledger.ErrNonexistentToken)
	}
	return c.readMetadata().ResolveTokenURI(tokenID)
}

// NextTokenIDToMint returns the first token ID not covered by any batch.
func (c *Collection) NextTokenIDToMint() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.readMetadata().NextTokenIDToMint()
}

// GetBatchID returns the ID of the batch containing tokenID and its position.
func (c *Collection) GetBatchID(tokenID uint64) (uint64, int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.readMetadata().GetBatchID(tokenID)
}

// GetBatchRange returns the first and last token IDs of the batch ending at
// batchID.
func (c *Collection) GetBatchRange(batchID uint64) (uint64, uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.readMetadata().GetBatchRange(batchID)
}

// ListAllBatches returns every batch in token ID order.
func (c *Collection) ListAllBatches() []*model.Batch {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.readMetadata().ListAllBatches()
}

func (c *Collection) Exists(ctx context.Context, tokenID uint64) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ledgerAPI().Exists(ctx, tokenID)
}

func (c *Collection) OwnerOf(ctx context.Context, tokenID uint64) (did.DID, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ledgerAPI().OwnerOf(ctx, tokenID)
}

func (c *Collection) BalanceOf(ctx context.Context, owner did.DID) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ledgerAPI().BalanceOf(ctx, owner)
}

func (c *Collection) GetApproved(ctx context.Context, tokenID uint64) (did.DID, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ledgerAPI().GetApproved(ctx, tokenID)
}

func (c *Collection) IsApprovedForAll(ctx context.Context, owner, operator did.DID) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ledgerAPI().IsApprovedForAll(ctx, owner, operator)
}

func (c *Collection) TotalSupply(ctx context.Context) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ledgerAPI().TotalSupply(ctx)
}

func (c *Collection) RolesOf(ctx context.Context, account did.DID) (access.Role, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessAPI().RolesOf(ctx, account)
}

func (c *Collection) HasAllRoles(ctx context.Context, account did.DID, roles access.Role) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessAPI().HasAllRoles(ctx, account, roles)
}

// HasCapability implements [access.Gate].
func (c *Collection) HasCapability(ctx context.Context, caller did.DID, capability access.Capability) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessAPI().HasCapability(ctx, caller, capability)
}

// Events lists persisted events in emission order, optionally of one kind.
func (c *Collection) Events(ctx context.Context, kind *events.Kind) ([]*events.Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.repo.ListEvents(ctx, kind)
}
