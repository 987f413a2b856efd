// Package metadata assigns metadata base URIs to contiguous ranges of token
// IDs, one batch at a time, and resolves a token ID to its batch and URI.
package metadata

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	logging "github.com/ipfs/go-log/v2"
	"github.com/storacha/batchmint/pkg/collection/access"
	"github.com/storacha/batchmint/pkg/collection/events"
	"github.com/storacha/batchmint/pkg/collection/metadata/model"
	"github.com/storacha/go-ucanto/did"
)

var log = logging.Logger("collection/metadata")

// URICache caches resolved token URIs by token ID.
type URICache = lru.Cache[uint64, string]

// NewURICache creates a token URI cache holding up to size entries.
func NewURICache(size int) (*URICache, error) {
	return lru.New[uint64, string](size)
}

// API provides the batch metadata operations over an Index. Mutations are
// written to Repo, then notified to Events, and only then applied to Index,
// so a failed call leaves the index untouched.
type API struct {
	Index  *Index
	Repo   Repo
	Gate   access.Gate
	Events events.Sink
	// Cache is optional.
	Cache *URICache
}

// UploadBatch appends a batch of amount tokens sharing baseURI. The caller
// must hold the minter capability.
func (a API) UploadBatch(ctx context.Context, caller did.DID, amount uint64, baseURI string) (*model.Batch, error) {
	if err := access.Check(ctx, a.Gate, caller, access.CapabilityMinter); err != nil {
		return nil, err
	}
	return a.appendBatch(ctx, amount, baseURI)
}

// OnBatchMinted assigns baseURI to quantity tokens just minted to recipient,
// starting at startID. It fails with [ErrMetadataAlreadySet] if startID falls
// inside an existing batch. Authorisation is the minting caller's concern.
func (a API) OnBatchMinted(ctx context.Context, recipient did.DID, startID, quantity uint64, baseURI string) (*model.Batch, error) {
	if startID < a.Index.NextRangeStart() {
		return nil, fmt.Errorf("token %d: %w", startID, ErrMetadataAlreadySet)
	}
	batch, err := a.appendBatch(ctx, quantity, baseURI)
	if err != nil {
		return nil, err
	}
	log.Debugw("batch minted", "recipient", recipient, "start", startID, "quantity", quantity)
	return batch, nil
}

func (a API) appendBatch(ctx context.Context, amount uint64, baseURI string) (*model.Batch, error) {
	batch, err := a.Index.PrepareAppend(amount, baseURI)
	if err != nil {
		return nil, err
	}
	if err := a.Repo.CreateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("persisting batch %d: %w", batch.ID(), err)
	}
	if err := a.emitRangeUpdated(ctx, batch.Start(), batch.Last()); err != nil {
		return nil, err
	}
	if err := a.Index.Push(batch); err != nil {
		return nil, err
	}
	log.Infow("batch uploaded", "batch", batch.ID(), "start", batch.Start(), "last", batch.Last(), "uri", baseURI)
	return batch, nil
}

// SetBaseURI overwrites the base URI of the batch ending at batchID. The
// caller must hold the manager capability. An unknown batchID fails with
// [ErrNoMetadataForTokenID] before anything is written.
func (a API) SetBaseURI(ctx context.Context, caller did.DID, batchID uint64, baseURI string) error {
	if err := access.Check(ctx, a.Gate, caller, access.CapabilityManager); err != nil {
		return err
	}
	batch, ok := a.Index.Batch(batchID)
	if !ok {
		return fmt.Errorf("batch %d: %w", batchID, ErrNoMetadataForTokenID)
	}
	batch.SetBaseURI(baseURI)
	if err := a.Repo.UpdateBatch(ctx, batch); err != nil {
		return fmt.Errorf("persisting batch %d: %w", batchID, err)
	}
	// Closes on the batch ID, one past the batch's last token.
	if err := a.emitRangeUpdated(ctx, batch.Start(), batchID); err != nil {
		return err
	}
	if err := a.Index.SetURI(batchID, baseURI); err != nil {
		return err
	}
	if a.Cache != nil {
		a.Cache.Purge()
	}
	log.Infow("base URI updated", "batch", batchID, "uri", baseURI)
	return nil
}

func (a API) emitRangeUpdated(ctx context.Context, from, to uint64) error {
	if a.Events == nil {
		return nil
	}
	if err := a.Events.Emit(ctx, events.RangeUpdated{FromTokenID: from, ToTokenID: to}); err != nil {
		return fmt.Errorf("emitting range update [%d, %d]: %w", from, to, err)
	}
	return nil
}

// ResolveTokenURI returns the metadata locator of tokenID.
func (a API) ResolveTokenURI(tokenID uint64) (string, error) {
	if a.Cache != nil {
		if uri, ok := a.Cache.Get(tokenID); ok {
			return uri, nil
		}
	}
	uri, err := a.Index.TokenURI(tokenID)
	if err != nil {
		return "", err
	}
	if a.Cache != nil {
		a.Cache.Add(tokenID, uri)
	}
	return uri, nil
}

// NextTokenIDToMint returns the first token ID not yet covered by a batch.
func (a API) NextTokenIDToMint() uint64 {
	return a.Index.NextRangeStart()
}

// GetBatchID returns the ID of the batch containing tokenID and its position.
func (a API) GetBatchID(tokenID uint64) (uint64, int, error) {
	return a.Index.BatchID(tokenID)
}

// GetBatchRange returns the first and last token IDs of the batch ending at
// batchID.
func (a API) GetBatchRange(batchID uint64) (uint64, uint64, error) {
	return a.Index.BatchRange(batchID)
}

// ListAllBatches returns every batch in token ID order.
func (a API) ListAllBatches() []*model.Batch {
	return a.Index.Batches()
}
