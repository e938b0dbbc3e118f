// Package metabridge stages block values destined for the owner's durable
// field store until the owning record is saved.
//
// Blocks configured for durable storage keep their values out of the
// serialized content. When content is parsed the owner's final id may not be
// settled yet, so values are staged under the block id and flushed on save.
// Entries of records that are never saved are never flushed; there is no
// eviction.
package metabridge

import (
	"context"
	"fmt"

	"github.com/goliatone/go-fieldblocks/pkg/model"
	"github.com/goliatone/go-fieldblocks/pkg/store"
)

// Bridge is a request-scoped staging area keyed by block id.
type Bridge struct {
	staged map[string]map[string]any
}

// New creates an empty bridge.
func New() *Bridge {
	return &Bridge{staged: make(map[string]map[string]any)}
}

// Stage overwrites the staged values for blockID.
func (b *Bridge) Stage(blockID string, values map[string]any) {
	copied := make(map[string]any, len(values))
	for key, value := range values {
		copied[key] = value
	}
	b.staged[blockID] = copied
}

// Has reports whether values are staged for blockID.
func (b *Bridge) Has(blockID string) bool {
	_, ok := b.staged[blockID]
	return ok
}

// Peek returns the staged values without removing them.
func (b *Bridge) Peek(blockID string) (map[string]any, bool) {
	values, ok := b.staged[blockID]
	return values, ok
}

// Take returns and removes the staged values for blockID.
func (b *Bridge) Take(blockID string) (map[string]any, bool) {
	values, ok := b.staged[blockID]
	if ok {
		delete(b.staged, blockID)
	}
	return values, ok
}

// Len reports how many blocks have staged values.
func (b *Bridge) Len() int {
	return len(b.staged)
}

// StorageError wraps a store failure raised while flushing.
type StorageError struct {
	OwnerID string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("metabridge: flush owner %q: %v", e.OwnerID, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IDFunc resolves the id a descriptor was staged under.
type IDFunc func(model.Descriptor) string

// FlushResult reports what a flush wrote.
type FlushResult struct {
	BlockIDs []string
	Values   map[string]any
}

// Flush collects the staged values of every durable block in blocks
// (including nested inner blocks), writes them to s in a single Save and
// clears the flushed entries. When nothing is staged no write is made. On a
// store failure the staged entries are kept and a *StorageError is returned.
func (b *Bridge) Flush(ctx context.Context, ownerID string, blocks []model.Descriptor, resolveID IDFunc, s store.Store) (FlushResult, error) {
	result := FlushResult{}
	merged := make(map[string]any)

	var collect func([]model.Descriptor)
	collect = func(list []model.Descriptor) {
		for _, block := range list {
			if block.UseDurableStorage {
				id := resolveID(block)
				if values, ok := b.staged[id]; ok {
					for key, value := range values {
						merged[key] = value
					}
					result.BlockIDs = append(result.BlockIDs, id)
				}
			}
			collect(block.InnerBlocks)
		}
	}
	collect(blocks)

	if len(result.BlockIDs) == 0 {
		return result, nil
	}
	if s == nil {
		return result, &StorageError{OwnerID: ownerID, Err: fmt.Errorf("no field value store configured")}
	}
	if err := s.Save(ctx, ownerID, merged); err != nil {
		return result, &StorageError{OwnerID: ownerID, Err: err}
	}
	for _, id := range result.BlockIDs {
		b.Take(id)
	}
	result.Values = merged
	return result, nil
}
