// Package store defines the durable per-owner field value store the engine
// reads block values from and flushes staged values into.
package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Store persists field values keyed by owner id and field name.
type Store interface {
	// Get returns the stored value for key. The boolean is false when no
	// value exists.
	Get(ctx context.Context, ownerID, key string) (any, bool, error)
	// Save writes all values for ownerID as a single write.
	Save(ctx context.Context, ownerID string, values map[string]any) error
}

// BulkGetter is implemented by stores that can load several keys at once.
type BulkGetter interface {
	GetMany(ctx context.Context, ownerID string, keys []string) (map[string]any, error)
}

// Load reads keys for ownerID, preferring a bulk read when the store supports
// it. Missing keys are absent from the result.
func Load(ctx context.Context, s Store, ownerID string, keys []string) (map[string]any, error) {
	if s == nil || len(keys) == 0 {
		return map[string]any{}, nil
	}
	if bulk, ok := s.(BulkGetter); ok {
		return bulk.GetMany(ctx, ownerID, keys)
	}
	out := make(map[string]any, len(keys))
	for _, key := range keys {
		value, ok, err := s.Get(ctx, ownerID, key)
		if err != nil {
			return nil, fmt.Errorf("store: get %q for owner %q: %w", key, ownerID, err)
		}
		if ok {
			out[key] = value
		}
	}
	return out, nil
}

// EncodeValue serialises a value for stores that keep bytes.
func EncodeValue(value any) ([]byte, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("store: encode value: %w", err)
	}
	return payload, nil
}

// DecodeValue reverses EncodeValue.
func DecodeValue(raw []byte) (any, error) {
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("store: decode value: %w", err)
	}
	return out, nil
}
