// Package identity derives stable, content-addressed ids for blocks.
//
// The hash must agree with the one the editing client computes for the same
// block so that both sides address the same render cache and staged values.
// Keys that only carry identity (the stored id itself), empty string
// attributes and an empty data map are therefore dropped before hashing,
// exactly as the client does.
package identity

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

const (
	// Prefix is prepended to every computed id.
	Prefix = "block_"

	// ContextKey is the reserved attribute key the block context is merged
	// under before hashing.
	ContextKey = "_context"

	dataKey = "data"
)

// volatileKeys never contribute to a computed id.
var volatileKeys = []string{"id"}

// Resolve returns the id for a block. A non-empty "id" attribute is reused
// unless force is set, in which case (as when no stored snapshot exists yet)
// the id is recomputed from content.
func Resolve(attributes map[string]any, context map[string]any, force bool) string {
	if !force {
		if existing, ok := attributes["id"].(string); ok && strings.TrimSpace(existing) != "" {
			return existing
		}
	}
	return Prefix + Hash(attributes, context)
}

// Hash computes the content hash without the id prefix or reuse logic.
func Hash(attributes map[string]any, context map[string]any) string {
	payload := Normalize(attributes, context)
	sum := md5.Sum(Canonical(payload))
	return hex.EncodeToString(sum[:])
}

// Normalize builds the hashed payload: attributes minus volatile keys and
// empty strings, with the sorted context merged under ContextKey.
func Normalize(attributes map[string]any, context map[string]any) map[string]any {
	out := make(map[string]any, len(attributes)+1)
	for key, value := range attributes {
		if s, ok := value.(string); ok && s == "" {
			continue
		}
		out[key] = value
	}
	for _, key := range volatileKeys {
		delete(out, key)
	}
	if isEmptyValue(out[dataKey]) {
		delete(out, dataKey)
	}

	ctx := make(map[string]any, len(context))
	for key, value := range context {
		ctx[key] = value
	}
	out[ContextKey] = ctx
	return out
}

// Canonical serialises value with recursively sorted object keys and without
// HTML escaping, so that equal logical content always yields equal bytes.
func Canonical(value any) []byte {
	var buf bytes.Buffer
	writeCanonical(&buf, value)
	return buf.Bytes()
}

func writeCanonical(buf *bytes.Buffer, value any) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, key := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeScalar(buf, key)
			buf.WriteByte(':')
			writeCanonical(buf, v[key])
		}
		buf.WriteByte('}')
	case map[string]string:
		converted := make(map[string]any, len(v))
		for key, item := range v {
			converted[key] = item
		}
		writeCanonical(buf, converted)
	case []any:
		buf.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonical(buf, item)
		}
		buf.WriteByte(']')
	case []string:
		buf.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeScalar(buf, item)
		}
		buf.WriteByte(']')
	default:
		writeScalar(buf, v)
	}
}

func writeScalar(buf *bytes.Buffer, value any) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		buf.WriteString("null")
		return
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
}

func isEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case string:
		return v == ""
	default:
		return false
	}
}
