// Package rendercache memoises rendered block markup for the lifetime of a
// single request.
//
// Entries are keyed by (block id, mode); a lookup in one mode never sees an
// entry written in another. The cache is never invalidated: it is created
// with the request and dropped with it.
package rendercache

import (
	"github.com/goliatone/go-fieldblocks/pkg/metrics"
	"github.com/goliatone/go-fieldblocks/pkg/model"
)

// Mode separates cache entries rendered for different audiences.
type Mode string

const (
	// ModeEdit holds markup rendered for the editor preview.
	ModeEdit Mode = "edit"
	// ModeDisplay holds markup rendered for end users.
	ModeDisplay Mode = "display"
	// ModeForm holds the editing-form markup returned by fetch.
	ModeForm Mode = "form"
)

// ModeFor maps the editing flag of a render call onto a cache mode.
func ModeFor(isEditing bool) Mode {
	if isEditing {
		return ModeEdit
	}
	return ModeDisplay
}

// Entry is a memoised render.
type Entry struct {
	ID         string
	Mode       Mode
	HTML       string
	Validation *model.ValidationResult
}

type key struct {
	id   string
	mode Mode
}

// Cache is a request-scoped memo store. It is not safe for concurrent use;
// a request is a single execution.
type Cache struct {
	entries map[key]Entry
	metrics *metrics.Collector
}

// Option configures a Cache.
type Option func(*Cache)

// WithMetrics records lookups on the provided collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(c *Cache) {
		c.metrics = collector
	}
}

// New creates an empty cache.
func New(options ...Option) *Cache {
	c := &Cache{entries: make(map[key]Entry)}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Get returns the entry stored for id in mode.
func (c *Cache) Get(id string, mode Mode) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	entry, ok := c.entries[key{id: id, mode: mode}]
	c.metrics.CacheLookup(string(mode), ok)
	return entry, ok
}

// Set stores html (and an optional validation result) for id in mode,
// replacing any previous entry for that key.
func (c *Cache) Set(id string, mode Mode, html string, validation *model.ValidationResult) {
	if c == nil {
		return
	}
	var stored *model.ValidationResult
	if validation != nil {
		copied := *validation
		copied.Errors = append([]model.FieldError{}, validation.Errors...)
		stored = &copied
	}
	c.entries[key{id: id, mode: mode}] = Entry{
		ID:         id,
		Mode:       mode,
		HTML:       html,
		Validation: stored,
	}
}

// Len reports how many entries are held.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}
