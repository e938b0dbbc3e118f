// Package registry stores block type definitions and the fields they expose.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-fieldblocks/pkg/model"
)

// ErrBlockTypeNotFound is returned (wrapped) for unknown block type names.
var ErrBlockTypeNotFound = errors.New("registry: block type not found")

// Registry resolves block types and their field definitions.
type Registry interface {
	BlockType(name string) (model.BlockType, error)
	Fields(name string) ([]model.FieldDefinition, error)
}

// Option configures a Memory registry.
type Option func(*Memory)

// WithDecorator appends a decorator applied to every registered block type.
func WithDecorator(decorator model.Decorator) Option {
	return func(m *Memory) {
		if decorator != nil {
			m.decorators = append(m.decorators, decorator)
		}
	}
}

// Memory is an in-process Registry guarded by a RWMutex. Block types are
// decorated with DeriveKeys before any configured decorators run.
type Memory struct {
	mu         sync.RWMutex
	types      map[string]model.BlockType
	decorators []model.Decorator
}

var _ Registry = (*Memory)(nil)

// New creates an empty registry.
func New(options ...Option) *Memory {
	m := &Memory{
		types:      make(map[string]model.BlockType),
		decorators: []model.Decorator{DeriveKeys},
	}
	for _, opt := range options {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Register adds a block type. Duplicate names return an error.
func (m *Memory) Register(block model.BlockType) error {
	block.Name = strings.TrimSpace(block.Name)
	if block.Name == "" {
		return fmt.Errorf("registry: block type name is required")
	}
	block.Fields = cloneFields(block.Fields)
	for _, decorator := range m.decorators {
		if err := decorator.Decorate(&block); err != nil {
			return fmt.Errorf("registry: decorate %q: %w", block.Name, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.types[block.Name]; exists {
		return fmt.Errorf("registry: block type %q already registered", block.Name)
	}
	m.types[block.Name] = block
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (m *Memory) MustRegister(block model.BlockType) {
	if err := m.Register(block); err != nil {
		panic(err)
	}
}

// BlockType implements Registry.
func (m *Memory) BlockType(name string) (model.BlockType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	block, ok := m.types[strings.TrimSpace(name)]
	if !ok {
		return model.BlockType{}, fmt.Errorf("%w: %q", ErrBlockTypeNotFound, name)
	}
	return block, nil
}

// Fields implements Registry. Nested sub fields follow their container in
// declaration order and carry its key as their Parent marker.
func (m *Memory) Fields(name string) ([]model.FieldDefinition, error) {
	block, err := m.BlockType(name)
	if err != nil {
		return nil, err
	}
	return Flatten(block.Fields), nil
}

// List returns the sorted registered names.
func (m *Memory) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.types))
	for name := range m.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is registered.
func (m *Memory) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.types[strings.TrimSpace(name)]
	return ok
}

// Flatten lists fields depth first.
func Flatten(fields []model.FieldDefinition) []model.FieldDefinition {
	out := make([]model.FieldDefinition, 0, len(fields))
	for _, field := range fields {
		out = append(out, field)
		if len(field.SubFields) > 0 {
			out = append(out, Flatten(field.SubFields)...)
		}
	}
	return out
}

// DeriveKeys fills missing field keys from names ("field_<name>"), defaults
// names from keys, and marks sub fields with their container's key.
var DeriveKeys = model.DecoratorFunc(func(block *model.BlockType) error {
	return deriveKeys(block.Fields, "", map[string]struct{}{})
})

func deriveKeys(fields []model.FieldDefinition, parent string, seen map[string]struct{}) error {
	for i := range fields {
		field := &fields[i]
		field.Name = strings.TrimSpace(field.Name)
		field.Key = strings.TrimSpace(field.Key)
		switch {
		case field.Key == "" && field.Name == "":
			return fmt.Errorf("field at index %d has neither key nor name", i)
		case field.Key == "":
			field.Key = "field_" + field.Name
		case field.Name == "":
			field.Name = strings.TrimPrefix(field.Key, "field_")
		}
		if _, dup := seen[field.Key]; dup {
			return fmt.Errorf("duplicate field key %q", field.Key)
		}
		seen[field.Key] = struct{}{}
		if parent != "" {
			field.Parent = parent
		}
		if len(field.SubFields) > 0 {
			if err := deriveKeys(field.SubFields, field.Key, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

func cloneFields(fields []model.FieldDefinition) []model.FieldDefinition {
	if fields == nil {
		return nil
	}
	out := make([]model.FieldDefinition, len(fields))
	copy(out, fields)
	for i := range out {
		out[i].SubFields = cloneFields(out[i].SubFields)
	}
	return out
}
