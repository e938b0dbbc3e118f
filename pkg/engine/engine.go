// Package engine renders field-driven blocks.
//
// An Engine holds the collaborators shared by every request: the block type
// registry, the template executor, the durable value store and the
// validation, formatting and annotation passes. Request state lives in a
// Scope created per request with NewScope; it owns the render cache and the
// meta bridge, so nothing rendered or staged leaks between requests.
//
//	eng, err := engine.New(
//		engine.WithRegistry(reg),
//		engine.WithExecutor(executor),
//		engine.WithStore(values),
//	)
//	scope := eng.NewScope()
//	html, err := scope.Render(ctx, desc, inner, false, ownerID, nil)
package engine

import (
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-fieldblocks/pkg/annotate"
	"github.com/goliatone/go-fieldblocks/pkg/format"
	"github.com/goliatone/go-fieldblocks/pkg/identity"
	"github.com/goliatone/go-fieldblocks/pkg/logging"
	"github.com/goliatone/go-fieldblocks/pkg/metabridge"
	"github.com/goliatone/go-fieldblocks/pkg/metrics"
	"github.com/goliatone/go-fieldblocks/pkg/model"
	"github.com/goliatone/go-fieldblocks/pkg/registry"
	"github.com/goliatone/go-fieldblocks/pkg/render"
	"github.com/goliatone/go-fieldblocks/pkg/rendercache"
	"github.com/goliatone/go-fieldblocks/pkg/renderers/vanilla"
	"github.com/goliatone/go-fieldblocks/pkg/store"
	"github.com/goliatone/go-fieldblocks/pkg/validation"
	"github.com/goliatone/go-fieldblocks/pkg/visibility"
	"github.com/goliatone/go-fieldblocks/pkg/visibility/expr"
	"github.com/goliatone/go-fieldblocks/pkg/visibility/rules"
)

const tracerName = "github.com/goliatone/go-fieldblocks/pkg/engine"

var (
	// ErrTypeRequired is returned for descriptors without a type name.
	ErrTypeRequired = errors.New("engine: block type name is required")
	// ErrRegistryRequired is returned by New when no registry is configured.
	ErrRegistryRequired = errors.New("engine: registry is required")
	// ErrExecutorRequired is returned by New when no executor is configured.
	ErrExecutorRequired = errors.New("engine: template executor is required")
)

// Engine wires the block rendering pipeline. It is safe to share across
// requests; all mutable state lives in Scope.
type Engine struct {
	registry      registry.Registry
	store         store.Store
	executor      render.Executor
	forms         *render.Registry
	formOptions   []render.FormRenderer
	validation    *validation.Engine
	formatter     format.Formatter
	annotator     *annotate.Annotator
	annotatorSet  bool
	inlineEditing bool
	logger        logging.Logger
	metrics       *metrics.Collector
	tracer        trace.Tracer
}

// New constructs an Engine. Missing optional collaborators fall back to the
// built-in implementations: the default formatter and validator, rule-group
// and expression visibility, the vanilla form renderer and the DOM annotator.
func New(options ...Option) (*Engine, error) {
	e := &Engine{inlineEditing: true}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if err := e.applyDefaults(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) applyDefaults() error {
	if e.registry == nil {
		return ErrRegistryRequired
	}
	if e.executor == nil {
		return ErrExecutorRequired
	}
	if e.logger == nil {
		e.logger = logging.NewNoOpLogger()
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer(tracerName)
	}
	if e.formatter == nil {
		e.formatter = format.New()
	}
	if e.validation == nil {
		e.validation = validation.NewEngine(
			validation.WithVisibility(visibility.All(rules.New(), expr.New())),
		)
	}
	if !e.annotatorSet {
		e.annotator = annotate.New()
	}
	if len(e.formOptions) == 0 {
		forms, err := vanilla.New()
		if err != nil {
			return fmt.Errorf("engine: configure form renderer: %w", err)
		}
		e.formOptions = append(e.formOptions, forms)
	}
	e.forms = render.NewRegistry()
	for _, renderer := range e.formOptions {
		if err := e.forms.Register(renderer); err != nil {
			return fmt.Errorf("engine: %w", err)
		}
	}
	return nil
}

// FormRenderers lists the registered form renderer names.
func (e *Engine) FormRenderers() []string {
	return e.forms.List()
}

// NewScope starts a request. The returned scope must not be shared between
// requests.
func (e *Engine) NewScope(options ...ScopeOption) *Scope {
	s := &Scope{
		engine: e,
		cache:  rendercache.New(rendercache.WithMetrics(e.metrics)),
		bridge: metabridge.New(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// blockType resolves the registered type and normalises desc against it:
// the type name is trimmed and the durable storage flag honours the type.
func (e *Engine) blockType(desc *model.Descriptor) (model.BlockType, []model.FieldDefinition, error) {
	desc.TypeName = strings.TrimSpace(desc.TypeName)
	if desc.TypeName == "" {
		return model.BlockType{}, nil, ErrTypeRequired
	}
	bt, err := e.registry.BlockType(desc.TypeName)
	if err != nil {
		return model.BlockType{}, nil, fmt.Errorf("engine: %w", err)
	}
	fields, err := e.registry.Fields(desc.TypeName)
	if err != nil {
		return model.BlockType{}, nil, fmt.Errorf("engine: %w", err)
	}
	if bt.UseDurableStorage {
		desc.UseDurableStorage = true
	}
	if bt.ValidateOnLoad {
		desc.ValidateOnLoad = true
	}
	return bt, fields, nil
}

// identityAttributes is the attribute map hashed for a descriptor. Rendering
// mode and validation flags are request options, not content, and are left
// out.
func identityAttributes(desc model.Descriptor) map[string]any {
	attrs := make(map[string]any, len(desc.Attributes)+3)
	for key, value := range desc.Attributes {
		attrs[key] = value
	}
	attrs["name"] = desc.TypeName
	if len(desc.Data) > 0 {
		attrs["data"] = desc.Data
	}
	if desc.ID != "" {
		attrs["id"] = desc.ID
	}
	return attrs
}

// resolveID returns the block id. A supplied id is reused unless the block is
// durable, carries inline data and nothing is staged for it, in which case no
// snapshot backs the id and it is recomputed from content.
func resolveID(desc model.Descriptor, ctx map[string]any, bridge *metabridge.Bridge) string {
	force := desc.UseDurableStorage && desc.ID != "" && len(desc.Data) > 0 && !bridge.Has(desc.ID)
	return identity.Resolve(identityAttributes(desc), mergeContext(desc.Context, ctx), force)
}

func mergeContext(base, extra map[string]any) map[string]any {
	if len(extra) == 0 {
		return base
	}
	out := make(map[string]any, len(base)+len(extra))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range extra {
		out[key] = value
	}
	return out
}

// keyed re-keys values by field key, accepting field names from clients that
// send them. Unknown keys are kept as given.
func keyed(fields []model.FieldDefinition, values map[string]any) map[string]any {
	if len(values) == 0 {
		return map[string]any{}
	}
	byName := make(map[string]string, len(fields))
	for _, field := range fields {
		if field.Parent == "" && field.Name != "" {
			byName[field.Name] = field.Key
		}
	}
	out := make(map[string]any, len(values))
	for key, value := range values {
		if fieldKey, ok := byName[key]; ok && fieldKey != key {
			if _, exists := values[fieldKey]; exists {
				continue
			}
			key = fieldKey
		}
		out[key] = value
	}
	return out
}

func topLevelKeys(fields []model.FieldDefinition) []string {
	keys := make([]string, 0, len(fields))
	for _, field := range fields {
		if field.Parent == "" {
			keys = append(keys, field.Key)
		}
	}
	return keys
}
