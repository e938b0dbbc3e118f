package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-fieldblocks/pkg/annotate"
	"github.com/goliatone/go-fieldblocks/pkg/blocks"
	"github.com/goliatone/go-fieldblocks/pkg/compose"
	"github.com/goliatone/go-fieldblocks/pkg/format"
	"github.com/goliatone/go-fieldblocks/pkg/metabridge"
	"github.com/goliatone/go-fieldblocks/pkg/model"
	"github.com/goliatone/go-fieldblocks/pkg/render"
	"github.com/goliatone/go-fieldblocks/pkg/rendercache"
	"github.com/goliatone/go-fieldblocks/pkg/store"
	"github.com/goliatone/go-fieldblocks/pkg/validation"
	"github.com/goliatone/go-fieldblocks/pkg/visibility"
)

// ScopeOption configures a Scope.
type ScopeOption func(*Scope)

// WithBridge shares an existing meta bridge with the scope, for hosts whose
// content parse and save happen in separate phases of the same request.
func WithBridge(bridge *metabridge.Bridge) ScopeOption {
	return func(s *Scope) {
		if bridge != nil {
			s.bridge = bridge
		}
	}
}

// Scope is the state of a single request: its render cache and meta bridge.
// It is not safe for concurrent use.
type Scope struct {
	engine *Engine
	cache  *rendercache.Cache
	bridge *metabridge.Bridge
}

// Cache exposes the request render cache.
func (s *Scope) Cache() *rendercache.Cache { return s.cache }

// Bridge exposes the request meta bridge.
func (s *Scope) Bridge() *metabridge.Bridge { return s.bridge }

// prepared is a descriptor resolved against its block type.
type prepared struct {
	desc   model.Descriptor
	block  model.BlockType
	fields []model.FieldDefinition
	id     string
	values map[string]any
	ctx    map[string]any
	// submitted values make the markup request specific; it neither reads
	// nor fills the render cache.
	submitted bool
}

func (s *Scope) prepare(ctx context.Context, desc model.Descriptor, ownerID string, extra map[string]any) (*prepared, error) {
	e := s.engine
	block, fields, err := e.blockType(&desc)
	if err != nil {
		return nil, err
	}
	p := &prepared{
		desc:   desc,
		block:  block,
		fields: fields,
		id:     resolveID(desc, extra, s.bridge),
		ctx:    mergeContext(desc.Context, extra),
	}
	p.values, err = s.loadValues(ctx, p, ownerID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// loadValues returns the block values keyed by field key. Durable blocks read
// staged values first and fall back to the owner's store; inline data always
// takes precedence.
func (s *Scope) loadValues(ctx context.Context, p *prepared, ownerID string) (map[string]any, error) {
	values := make(map[string]any)
	if p.desc.UseDurableStorage {
		if staged, ok := s.bridge.Peek(p.id); ok {
			for key, value := range staged {
				values[key] = value
			}
		} else if ownerID != "" && s.engine.store != nil {
			stored, err := store.Load(ctx, s.engine.store, ownerID, topLevelKeys(p.fields))
			if err != nil {
				return nil, fmt.Errorf("engine: load values for block %q: %w", p.id, err)
			}
			for key, value := range stored {
				values[key] = value
			}
		}
	}
	for key, value := range keyed(p.fields, p.desc.Data) {
		values[key] = value
	}
	return values, nil
}

// Render returns the markup for desc. isEditing selects the editor preview
// path (nested content left as a placeholder, inline-edit annotation);
// otherwise the display path is taken. Within the scope the template runs at
// most once per block id and path.
//
// Render is the page load of a block, so when desc.Validate is set validation
// runs as a first load: skipped unless the block validates on load, then
// against defaults or stored values. Submitted payloads go through Fetch.
func (s *Scope) Render(ctx context.Context, desc model.Descriptor, innerHTML string, isEditing bool, ownerID string, extra map[string]any) (string, error) {
	if ctx == nil {
		return "", errors.New("engine: context is required")
	}
	ctx, span := s.engine.tracer.Start(ctx, "fieldblocks.render", trace.WithAttributes(
		attribute.String("block.type", desc.TypeName),
		attribute.Bool("block.editing", isEditing),
	))
	defer span.End()

	p, err := s.prepare(ctx, desc, ownerID, extra)
	if err != nil {
		recordError(span, err)
		return "", err
	}
	span.SetAttributes(attribute.String("block.id", p.id))

	var result *model.ValidationResult
	if p.desc.Validate {
		outcome := s.evaluate(p, validation.Input{FirstLoad: true})
		result = &outcome
	}

	out, err := s.render(ctx, p, innerHTML, isEditing, ownerID, result, span)
	if err != nil {
		recordError(span, err)
		return "", err
	}
	return out, nil
}

func (s *Scope) render(ctx context.Context, p *prepared, innerHTML string, isEditing bool, ownerID string, result *model.ValidationResult, span trace.Span) (string, error) {
	e := s.engine
	mode := rendercache.ModeFor(isEditing)
	log := e.logger.WithFields(map[string]any{"block_id": p.id, "block_type": p.block.Name, "mode": string(mode)})

	if !p.submitted {
		if entry, ok := s.cache.Get(p.id, mode); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			log.Debug("render cache hit", nil)
			return entry.HTML, nil
		}
		span.SetAttributes(attribute.Bool("cache.hit", false))
		log.Debug("render cache miss", nil)
	}

	var rec *annotate.Recorder
	if isEditing && e.inlineEditing && p.block.InlineEditing && e.annotator != nil {
		rec = annotate.NewRecorder()
	}

	req := render.ExecuteRequest{
		BlockType:  p.block,
		Descriptor: p.desc,
		BlockID:    p.id,
		Fields:     s.templateFields(p, rec),
		Values:     p.values,
		InnerHTML:  innerHTML,
		IsEditing:  isEditing,
		OwnerID:    ownerID,
		Context:    p.ctx,
		Validation: result,
	}

	executed, err := e.executor.Execute(ctx, req)
	e.metrics.TemplateExecuted(p.block.Name)
	if err != nil {
		var cfgErr *render.ConfigurationError
		if !errors.As(err, &cfgErr) {
			return "", err
		}
		log.WithError(err).Warn("block rendered as configuration notice", nil)
		e.metrics.ConfigurationError(p.block.Name)
		notice := cfgErr.Notice()
		s.remember(p, mode, notice, result)
		return notice, nil
	}

	out := compose.Compose(executed, innerHTML, compose.Options{
		Editing: isEditing,
		Wrap:    p.block.WrapsInner(),
	})

	if rec != nil {
		annotated, err := e.annotator.Annotate(out, rec)
		if err != nil {
			log.WithError(err).Debug("inline-edit annotation skipped", nil)
			e.metrics.AnnotatorFallback()
		}
		out = annotated
	}

	s.remember(p, mode, out, result)
	return out, nil
}

func (s *Scope) remember(p *prepared, mode rendercache.Mode, html string, result *model.ValidationResult) {
	if p.submitted {
		return
	}
	s.cache.Set(p.id, mode, html, result)
}

// templateFields formats every top-level field for the template, keyed by
// field name. With a recorder present scalar values are intercepted in
// declaration order.
func (s *Scope) templateFields(p *prepared, rec *annotate.Recorder) map[string]any {
	out := make(map[string]any, len(p.fields))
	for _, field := range p.fields {
		if field.Parent != "" {
			continue
		}
		value := s.engine.formatter.Format(field, p.values[field.Key])
		if rec != nil {
			value = rec.Intercept(field, value)
		}
		out[format.Name(field)] = value
	}
	return out
}

func (s *Scope) evaluate(p *prepared, in validation.Input) model.ValidationResult {
	in.Fields = p.fields
	in.Values = p.values
	in.ValidateOnLoad = p.desc.ValidateOnLoad
	in.Extras = p.ctx
	outcome := s.engine.validation.Evaluate(in)
	s.engine.metrics.ValidationRun(string(outcome.Path))
	s.engine.logger.Debug("block validated", map[string]any{
		"block_id": p.id,
		"path":     string(outcome.Path),
		"valid":    outcome.Result.Valid,
		"errors":   len(outcome.Result.Errors),
	})
	return outcome.Result
}

// Query selects what Fetch returns.
type Query struct {
	Preview  bool `json:"preview,omitempty"`
	Form     bool `json:"form,omitempty"`
	Validate bool `json:"validate,omitempty"`
	// FirstLoad marks the editor's initial request for the block.
	FirstLoad bool `json:"first_load,omitempty"`
	// Values is a posted form payload. When present it is validated and
	// used as the block's current values.
	Values    map[string]any `json:"values,omitempty"`
	InnerHTML string         `json:"inner_html,omitempty"`
	// Renderer names the form renderer; empty selects the default.
	Renderer string `json:"renderer,omitempty"`
}

// targets resolves which markup is wanted. Without an explicit choice the
// descriptor mode decides: edit wants the form, preview the preview and auto
// both.
func (q Query) targets(mode string) (form, preview bool) {
	if q.Form || q.Preview {
		return q.Form, q.Preview
	}
	switch mode {
	case model.ModeEdit:
		return true, false
	case model.ModePreview:
		return false, true
	default:
		return true, true
	}
}

// FetchResult is the out-of-band response for an editing client.
type FetchResult struct {
	ID          string                  `json:"id"`
	FormHTML    string                  `json:"form,omitempty"`
	PreviewHTML string                  `json:"preview,omitempty"`
	Validation  *model.ValidationResult `json:"validation,omitempty"`
}

// Fetch renders fresh editing markup and, when asked, validation for desc.
func (s *Scope) Fetch(ctx context.Context, desc model.Descriptor, q Query, ownerID string, extra map[string]any) (FetchResult, error) {
	if ctx == nil {
		return FetchResult{}, errors.New("engine: context is required")
	}
	ctx, span := s.engine.tracer.Start(ctx, "fieldblocks.fetch", trace.WithAttributes(
		attribute.String("block.type", desc.TypeName),
	))
	defer span.End()

	p, err := s.prepare(ctx, desc, ownerID, extra)
	if err != nil {
		recordError(span, err)
		return FetchResult{}, err
	}
	span.SetAttributes(attribute.String("block.id", p.id))

	var submitted map[string]any
	if q.Values != nil {
		p.submitted = true
		submitted = keyed(p.fields, q.Values)
		for key, value := range submitted {
			p.values[key] = value
		}
	}

	res := FetchResult{ID: p.id}
	if q.Validate || p.desc.Validate {
		result := s.evaluate(p, validation.Input{Submitted: submitted, FirstLoad: q.FirstLoad})
		res.Validation = &result
	}

	wantForm, wantPreview := q.targets(p.desc.Mode)
	if wantForm {
		res.FormHTML, err = s.form(ctx, p, q.Renderer, res.Validation)
		if err != nil {
			recordError(span, err)
			return FetchResult{}, err
		}
	}
	if wantPreview {
		res.PreviewHTML, err = s.render(ctx, p, q.InnerHTML, true, ownerID, res.Validation, span)
		if err != nil {
			recordError(span, err)
			return FetchResult{}, err
		}
	}
	return res, nil
}

// form renders the editing form. Only default-renderer output for stored
// values is cached.
func (s *Scope) form(ctx context.Context, p *prepared, rendererName string, result *model.ValidationResult) (string, error) {
	cacheable := strings.TrimSpace(rendererName) == "" && !p.submitted
	if cacheable {
		if entry, ok := s.cache.Get(p.id, rendercache.ModeForm); ok {
			return entry.HTML, nil
		}
	}
	renderer, err := s.engine.forms.Get(rendererName)
	if err != nil {
		return "", fmt.Errorf("engine: %w", err)
	}

	hidden := make(map[string]bool)
	evaluator := s.engine.validation.Visibility()
	for _, field := range p.fields {
		if evaluator == nil || !field.HasConditions() {
			continue
		}
		visible, err := evaluator.Visible(field, visibility.Context{Values: p.values, Extras: p.ctx})
		if err == nil && !visible {
			hidden[field.Key] = true
		}
	}

	out, err := renderer.RenderForm(ctx, render.FormRequest{
		BlockType:  p.block,
		BlockID:    p.id,
		Fields:     p.fields,
		Values:     p.values,
		Validation: result,
		Hidden:     hidden,
	})
	if err != nil {
		return "", fmt.Errorf("engine: render form for block %q: %w", p.id, err)
	}
	if cacheable {
		s.cache.Set(p.id, rendercache.ModeForm, out, result)
	}
	return out, nil
}

// Parse decodes serialized owner content and stages the values of every
// durable-storage block under its id, returning the descriptors with their
// ids set and their inline data removed.
func (s *Scope) Parse(ctx context.Context, serialized []byte) ([]model.Descriptor, error) {
	_, span := s.engine.tracer.Start(ctx, "fieldblocks.parse")
	defer span.End()

	list, err := blocks.DecodeList(serialized)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	if err := s.stage(list); err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("bridge.staged", s.bridge.Len()))
	return list, nil
}

func (s *Scope) stage(list []model.Descriptor) error {
	for i := range list {
		desc := &list[i]
		_, fields, err := s.engine.blockType(desc)
		if err != nil {
			return err
		}
		if desc.UseDurableStorage {
			desc.ID = resolveID(*desc, nil, s.bridge)
			if len(desc.Data) > 0 {
				s.bridge.Stage(desc.ID, keyed(fields, desc.Data))
				desc.Data = nil
			}
		}
		if err := s.stage(desc.InnerBlocks); err != nil {
			return err
		}
	}
	return nil
}

// OnOwnerSave flushes the staged values of every durable block referenced in
// the serialized block list into the field value store with one write.
// Store failures are returned as *metabridge.StorageError.
func (s *Scope) OnOwnerSave(ctx context.Context, ownerID string, serialized []byte) error {
	if ctx == nil {
		return errors.New("engine: context is required")
	}
	ctx, span := s.engine.tracer.Start(ctx, "fieldblocks.owner_save", trace.WithAttributes(
		attribute.String("owner.id", ownerID),
	))
	defer span.End()

	list, err := blocks.DecodeList(serialized)
	if err != nil {
		recordError(span, err)
		return err
	}
	for i := range list {
		s.markDurable(&list[i])
	}

	result, err := s.bridge.Flush(ctx, ownerID, list, func(desc model.Descriptor) string {
		return resolveID(desc, nil, s.bridge)
	}, s.engine.store)
	if err != nil {
		recordError(span, err)
		s.engine.logger.WithError(err).Error("meta bridge flush failed", map[string]any{"owner_id": ownerID})
		return err
	}
	if len(result.BlockIDs) == 0 {
		return nil
	}
	s.engine.metrics.FlushWrite()
	span.SetAttributes(attribute.Int("bridge.flushed", len(result.BlockIDs)))
	s.engine.logger.Info("staged block values flushed", map[string]any{
		"owner_id": ownerID,
		"blocks":   len(result.BlockIDs),
		"fields":   len(result.Values),
	})
	return nil
}

// markDurable applies block type storage settings to desc and its inner
// blocks. Unknown types are left as serialized.
func (s *Scope) markDurable(desc *model.Descriptor) {
	if bt, err := s.engine.registry.BlockType(desc.TypeName); err == nil && bt.UseDurableStorage {
		desc.UseDurableStorage = true
	}
	for i := range desc.InnerBlocks {
		s.markDurable(&desc.InnerBlocks[i])
	}
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
