package engine

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-fieldblocks/pkg/annotate"
	"github.com/goliatone/go-fieldblocks/pkg/format"
	"github.com/goliatone/go-fieldblocks/pkg/logging"
	"github.com/goliatone/go-fieldblocks/pkg/metrics"
	"github.com/goliatone/go-fieldblocks/pkg/registry"
	"github.com/goliatone/go-fieldblocks/pkg/render"
	"github.com/goliatone/go-fieldblocks/pkg/store"
	"github.com/goliatone/go-fieldblocks/pkg/validation"
)

// Option customises the engine configuration.
type Option func(*Engine)

// WithRegistry injects the block type registry. Required.
func WithRegistry(reg registry.Registry) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// WithStore injects the durable field value store used for durable-storage
// blocks and meta bridge flushes.
func WithStore(s store.Store) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithExecutor injects the template executor. Required.
func WithExecutor(executor render.Executor) Option {
	return func(e *Engine) {
		e.executor = executor
	}
}

// WithFormRenderer registers a renderer for editing-form markup, selectable by
// name through Query.Renderer. The first one registered is the default. The
// vanilla renderer is used when none is supplied.
func WithFormRenderer(renderer render.FormRenderer) Option {
	return func(e *Engine) {
		if renderer != nil {
			e.formOptions = append(e.formOptions, renderer)
		}
	}
}

// WithValidation replaces the validation engine.
func WithValidation(v *validation.Engine) Option {
	return func(e *Engine) {
		if v != nil {
			e.validation = v
		}
	}
}

// WithFormatter replaces the value formatter applied before template
// execution.
func WithFormatter(formatter format.Formatter) Option {
	return func(e *Engine) {
		if formatter != nil {
			e.formatter = formatter
		}
	}
}

// WithAnnotator replaces the inline-edit annotator. Passing nil disables
// annotation entirely, as when no DOM parser is available.
func WithAnnotator(a *annotate.Annotator) Option {
	return func(e *Engine) {
		e.annotator = a
		e.annotatorSet = true
	}
}

// WithInlineEditing toggles annotation globally. Block types still have to
// opt in through BlockType.InlineEditing.
func WithInlineEditing(enabled bool) Option {
	return func(e *Engine) {
		e.inlineEditing = enabled
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger logging.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics records engine activity on collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(e *Engine) {
		e.metrics = collector
	}
}

// WithTracerProvider sets the provider spans are started from. The global
// provider is used otherwise.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(e *Engine) {
		if provider != nil {
			e.tracer = provider.Tracer(tracerName)
		}
	}
}
