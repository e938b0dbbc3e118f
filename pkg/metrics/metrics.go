// Package metrics exposes Prometheus collectors for the block engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fieldblocks"

// Collector groups the engine's counters. A nil *Collector is valid and
// records nothing, so callers never need to guard their calls.
type Collector struct {
	CacheLookups        *prometheus.CounterVec
	TemplateExecutions  *prometheus.CounterVec
	ValidationRuns      *prometheus.CounterVec
	FlushWrites         prometheus.Counter
	AnnotatorFallbacks  prometheus.Counter
	ConfigurationErrors *prometheus.CounterVec
}

// New builds a collector and registers it on reg. A nil registerer leaves the
// collectors unregistered, which is convenient for tests.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_cache_lookups_total",
			Help:      "Render cache lookups by mode and result.",
		}, []string{"mode", "result"}),
		TemplateExecutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "template_executions_total",
			Help:      "Block template executions by block type.",
		}, []string{"block_type"}),
		ValidationRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_runs_total",
			Help:      "Validation evaluations by path.",
		}, []string{"path"}),
		FlushWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "meta_bridge_flush_writes_total",
			Help:      "Field value store writes issued by meta bridge flushes.",
		}),
		AnnotatorFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "annotator_fallbacks_total",
			Help:      "Inline-edit annotation passes that fell back to unannotated output.",
		}),
		ConfigurationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "configuration_errors_total",
			Help:      "Blocks rendered as configuration notices.",
		}, []string{"block_type"}),
	}
	if reg == nil {
		return c, nil
	}
	for _, collector := range []prometheus.Collector{
		c.CacheLookups, c.TemplateExecutions, c.ValidationRuns,
		c.FlushWrites, c.AnnotatorFallbacks, c.ConfigurationErrors,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// CacheLookup records a render cache probe.
func (c *Collector) CacheLookup(mode string, hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.CacheLookups.WithLabelValues(mode, result).Inc()
}

// TemplateExecuted records one executor run.
func (c *Collector) TemplateExecuted(blockType string) {
	if c == nil {
		return
	}
	c.TemplateExecutions.WithLabelValues(blockType).Inc()
}

// ValidationRun records which evaluation path was taken.
func (c *Collector) ValidationRun(path string) {
	if c == nil {
		return
	}
	c.ValidationRuns.WithLabelValues(path).Inc()
}

// FlushWrite records a store write issued by a meta bridge flush.
func (c *Collector) FlushWrite() {
	if c == nil {
		return
	}
	c.FlushWrites.Inc()
}

// AnnotatorFallback records a degraded annotation pass.
func (c *Collector) AnnotatorFallback() {
	if c == nil {
		return
	}
	c.AnnotatorFallbacks.Inc()
}

// ConfigurationError records a block rendered as a notice.
func (c *Collector) ConfigurationError(blockType string) {
	if c == nil {
		return
	}
	c.ConfigurationErrors.WithLabelValues(blockType).Inc()
}
