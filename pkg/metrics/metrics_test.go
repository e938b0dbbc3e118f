package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-fieldblocks/pkg/metrics"
)

func TestCollector_CountsCacheLookups(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := metrics.New(reg)
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}

	c.CacheLookup("edit", false)
	c.CacheLookup("edit", true)
	c.CacheLookup("edit", true)

	if got := testutil.ToFloat64(c.CacheLookups.WithLabelValues("edit", "hit")); got != 2 {
		t.Fatalf("expected 2 hits, got %v", got)
	}
	if got := testutil.ToFloat64(c.CacheLookups.WithLabelValues("edit", "miss")); got != 1 {
		t.Fatalf("expected 1 miss, got %v", got)
	}
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *metrics.Collector
	c.CacheLookup("display", true)
	c.TemplateExecuted("hero")
	c.FlushWrite()
	c.AnnotatorFallback()
}

func TestNew_DuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := metrics.New(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := metrics.New(reg); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}
