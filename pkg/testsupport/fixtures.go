package testsupport

import (
	"context"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-fieldblocks/pkg/model"
	"github.com/goliatone/go-fieldblocks/pkg/registry"
	"github.com/goliatone/go-fieldblocks/pkg/render"
	"github.com/goliatone/go-fieldblocks/pkg/render/template/gotemplate"
)

// HeroTemplate renders a headline, an optional subtitle, a call to action
// link and a nested-content slot. Editing renders add a marker element.
const HeroTemplate = `<section class="hero" id="{{ block.id }}"><h2>{{ fields.headline }}</h2><p class="subtitle">{{ fields.subtitle }}</p><a href="{{ fields.cta_url }}">Learn more</a>{% if is_editing %}<span class="hero-editing">editing</span>{% endif %}<InnerBlocks className="hero-inner" /></section>`

// HeroBlock returns a block type with a few text-like fields.
func HeroBlock() model.BlockType {
	return model.BlockType{
		Name:          "hero",
		Title:         "Hero",
		Template:      "blocks/hero",
		InlineEditing: true,
		Fields: []model.FieldDefinition{
			{Key: "field_headline", Name: "headline", Label: "Headline", Type: model.FieldTypeText, Required: true},
			{Key: "field_subtitle", Name: "subtitle", Label: "Subtitle", Type: model.FieldTypeText, Placeholder: "Add a subtitle"},
			{Key: "field_cta_url", Name: "cta_url", Label: "Link", Type: model.FieldTypeURL},
		},
	}
}

// TemplatesFS holds the block templates used by fixtures.
func TemplatesFS() fstest.MapFS {
	return fstest.MapFS{
		"blocks/hero.tpl": {Data: []byte(HeroTemplate)},
	}
}

// NewRegistry registers blocks in a fresh registry, failing the test on
// error.
func NewRegistry(t testing.TB, blocks ...model.BlockType) *registry.Memory {
	t.Helper()

	reg := registry.New()
	for _, block := range blocks {
		if err := reg.Register(block); err != nil {
			t.Fatalf("register block %q: %v", block.Name, err)
		}
	}
	return reg
}

// NewExecutor returns a pongo2-backed executor over TemplatesFS.
func NewExecutor(t testing.TB) *render.TemplateExecutor {
	t.Helper()

	engine, err := gotemplate.New(gotemplate.WithFS(TemplatesFS()))
	if err != nil {
		t.Fatalf("new template engine: %v", err)
	}
	executor, err := render.NewTemplateExecutor(engine)
	if err != nil {
		t.Fatalf("new executor: %v", err)
	}
	return executor
}

// CountingExecutor wraps an executor and counts executions per block id.
type CountingExecutor struct {
	Next render.Executor

	mu    sync.Mutex
	calls map[string]int
	total int
}

var _ render.Executor = (*CountingExecutor)(nil)

// NewCountingExecutor wraps next.
func NewCountingExecutor(next render.Executor) *CountingExecutor {
	return &CountingExecutor{Next: next, calls: make(map[string]int)}
}

// Execute implements render.Executor.
func (c *CountingExecutor) Execute(ctx context.Context, req render.ExecuteRequest) (string, error) {
	c.mu.Lock()
	c.calls[req.BlockID]++
	c.total++
	c.mu.Unlock()
	return c.Next.Execute(ctx, req)
}

// Calls reports how often blockID was executed.
func (c *CountingExecutor) Calls(blockID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[blockID]
}

// Total reports every execution.
func (c *CountingExecutor) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}
