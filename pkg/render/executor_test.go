package render_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-fieldblocks/pkg/model"
	"github.com/goliatone/go-fieldblocks/pkg/render"
	"github.com/goliatone/go-fieldblocks/pkg/render/template/gotemplate"
)

func newExecutor(t *testing.T) *render.TemplateExecutor {
	t.Helper()
	engine, err := gotemplate.New(gotemplate.WithFS(fstest.MapFS{
		"blocks/hero.tpl": {Data: []byte(`<section id="{{ block.id }}"><h2>{{ fields.headline }}</h2>{% if is_editing %}<em>editing</em>{% endif %}</section>`)},
	}))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	executor, err := render.NewTemplateExecutor(engine)
	if err != nil {
		t.Fatalf("new executor: %v", err)
	}
	return executor
}

func TestTemplateExecutor_Execute(t *testing.T) {
	executor := newExecutor(t)

	got, err := executor.Execute(context.Background(), render.ExecuteRequest{
		BlockType: model.BlockType{Name: "hero", Template: "blocks/hero"},
		BlockID:   "block_1",
		Fields:    map[string]any{"headline": "Hello World"},
		IsEditing: true,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	want := `<section id="block_1"><h2>Hello World</h2><em>editing</em></section>`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("execute mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplateExecutor_InlineTemplate(t *testing.T) {
	executor := newExecutor(t)

	got, err := executor.Execute(context.Background(), render.ExecuteRequest{
		BlockType: model.BlockType{Name: "note", Template: `<p>{{ fields.body }}</p>`},
		Fields:    map[string]any{"body": "Inline"},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got != "<p>Inline</p>" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestTemplateExecutor_ConfigurationErrors(t *testing.T) {
	executor := newExecutor(t)

	cases := []struct {
		name       string
		block      model.BlockType
		wantNotice string
	}{
		{
			name:       "no template",
			block:      model.BlockType{Name: "empty"},
			wantNotice: `<div class="fieldblocks-block-notice">Block &#34;empty&#34; has no template configured.</div>`,
		},
		{
			name:       "missing template",
			block:      model.BlockType{Name: "ghost", Template: "blocks/ghost"},
			wantNotice: `<div class="fieldblocks-block-notice">Template &#34;blocks/ghost&#34; for block &#34;ghost&#34; was not found.</div>`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := executor.Execute(context.Background(), render.ExecuteRequest{BlockType: tc.block})
			var cfgErr *render.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if diff := cmp.Diff(tc.wantNotice, cfgErr.Notice()); diff != "" {
				t.Fatalf("notice mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFieldErrors(t *testing.T) {
	got := render.FieldErrors(model.ValidationResult{Errors: []model.FieldError{
		{Field: "field_title", Message: " Title value is required "},
		{Field: "field_title", Message: "Title value is required"},
		{Field: "field_email", Message: "Email must be a valid email address"},
		{Field: "field_blank", Message: " "},
	}})

	want := map[string][]string{
		"field_title": {"Title value is required"},
		"field_email": {"Email must be a valid email address"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
}
