package vanilla_test

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-fieldblocks/pkg/model"
	"github.com/goliatone/go-fieldblocks/pkg/render"
	"github.com/goliatone/go-fieldblocks/pkg/renderers/vanilla"
)

func TestRenderer_RenderForm(t *testing.T) {
	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	req := render.FormRequest{
		BlockType: model.BlockType{Name: "hero", Title: "Hero"},
		BlockID:   "block_abc",
		Fields: []model.FieldDefinition{
			{Key: "field_headline", Name: "headline", Label: "Headline", Type: model.FieldTypeText, Required: true, Placeholder: "Add a headline"},
			{Key: "field_style", Name: "style", Label: "Style", Type: model.FieldTypeSelect, Choices: []model.Choice{{Value: "light", Label: "Light"}, {Value: "dark", Label: "Dark"}}},
			{Key: "field_show_cta", Name: "show_cta", Label: "Show CTA", Type: model.FieldTypeTrueFalse},
			{Key: "field_items", Name: "items", Label: "Items", Type: model.FieldTypeRepeater},
			{Key: "field_item_title", Name: "title", Type: model.FieldTypeText, Parent: "field_items"},
		},
		Values: map[string]any{
			"field_headline": "Hello World",
			"field_style":    "dark",
			"field_show_cta": true,
		},
		Validation: &model.ValidationResult{Errors: []model.FieldError{{Field: "field_headline", Message: "Too short"}}},
		Hidden:     map[string]bool{"field_items": true},
	}

	got, err := renderer.RenderForm(context.Background(), req)
	if err != nil {
		t.Fatalf("render form: %v", err)
	}

	for _, fragment := range []string{
		`data-fb-form="block_abc"`,
		`<input type="text" id="fb-abc-field_headline" name="fieldblocks[block_abc][field_headline]" value="Hello World" placeholder="Add a headline" required>`,
		`<option value="dark" selected>Dark</option>`,
		`<option value="light">Light</option>`,
		`value="1" checked>`,
		`data-fb-field="field_items" hidden`,
		`<li>Too short</li>`,
		`fieldblocks-field fieldblocks-field--invalid`,
	} {
		if !strings.Contains(got, fragment) {
			t.Errorf("expected output to contain %q\n%s", fragment, got)
		}
	}
	if strings.Contains(got, "field_item_title") {
		t.Errorf("nested fields should be rendered by their container")
	}
}

func TestRenderer_Name(t *testing.T) {
	renderer, err := vanilla.New(vanilla.WithClasses(vanilla.Classes{Form: "custom-form"}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if renderer.Name() != "vanilla" {
		t.Fatalf("unexpected name %q", renderer.Name())
	}

	got, err := renderer.RenderForm(context.Background(), render.FormRequest{BlockType: model.BlockType{Name: "empty"}})
	if err != nil {
		t.Fatalf("render form: %v", err)
	}
	if !strings.Contains(got, `class="custom-form"`) {
		t.Fatalf("expected custom class in %q", got)
	}
}
