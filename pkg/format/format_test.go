package format_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-fieldblocks/pkg/format"
	"github.com/goliatone/go-fieldblocks/pkg/model"
)

func TestDefault_Format(t *testing.T) {
	formatter := format.New()
	styles := []model.Choice{{Value: "card", Label: "Card"}, {Value: "list", Label: "List"}}

	cases := []struct {
		name  string
		field model.FieldDefinition
		value any
		want  any
	}{
		{name: "text", field: model.FieldDefinition{Type: model.FieldTypeText}, value: "Hello", want: "Hello"},
		{name: "nil uses default", field: model.FieldDefinition{Type: model.FieldTypeText, Default: "Fallback"}, want: "Fallback"},
		{name: "rich text sanitized", field: model.FieldDefinition{Type: model.FieldTypeWYSIWYG}, value: `<p onclick="x()">Hi<script>alert(1)</script></p>`, want: "<p>Hi</p>"},
		{name: "true false", field: model.FieldDefinition{Type: model.FieldTypeTrueFalse}, value: "1", want: true},
		{name: "number", field: model.FieldDefinition{Type: model.FieldTypeNumber}, value: "3.5", want: "3.5"},
		{name: "integral number", field: model.FieldDefinition{Type: model.FieldTypeNumber}, value: 3.0, want: "3"},
		{name: "select value", field: model.FieldDefinition{Type: model.FieldTypeSelect, Choices: styles}, value: "card", want: "card"},
		{name: "select label", field: model.FieldDefinition{Type: model.FieldTypeSelect, Choices: styles, Metadata: map[string]string{"return_format": "label"}}, value: "list", want: "List"},
		{name: "checkbox labels", field: model.FieldDefinition{Type: model.FieldTypeCheckbox, Choices: styles, Metadata: map[string]string{"return_format": "label"}}, value: []any{"card", "other"}, want: []string{"Card", "other"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := formatter.Format(tc.field, tc.value)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("format mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDefault_FormatRepeaterRows(t *testing.T) {
	field := model.FieldDefinition{
		Key:  "field_items",
		Type: model.FieldTypeRepeater,
		SubFields: []model.FieldDefinition{
			{Key: "field_item_title", Name: "title", Type: model.FieldTypeText},
			{Key: "field_item_featured", Name: "featured", Type: model.FieldTypeTrueFalse},
		},
	}

	got := format.New().Format(field, []any{
		map[string]any{"field_item_title": "One", "field_item_featured": true},
		map[string]any{"title": "Two"},
	})

	want := []any{
		map[string]any{"title": "One", "featured": true},
		map[string]any{"title": "Two", "featured": false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("format mismatch (-want +got):\n%s", diff)
	}
}
