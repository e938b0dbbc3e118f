// Package format turns stored field values into the values block templates
// receive.
package format

import (
	"strconv"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-fieldblocks/pkg/model"
	"github.com/goliatone/go-fieldblocks/pkg/visibility"
)

// Formatter prepares a raw value for template execution.
type Formatter interface {
	Format(field model.FieldDefinition, value any) any
}

// FormatterFunc adapts a function into a Formatter.
type FormatterFunc func(field model.FieldDefinition, value any) any

// Format calls the underlying function.
func (fn FormatterFunc) Format(field model.FieldDefinition, value any) any {
	return fn(field, value)
}

// Option configures the default formatter.
type Option func(*Default)

// WithPolicy overrides the sanitizing policy applied to rich text.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(d *Default) {
		if policy != nil {
			d.policy = policy
		}
	}
}

// Default stringifies scalars, sanitizes rich text, resolves choice labels
// when a field asks for them, and recurses into containers.
type Default struct {
	policy *bluemonday.Policy
}

var _ Formatter = (*Default)(nil)

// New returns the default formatter using bluemonday's UGC policy for rich
// text.
func New(options ...Option) *Default {
	d := &Default{policy: bluemonday.UGCPolicy()}
	for _, opt := range options {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Format implements Formatter.
func (d *Default) Format(field model.FieldDefinition, value any) any {
	if value == nil {
		value = field.Default
	}

	switch field.Type {
	case model.FieldTypeWYSIWYG:
		return d.policy.Sanitize(visibility.String(value))
	case model.FieldTypeTrueFalse:
		return visibility.Truthy(value)
	case model.FieldTypeCheckbox:
		selected := visibility.Strings(value)
		if field.Metadata["return_format"] == "label" {
			for i, v := range selected {
				selected[i] = choiceLabel(field, v)
			}
		}
		return selected
	case model.FieldTypeSelect, model.FieldTypeRadio, model.FieldTypeButtonGroup:
		if field.Multiple {
			return d.Format(model.FieldDefinition{Type: model.FieldTypeCheckbox, Choices: field.Choices, Metadata: field.Metadata}, value)
		}
		if field.Metadata["return_format"] == "label" {
			return choiceLabel(field, visibility.String(value))
		}
		return visibility.String(value)
	case model.FieldTypeNumber:
		// Shortest form: pongo2 prints float64 with a fixed six decimals.
		if number, ok := visibility.Number(value); ok {
			return strconv.FormatFloat(number, 'f', -1, 64)
		}
		return visibility.String(value)
	case model.FieldTypeGroup:
		row, _ := value.(map[string]any)
		return d.formatRow(field.SubFields, row)
	case model.FieldTypeRepeater, model.FieldTypeFlexibleContent:
		rows, _ := value.([]any)
		out := make([]any, 0, len(rows))
		for _, item := range rows {
			row, _ := item.(map[string]any)
			formatted := d.formatRow(field.SubFields, row)
			if layout, ok := row["layout"]; ok {
				formatted["layout"] = layout
			}
			out = append(out, formatted)
		}
		return out
	case model.FieldTypeRelationship, model.FieldTypeTaxonomy, model.FieldTypeLink, model.FieldTypeImage:
		switch value.(type) {
		case map[string]any, []any:
			return value
		}
		return visibility.String(value)
	default:
		return visibility.String(value)
	}
}

// formatRow formats a container row, exposing sub values by field name.
func (d *Default) formatRow(fields []model.FieldDefinition, row map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for _, sub := range fields {
		value, ok := row[sub.Key]
		if !ok {
			value = row[sub.Name]
		}
		out[Name(sub)] = d.Format(sub, value)
	}
	return out
}

func choiceLabel(field model.FieldDefinition, value string) string {
	for _, choice := range field.Choices {
		if choice.Value == value && choice.Label != "" {
			return choice.Label
		}
	}
	return value
}

// Name returns the template-facing name of field.
func Name(field model.FieldDefinition) string {
	if field.Name != "" {
		return field.Name
	}
	return field.Key
}
