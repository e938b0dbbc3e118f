package vanilla

import (
	"encoding/json"
	"strings"

	"github.com/goliatone/go-fieldblocks/pkg/model"
	"github.com/goliatone/go-fieldblocks/pkg/visibility"
)

func controlID(blockID, key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return ""
	}
	return "fb-" + strings.TrimPrefix(blockID, "block_") + "-" + trimmed
}

func inputName(blockID, key string) string {
	return "fieldblocks[" + blockID + "][" + key + "]"
}

// controlFor maps a field type onto the template control branch.
func controlFor(field model.FieldDefinition) string {
	switch field.Type {
	case model.FieldTypeTextarea, model.FieldTypeWYSIWYG:
		return "textarea"
	case model.FieldTypeSelect:
		return "select"
	case model.FieldTypeRadio, model.FieldTypeButtonGroup:
		return "radio"
	case model.FieldTypeCheckbox:
		return "checkbox"
	case model.FieldTypeTrueFalse:
		return "toggle"
	case model.FieldTypeGroup, model.FieldTypeRepeater, model.FieldTypeFlexibleContent,
		model.FieldTypeRelationship, model.FieldTypeTaxonomy, model.FieldTypeLink, model.FieldTypeImage:
		return "structured"
	default:
		return "input"
	}
}

func inputType(field model.FieldDefinition) string {
	switch field.Type {
	case model.FieldTypeEmail:
		return "email"
	case model.FieldTypeURL:
		return "url"
	case model.FieldTypeNumber:
		return "number"
	case model.FieldTypeDatePicker:
		return "date"
	default:
		return "text"
	}
}

func labelFor(field model.FieldDefinition) string {
	if field.Label != "" {
		return field.Label
	}
	if field.Name != "" {
		return field.Name
	}
	return field.Key
}

func encodeStructured(value any) string {
	if value == nil {
		return ""
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(raw)
}

func selectedSet(value any) map[string]bool {
	out := make(map[string]bool)
	for _, v := range visibility.Strings(value) {
		out[v] = true
	}
	return out
}
