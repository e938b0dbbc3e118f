package render

import (
	"github.com/goliatone/go-fieldblocks/pkg/model"
)

// ExecuteRequest carries everything a block template may reference.
type ExecuteRequest struct {
	BlockType  model.BlockType
	Descriptor model.Descriptor
	// BlockID is the resolved identity of the block occurrence.
	BlockID string
	// Fields holds formatted values keyed by field name, in the shape
	// templates consume.
	Fields map[string]any
	// Values holds raw values keyed by field key.
	Values    map[string]any
	InnerHTML string
	IsEditing bool
	OwnerID   string
	Context   map[string]any
	// Validation is set only when validation was requested.
	Validation *model.ValidationResult
}

// TemplateData returns the context handed to the template engine.
func (r ExecuteRequest) TemplateData() map[string]any {
	data := map[string]any{
		"block": map[string]any{
			"id":    r.BlockID,
			"name":  r.BlockType.Name,
			"title": r.BlockType.Title,
			"mode":  r.Descriptor.Mode,
		},
		"fields":     orEmpty(r.Fields),
		"values":     orEmpty(r.Values),
		"attributes": orEmpty(r.Descriptor.Attributes),
		"context":    orEmpty(r.Context),
		"inner_html": r.InnerHTML,
		"is_editing": r.IsEditing,
		"owner_id":   r.OwnerID,
	}
	if r.Validation != nil {
		data["validation"] = map[string]any{
			"valid":  r.Validation.Valid,
			"errors": FieldErrors(*r.Validation),
		}
	}
	return data
}

// FormRequest describes an editing form to render.
type FormRequest struct {
	BlockType  model.BlockType
	BlockID    string
	Fields     []model.FieldDefinition
	Values     map[string]any
	Validation *model.ValidationResult
	// Hidden lists field keys whose conditional logic currently hides them.
	Hidden map[string]bool
}

func orEmpty(in map[string]any) map[string]any {
	if in == nil {
		return map[string]any{}
	}
	return in
}
