// Package vanilla renders block editing forms as plain HTML controls using
// the embedded pongo2 templates.
package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-fieldblocks/pkg/model"
	"github.com/goliatone/go-fieldblocks/pkg/render"
	rendertemplate "github.com/goliatone/go-fieldblocks/pkg/render/template"
	gotemplate "github.com/goliatone/go-fieldblocks/pkg/render/template/gotemplate"
	"github.com/goliatone/go-fieldblocks/pkg/visibility"
)

const formTemplate = "templates/form.tmpl"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	classes          Classes
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithClasses overrides chrome classes; empty entries keep their defaults.
func WithClasses(classes Classes) Option {
	return func(cfg *config) {
		cfg.classes = classes
	}
}

type Renderer struct {
	templates rendertemplate.TemplateRenderer
	classes   Classes
}

var _ render.FormRenderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
			gotemplate.WithSetName("fieldblocks-vanilla"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer, classes: cfg.classes.withDefaults()}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// RenderForm implements render.FormRenderer.
func (r *Renderer) RenderForm(_ context.Context, req render.FormRequest) (string, error) {
	if r.templates == nil {
		return "", fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	var errs map[string][]string
	if req.Validation != nil {
		errs = render.FieldErrors(*req.Validation)
	}

	fields := make([]any, 0, len(req.Fields))
	for _, field := range req.Fields {
		if field.Parent != "" {
			continue
		}
		fields = append(fields, buildField(req, field, errs[field.Key]))
	}

	result, err := r.templates.RenderTemplate(formTemplate, map[string]any{
		"classes": r.classes.asMap(),
		"form": map[string]any{
			"block_id":   req.BlockID,
			"block_name": req.BlockType.Name,
			"title":      req.BlockType.Title,
			"fields":     fields,
		},
	})
	if err != nil {
		return "", fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return result, nil
}

func buildField(req render.FormRequest, field model.FieldDefinition, errs []string) map[string]any {
	value, ok := req.Values[field.Key]
	if !ok || value == nil {
		value = field.Default
	}

	view := map[string]any{
		"key":          field.Key,
		"id":           controlID(req.BlockID, field.Key),
		"name":         inputName(req.BlockID, field.Key),
		"label":        labelFor(field),
		"control":      controlFor(field),
		"input_type":   inputType(field),
		"required":     field.Required,
		"placeholder":  field.Placeholder,
		"instructions": field.Instructions,
		"hidden":       req.Hidden[field.Key],
		"multiple":     field.Multiple,
		"errors":       errs,
	}

	switch view["control"] {
	case "structured":
		view["value"] = encodeStructured(value)
	case "toggle":
		view["checked"] = visibility.Truthy(value)
	case "select", "radio", "checkbox":
		selected := selectedSet(value)
		choices := make([]any, 0, len(field.Choices)+1)
		if view["control"] == "select" && field.AllowNull {
			choices = append(choices, map[string]any{"value": "", "label": "", "selected": len(selected) == 0})
		}
		for _, choice := range field.Choices {
			label := choice.Label
			if label == "" {
				label = choice.Value
			}
			choices = append(choices, map[string]any{
				"value":    choice.Value,
				"label":    label,
				"selected": selected[choice.Value],
			})
		}
		view["choices"] = choices
	default:
		view["value"] = visibility.String(value)
	}
	return view
}
