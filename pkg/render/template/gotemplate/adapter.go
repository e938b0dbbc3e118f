// Package gotemplate implements template.TemplateRenderer on a pongo2
// template set.
package gotemplate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-fieldblocks/pkg/render/template"
)

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	templates fs.FS
	extension string
	setName   string
}

// WithFS loads templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the default ".tpl" template extension.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithSetName names the underlying pongo2 template set.
func WithSetName(name string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.setName = trimmed
		}
	}
}

// Engine renders block and form templates with pongo2. Parsed named
// templates are kept for the life of the engine.
type Engine struct {
	mu sync.RWMutex

	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
	ext       string
	files     fs.FS
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New constructs an Engine over the templates in WithFS.
func New(options ...Option) (*Engine, error) {
	cfg := &config{
		extension: ".tpl",
		setName:   "fieldblocks",
	}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.templates == nil {
		return nil, errors.New("gotemplate: templates fs is required")
	}

	registerDefaultFilters()
	return &Engine{
		set:       pongo2.NewSet(cfg.setName, pongo2.NewFSLoader(cfg.templates)),
		templates: make(map[string]*pongo2.Template),
		ext:       cfg.extension,
		files:     cfg.templates,
	}, nil
}

// Render treats name as inline content when it contains template markup and
// as a template name otherwise.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if template.IsTemplateContent(name) {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate renders a named template, appending the configured
// extension when missing.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	templatePath := e.templatePath(name)
	tmpl, err := e.lookup(templatePath)
	if err != nil {
		return "", err
	}
	rendered, err := execute(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute template %q: %w", templatePath, err)
	}
	return rendered, writeAll(rendered, out)
}

// RenderString parses and renders inline template content. Inline block
// templates are small and parsed per call.
func (e *Engine) RenderString(content string, data any, out ...io.Writer) (string, error) {
	tmpl, err := e.set.FromString(content)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse template string: %w", err)
	}
	rendered, err := execute(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute template string: %w", err)
	}
	return rendered, writeAll(rendered, out)
}

func (e *Engine) templatePath(name string) string {
	templatePath := path.Clean(strings.TrimPrefix(strings.TrimSpace(name), "/"))
	if !strings.HasSuffix(templatePath, e.ext) {
		templatePath += e.ext
	}
	return templatePath
}

func (e *Engine) lookup(templatePath string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.templates[templatePath]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	if _, err := fs.Stat(e.files, templatePath); err != nil {
		return nil, fmt.Errorf("gotemplate: %w: %q", template.ErrTemplateNotFound, templatePath)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[templatePath]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load template %q: %w", templatePath, err)
	}
	e.templates[templatePath] = tmpl
	return tmpl, nil
}

func execute(tmpl *pongo2.Template, data any) (string, error) {
	ctx, err := toContext(data)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// toContext accepts the map shapes executors and form renderers build.
func toContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return v, nil
	case map[string]any:
		return pongo2.Context(v), nil
	default:
		return nil, fmt.Errorf("gotemplate: template data must be a map, got %T", data)
	}
}

func writeAll(rendered string, out []io.Writer) error {
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return err
		}
	}
	return nil
}

func registerDefaultFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}
