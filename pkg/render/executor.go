package render

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-fieldblocks/pkg/render/template"
)

// TemplateExecutor executes block templates through a TemplateRenderer.
// Block types whose Template looks like inline markup are rendered from the
// string itself.
type TemplateExecutor struct {
	renderer template.TemplateRenderer
}

var _ Executor = (*TemplateExecutor)(nil)

// NewTemplateExecutor wraps renderer.
func NewTemplateExecutor(renderer template.TemplateRenderer) (*TemplateExecutor, error) {
	if renderer == nil {
		return nil, errors.New("render: template renderer is required")
	}
	return &TemplateExecutor{renderer: renderer}, nil
}

// Execute implements Executor. Missing templates surface as
// *ConfigurationError.
func (e *TemplateExecutor) Execute(ctx context.Context, req ExecuteRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ref := strings.TrimSpace(req.BlockType.Template)
	if ref == "" {
		return "", &ConfigurationError{BlockType: req.BlockType.Name, Err: ErrTemplateMissing}
	}

	out, err := e.renderer.Render(ref, req.TemplateData())
	if err != nil {
		if errors.Is(err, template.ErrTemplateNotFound) {
			return "", &ConfigurationError{BlockType: req.BlockType.Name, Template: ref, Err: err}
		}
		return "", fmt.Errorf("render: execute block %q: %w", req.BlockType.Name, err)
	}
	return out, nil
}
