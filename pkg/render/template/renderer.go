package template

import (
	"errors"
	"io"
	"strings"
)

// ErrTemplateNotFound is returned (wrapped) when a named template cannot be
// located by the renderer.
var ErrTemplateNotFound = errors.New("template: not found")

// TemplateRenderer renders named templates or inline template content.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
}

// IsTemplateContent reports whether s looks like inline template markup
// rather than a template name.
func IsTemplateContent(s string) bool {
	return containsAny(s, "{{", "{%", "<")
}

func containsAny(s string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
