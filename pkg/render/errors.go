package render

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-fieldblocks/pkg/model"
)

// ErrTemplateMissing reports a block type without a usable template.
var ErrTemplateMissing = errors.New("render: block template missing")

// NoticeClass is the class of the markup rendered in place of a block whose
// configuration is broken.
const NoticeClass = "fieldblocks-block-notice"

// ConfigurationError reports a block that cannot render because of how it is
// configured. Hosts render Notice instead of failing the page.
type ConfigurationError struct {
	BlockType string
	Template  string
	Err       error
}

func (e *ConfigurationError) Error() string {
	if e.Template != "" {
		return fmt.Sprintf("render: block %q: template %q: %v", e.BlockType, e.Template, e.Err)
	}
	return fmt.Sprintf("render: block %q: %v", e.BlockType, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Notice returns the visible, non-fatal markup shown for the error.
func (e *ConfigurationError) Notice() string {
	var msg string
	switch {
	case e.Template != "":
		msg = fmt.Sprintf("Template %q for block %q was not found.", e.Template, e.BlockType)
	default:
		msg = fmt.Sprintf("Block %q has no template configured.", e.BlockType)
	}
	return `<div class="` + NoticeClass + `">` + html.EscapeString(msg) + `</div>`
}

// FieldErrors groups validation messages by field key, trimming and
// de-duplicating them while preserving order.
func FieldErrors(result model.ValidationResult) map[string][]string {
	if len(result.Errors) == 0 {
		return map[string][]string{}
	}
	grouped := make(map[string][]string, len(result.Errors))
	for _, fe := range result.Errors {
		grouped[fe.Field] = append(grouped[fe.Field], fe.Message)
	}
	for key, messages := range grouped {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			delete(grouped, key)
			continue
		}
		grouped[key] = normalized
	}
	return grouped
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
