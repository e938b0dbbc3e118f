// Package compose splices nested block content into executed block markup.
package compose

import (
	"html"
	"regexp"
	"strings"
)

// DefaultClass is the wrapper class used when the placeholder declares none.
const DefaultClass = "fieldblocks-inner-blocks"

var (
	placeholderPattern = regexp.MustCompile(`(?is)<InnerBlocks\b([^>]*?)/?>(?:\s*</InnerBlocks>)?`)
	classPattern       = regexp.MustCompile(`(?i)\b(?:className|class)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

// Options controls a single composition.
type Options struct {
	// Editing leaves the placeholder in place for the client editor.
	Editing bool
	// Wrap surrounds inner content with a container element.
	Wrap bool
	// Class overrides DefaultClass for placeholders without a class.
	Class string
}

// HasPlaceholder reports whether executed contains a nested-content slot.
func HasPlaceholder(executed string) bool {
	return placeholderPattern.MatchString(executed)
}

// ReplacePlaceholders calls fn for every placeholder in executed and
// substitutes its result.
func ReplacePlaceholders(executed string, fn func(placeholder string) string) string {
	return placeholderPattern.ReplaceAllStringFunc(executed, fn)
}

// Compose replaces the first placeholder in executed with inner. Only one
// substitution is performed; further placeholders are left untouched. inner
// is inserted literally, so sequences such as "$1" survive as written.
func Compose(executed, inner string, opts Options) string {
	if opts.Editing {
		return executed
	}
	loc := placeholderPattern.FindStringSubmatchIndex(executed)
	if loc == nil {
		return executed
	}

	replacement := inner
	if opts.Wrap {
		class := placeholderClass(executed[loc[2]:loc[3]])
		if class == "" {
			class = opts.Class
		}
		if class == "" {
			class = DefaultClass
		}
		replacement = `<div class="` + html.EscapeString(class) + `">` + inner + `</div>`
	}

	var b strings.Builder
	b.Grow(len(executed) - (loc[1] - loc[0]) + len(replacement))
	b.WriteString(executed[:loc[0]])
	b.WriteString(replacement)
	b.WriteString(executed[loc[1]:])
	return b.String()
}

func placeholderClass(attrs string) string {
	match := classPattern.FindStringSubmatch(attrs)
	if match == nil {
		return ""
	}
	if match[1] != "" {
		return strings.TrimSpace(match[1])
	}
	return strings.TrimSpace(match[2])
}
