package vanilla

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded template bundle so hosts can copy or
// override individual templates.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
