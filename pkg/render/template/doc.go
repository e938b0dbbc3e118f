// Package template defines the template rendering seam block executors and
// form renderers depend on. The gotemplate subpackage provides the pongo2
// implementation.
package template
