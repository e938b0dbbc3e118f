package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassForm     ChromeClass = "fieldblocks-form"
	ClassField    ChromeClass = "fieldblocks-field"
	ClassInvalid  ChromeClass = "fieldblocks-field--invalid"
	ClassErrors   ChromeClass = "fieldblocks-errors"
	ClassFieldset ChromeClass = "fieldblocks-fieldset"
)

// Classes groups the chrome classes applied by the form template.
type Classes struct {
	Form     string
	Field    string
	Invalid  string
	Errors   string
	Fieldset string
}

// DefaultClasses returns the built-in chrome classes.
func DefaultClasses() Classes {
	return Classes{
		Form:     string(ClassForm),
		Field:    string(ClassField),
		Invalid:  string(ClassInvalid),
		Errors:   string(ClassErrors),
		Fieldset: string(ClassFieldset),
	}
}

func (c Classes) withDefaults() Classes {
	defaults := DefaultClasses()
	if c.Form == "" {
		c.Form = defaults.Form
	}
	if c.Field == "" {
		c.Field = defaults.Field
	}
	if c.Invalid == "" {
		c.Invalid = defaults.Invalid
	}
	if c.Errors == "" {
		c.Errors = defaults.Errors
	}
	if c.Fieldset == "" {
		c.Fieldset = defaults.Fieldset
	}
	return c
}

func (c Classes) asMap() map[string]any {
	return map[string]any{
		"form":     c.Form,
		"field":    c.Field,
		"invalid":  c.Invalid,
		"errors":   c.Errors,
		"fieldset": c.Fieldset,
	}
}
