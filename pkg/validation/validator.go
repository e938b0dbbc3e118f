package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-fieldblocks/pkg/model"
	"github.com/goliatone/go-fieldblocks/pkg/visibility"
)

// Validator checks a single value against its field definition. A nil error
// means the value is acceptable; the error text is surfaced to editors.
type Validator interface {
	Validate(value any, field model.FieldDefinition) error
}

// ValidatorFunc adapts a function into a Validator.
type ValidatorFunc func(value any, field model.FieldDefinition) error

// Validate calls the underlying function.
func (fn ValidatorFunc) Validate(value any, field model.FieldDefinition) error {
	return fn(value, field)
}

// DefaultValidator enforces the generic constraints every field type shares:
// required, email/url/number formats, numeric bounds, maximum length and
// choice membership.
type DefaultValidator struct{}

var _ Validator = DefaultValidator{}

// Validate implements Validator.
func (DefaultValidator) Validate(value any, field model.FieldDefinition) error {
	label := fieldLabel(field)
	if visibility.IsEmpty(value) && field.Type != model.FieldTypeTrueFalse {
		if field.Required {
			return fmt.Errorf("%s value is required", label)
		}
		return nil
	}
	if field.Type == model.FieldTypeTrueFalse {
		if field.Required && !visibility.Truthy(value) {
			return fmt.Errorf("%s value is required", label)
		}
		return nil
	}

	switch field.Type {
	case model.FieldTypeEmail:
		if _, err := mail.ParseAddress(visibility.String(value)); err != nil {
			return fmt.Errorf("%s must be a valid email address", label)
		}
	case model.FieldTypeURL:
		parsed, err := url.Parse(visibility.String(value))
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s must be a valid URL", label)
		}
	case model.FieldTypeNumber:
		number, ok := visibility.Number(value)
		if !ok {
			return fmt.Errorf("%s must be a number", label)
		}
		if field.Min != nil && number < *field.Min {
			return fmt.Errorf("%s must be greater than or equal to %v", label, *field.Min)
		}
		if field.Max != nil && number > *field.Max {
			return fmt.Errorf("%s must be less than or equal to %v", label, *field.Max)
		}
	}

	if field.MaxLength > 0 {
		if text, ok := value.(string); ok && utf8.RuneCountInString(text) > field.MaxLength {
			return fmt.Errorf("%s must be at most %d characters", label, field.MaxLength)
		}
	}

	if len(field.Choices) > 0 && (field.Type.IsSingleChoice() || field.Type == model.FieldTypeCheckbox) {
		allowed := make(map[string]struct{}, len(field.Choices))
		for _, choice := range field.Choices {
			allowed[choice.Value] = struct{}{}
		}
		for _, selected := range visibility.Strings(value) {
			if _, ok := allowed[selected]; !ok {
				return fmt.Errorf("%s has an invalid choice %q", label, selected)
			}
		}
	}
	return nil
}

// Chain runs validators in order and returns the first failure.
func Chain(validators ...Validator) Validator {
	return ValidatorFunc(func(value any, field model.FieldDefinition) error {
		for _, v := range validators {
			if v == nil {
				continue
			}
			if err := v.Validate(value, field); err != nil {
				return err
			}
		}
		return nil
	})
}

var errUnnamed = errors.New("validation failed")

func fieldLabel(field model.FieldDefinition) string {
	for _, candidate := range []string{field.Label, field.Name, field.Key} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return "Field"
}
