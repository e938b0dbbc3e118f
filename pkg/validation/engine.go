// Package validation computes the validity of a block's current values.
//
// The Engine picks one of four evaluation paths per request: skipping
// validation on first loads that did not opt in, validating a submitted
// payload, validating synthesised defaults on a first preview, or validating
// the stored values. Validation failures are data: the engine always returns
// a result and never an error.
package validation

import (
	"strings"

	"github.com/goliatone/go-fieldblocks/pkg/model"
	"github.com/goliatone/go-fieldblocks/pkg/visibility"
)

// Path identifies the evaluation path the engine selected.
type Path string

const (
	PathSkip      Path = "skip"
	PathSubmitted Path = "submitted"
	PathDefaults  Path = "defaults"
	PathStored    Path = "stored"
)

// Input is everything the engine needs for one block.
type Input struct {
	Fields []model.FieldDefinition
	// Values are the block's loaded values keyed by field key.
	Values map[string]any
	// Submitted is an explicit posted payload. A non-nil map selects the
	// submitted path.
	Submitted map[string]any
	// FirstLoad marks the initial render of a block in the editor.
	FirstLoad      bool
	ValidateOnLoad bool
	// Extras feeds conditional logic with host context.
	Extras map[string]any
}

// Outcome pairs the result with the selected path.
type Outcome struct {
	Path   Path
	Result model.ValidationResult
}

// Option configures an Engine.
type Option func(*Engine)

// WithValidator overrides the value validator.
func WithValidator(v Validator) Option {
	return func(e *Engine) {
		if v != nil {
			e.validator = v
		}
	}
}

// WithVisibility sets the evaluator used to skip hidden fields when
// validating submitted and stored values.
func WithVisibility(evaluator visibility.Evaluator) Option {
	return func(e *Engine) {
		e.visibility = evaluator
	}
}

// Engine evaluates block values.
type Engine struct {
	validator  Validator
	visibility visibility.Evaluator
}

// NewEngine constructs an Engine; the DefaultValidator is used unless
// overridden.
func NewEngine(options ...Option) *Engine {
	e := &Engine{validator: DefaultValidator{}}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Visibility returns the evaluator used to skip hidden fields, or nil.
func (e *Engine) Visibility() visibility.Evaluator {
	return e.visibility
}

// Select returns the path Evaluate would take for in.
func (e *Engine) Select(in Input) Path {
	switch {
	case in.FirstLoad && !in.ValidateOnLoad:
		return PathSkip
	case in.Submitted != nil:
		return PathSubmitted
	case in.FirstLoad && !hasValues(in.Values):
		return PathDefaults
	default:
		return PathStored
	}
}

// Evaluate validates in along the selected path.
func (e *Engine) Evaluate(in Input) Outcome {
	path := e.Select(in)
	var errs []model.FieldError

	switch path {
	case PathSkip:
	case PathSubmitted:
		errs = e.fromSubmitted(in)
	case PathDefaults:
		errs = e.fromDefaults(in)
	case PathStored:
		errs = e.fromStored(in)
	}

	result := model.ValidResult()
	if len(errs) > 0 {
		result.Valid = false
		result.Errors = errs
	}
	return Outcome{Path: path, Result: result}
}

func (e *Engine) fromSubmitted(in Input) []model.FieldError {
	var errs []model.FieldError
	for _, field := range flatten(in.Fields) {
		value, ok := in.Submitted[field.Key]
		if !ok {
			continue
		}
		if e.hidden(field, in.Submitted, in.Extras) {
			continue
		}
		errs = e.check(errs, value, field)
	}
	return errs
}

// fromDefaults validates synthesised defaults, leaving out fields whose
// state at render time cannot be known yet or will be filled in by the UI.
func (e *Engine) fromDefaults(in Input) []model.FieldError {
	var errs []model.FieldError
	for _, field := range in.Fields {
		if field.Parent != "" {
			continue
		}
		if field.HasConditions() {
			continue
		}
		if !visibility.IsEmpty(field.Default) {
			continue
		}
		if field.Type.IsSingleChoice() && !field.AllowNull && len(field.Choices) > 0 {
			continue
		}
		errs = e.check(errs, field.Default, field)
	}
	return errs
}

// fromStored validates loaded values. Fields nested in containers are not
// validated individually.
func (e *Engine) fromStored(in Input) []model.FieldError {
	var errs []model.FieldError
	for _, field := range in.Fields {
		if field.Parent != "" {
			continue
		}
		if e.hidden(field, in.Values, in.Extras) {
			continue
		}
		errs = e.check(errs, in.Values[field.Key], field)
	}
	return errs
}

func (e *Engine) check(errs []model.FieldError, value any, field model.FieldDefinition) []model.FieldError {
	err := e.validator.Validate(value, field)
	if err == nil {
		return errs
	}
	message := strings.TrimSpace(err.Error())
	if message == "" {
		message = errUnnamed.Error()
	}
	return append(errs, model.FieldError{Field: field.Key, Message: message})
}

func (e *Engine) hidden(field model.FieldDefinition, values, extras map[string]any) bool {
	if e.visibility == nil || !field.HasConditions() {
		return false
	}
	visible, err := e.visibility.Visible(field, visibility.Context{Values: values, Extras: extras})
	if err != nil {
		// A rule that cannot be evaluated leaves the field in scope.
		return false
	}
	return !visible
}

func hasValues(values map[string]any) bool {
	for _, value := range values {
		if !visibility.IsEmpty(value) {
			return true
		}
	}
	return false
}

func flatten(fields []model.FieldDefinition) []model.FieldDefinition {
	out := make([]model.FieldDefinition, 0, len(fields))
	for _, field := range fields {
		out = append(out, field)
		if len(field.SubFields) > 0 {
			out = append(out, flatten(field.SubFields)...)
		}
	}
	return out
}
