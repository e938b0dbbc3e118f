package model

// FieldType tags the input kind of a field definition. The catalog of widgets
// lives outside this module; the engine only needs enough of the taxonomy to
// classify scalar, choice, and container fields.
type FieldType string

const (
	FieldTypeText            FieldType = "text"
	FieldTypeTextarea        FieldType = "textarea"
	FieldTypeEmail           FieldType = "email"
	FieldTypeURL             FieldType = "url"
	FieldTypeNumber          FieldType = "number"
	FieldTypeWYSIWYG         FieldType = "wysiwyg"
	FieldTypeImage           FieldType = "image"
	FieldTypeLink            FieldType = "link"
	FieldTypeSelect          FieldType = "select"
	FieldTypeRadio           FieldType = "radio"
	FieldTypeButtonGroup     FieldType = "button_group"
	FieldTypeCheckbox        FieldType = "checkbox"
	FieldTypeTrueFalse       FieldType = "true_false"
	FieldTypeDatePicker      FieldType = "date_picker"
	FieldTypeRelationship    FieldType = "relationship"
	FieldTypeTaxonomy        FieldType = "taxonomy"
	FieldTypeGroup           FieldType = "group"
	FieldTypeRepeater        FieldType = "repeater"
	FieldTypeFlexibleContent FieldType = "flexible_content"
)

// IsContainer reports whether fields of this type hold sub fields.
func (t FieldType) IsContainer() bool {
	switch t {
	case FieldTypeGroup, FieldTypeRepeater, FieldTypeFlexibleContent:
		return true
	default:
		return false
	}
}

// IsSingleChoice reports whether the UI renders a single-select control that
// picks its first choice when no "none" option is offered.
func (t FieldType) IsSingleChoice() bool {
	switch t {
	case FieldTypeRadio, FieldTypeButtonGroup, FieldTypeSelect:
		return true
	default:
		return false
	}
}

// Rendering modes requested by the block editor.
const (
	ModeAuto    = "auto"
	ModeEdit    = "edit"
	ModePreview = "preview"
)

// Condition operators understood by the rule-group evaluator.
const (
	OperatorEquals      = "=="
	OperatorNotEquals   = "!="
	OperatorEmpty       = "==empty"
	OperatorNotEmpty    = "!=empty"
	OperatorContains    = "==contains"
	OperatorPattern     = "==pattern"
	OperatorGreaterThan = ">"
	OperatorLessThan    = "<"
)

// Condition compares the current value of another field against Value.
type Condition struct {
	Field    string `json:"field" yaml:"field"`
	Operator string `json:"operator" yaml:"operator"`
	Value    any    `json:"value,omitempty" yaml:"value,omitempty"`
}

// ConditionalLogic is a disjunction of condition groups; every condition
// inside a group must hold for the group to pass.
type ConditionalLogic [][]Condition

// Active reports whether at least one condition is configured.
func (c ConditionalLogic) Active() bool {
	for _, group := range c {
		if len(group) > 0 {
			return true
		}
	}
	return false
}

// Choice is a selectable option for choice fields.
type Choice struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// FieldDefinition describes a single field slot belonging to a block type.
// Definitions are read-only to the engine.
type FieldDefinition struct {
	Key              string            `json:"key" yaml:"key"`
	Name             string            `json:"name" yaml:"name"`
	Label            string            `json:"label,omitempty" yaml:"label,omitempty"`
	Type             FieldType         `json:"type" yaml:"type"`
	Default          any               `json:"default,omitempty" yaml:"default,omitempty"`
	Required         bool              `json:"required,omitempty" yaml:"required,omitempty"`
	Placeholder      string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Instructions     string            `json:"instructions,omitempty" yaml:"instructions,omitempty"`
	ConditionalLogic ConditionalLogic  `json:"conditional_logic,omitempty" yaml:"conditional_logic,omitempty"`
	Expression       string            `json:"expression,omitempty" yaml:"expression,omitempty"`
	Parent           string            `json:"parent,omitempty" yaml:"parent,omitempty"`
	Choices          []Choice          `json:"choices,omitempty" yaml:"choices,omitempty"`
	AllowNull        bool              `json:"allow_null,omitempty" yaml:"allow_null,omitempty"`
	Multiple         bool              `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	MaxLength        int               `json:"maxlength,omitempty" yaml:"maxlength,omitempty"`
	Min              *float64          `json:"min,omitempty" yaml:"min,omitempty"`
	Max              *float64          `json:"max,omitempty" yaml:"max,omitempty"`
	SubFields        []FieldDefinition `json:"sub_fields,omitempty" yaml:"sub_fields,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// HasConditions reports whether visibility of the field depends on other
// values, either via rule groups or an expression.
func (f FieldDefinition) HasConditions() bool {
	return f.ConditionalLogic.Active() || f.Expression != ""
}

// BlockType is a registered block: its template and the fields it exposes.
type BlockType struct {
	Name              string            `json:"name" yaml:"name"`
	Title             string            `json:"title,omitempty" yaml:"title,omitempty"`
	Template          string            `json:"template" yaml:"template"`
	Fields            []FieldDefinition `json:"fields" yaml:"fields"`
	UseDurableStorage bool              `json:"use_durable_storage,omitempty" yaml:"use_durable_storage,omitempty"`
	ValidateOnLoad    bool              `json:"validate_on_load,omitempty" yaml:"validate_on_load,omitempty"`
	// WrapInner wraps nested content in a container element on the display
	// path. Nil means true.
	WrapInner     *bool `json:"wrap_inner,omitempty" yaml:"wrap_inner,omitempty"`
	InlineEditing bool  `json:"inline_editing,omitempty" yaml:"inline_editing,omitempty"`
}

// WrapsInner resolves the WrapInner default.
func (b BlockType) WrapsInner() bool {
	return b.WrapInner == nil || *b.WrapInner
}

// Descriptor is a block occurrence as sent by the editing client or found in
// serialized content.
type Descriptor struct {
	TypeName          string         `json:"type_name"`
	ID                string         `json:"id,omitempty"`
	Attributes        map[string]any `json:"attributes,omitempty"`
	Data              map[string]any `json:"data,omitempty"`
	Context           map[string]any `json:"context,omitempty"`
	Mode              string         `json:"mode,omitempty"`
	Validate          bool           `json:"validate,omitempty"`
	ValidateOnLoad    bool           `json:"validate_on_load,omitempty"`
	UseDurableStorage bool           `json:"use_durable_storage,omitempty"`
	InnerBlocks       []Descriptor   `json:"inner_blocks,omitempty"`
}

// FieldError is a single validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult is the outcome of evaluating a block's values.
type ValidationResult struct {
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors"`
}

// ValidResult returns a passing result with an empty, non-nil error list.
func ValidResult() ValidationResult {
	return ValidationResult{Valid: true, Errors: []FieldError{}}
}
