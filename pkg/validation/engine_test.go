package validation_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-fieldblocks/pkg/model"
	"github.com/goliatone/go-fieldblocks/pkg/validation"
	"github.com/goliatone/go-fieldblocks/pkg/visibility/rules"
)

type countingValidator struct {
	calls int
	inner validation.Validator
}

func (c *countingValidator) Validate(value any, field model.FieldDefinition) error {
	c.calls++
	return c.inner.Validate(value, field)
}

func titleField() model.FieldDefinition {
	return model.FieldDefinition{Key: "field_title", Name: "title", Label: "Title", Type: model.FieldTypeText, Required: true}
}

func TestEngine_SkipsFirstLoadWithoutValidateOnLoad(t *testing.T) {
	counter := &countingValidator{inner: validation.DefaultValidator{}}
	engine := validation.NewEngine(validation.WithValidator(counter))

	outcome := engine.Evaluate(validation.Input{
		Fields:    []model.FieldDefinition{titleField()},
		FirstLoad: true,
	})

	if outcome.Path != validation.PathSkip {
		t.Fatalf("expected skip path, got %q", outcome.Path)
	}
	if diff := cmp.Diff(model.ValidResult(), outcome.Result); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
	if counter.calls != 0 {
		t.Fatalf("expected validator not to be called, got %d calls", counter.calls)
	}
}

func TestEngine_StoredRequiredEmptyProducesOneError(t *testing.T) {
	engine := validation.NewEngine()

	outcome := engine.Evaluate(validation.Input{
		Fields: []model.FieldDefinition{titleField()},
		Values: map[string]any{"field_title": ""},
	})

	want := model.ValidationResult{
		Valid:  false,
		Errors: []model.FieldError{{Field: "field_title", Message: "Title value is required"}},
	}
	if outcome.Path != validation.PathStored {
		t.Fatalf("expected stored path, got %q", outcome.Path)
	}
	if diff := cmp.Diff(want, outcome.Result); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_StoredSkipsNestedFields(t *testing.T) {
	engine := validation.NewEngine()

	fields := []model.FieldDefinition{
		{Key: "field_items", Label: "Items", Type: model.FieldTypeRepeater},
		{Key: "field_item_title", Label: "Item title", Type: model.FieldTypeText, Required: true, Parent: "field_items"},
	}
	outcome := engine.Evaluate(validation.Input{
		Fields: fields,
		Values: map[string]any{"field_items": []any{map[string]any{}}},
	})

	if diff := cmp.Diff(model.ValidResult(), outcome.Result); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_DefaultsPathExclusions(t *testing.T) {
	engine := validation.NewEngine()

	fields := []model.FieldDefinition{
		titleField(),
		{Key: "field_cta", Label: "CTA", Type: model.FieldTypeText, Required: true, ConditionalLogic: model.ConditionalLogic{{{Field: "field_show", Operator: model.OperatorEquals, Value: "1"}}}},
		{Key: "field_heading", Label: "Heading", Type: model.FieldTypeText, Required: true, Default: "Welcome"},
		{Key: "field_style", Label: "Style", Type: model.FieldTypeRadio, Required: true, Choices: []model.Choice{{Value: "a", Label: "A"}}},
		{Key: "field_size", Label: "Size", Type: model.FieldTypeSelect, Required: true, AllowNull: true, Choices: []model.Choice{{Value: "s", Label: "S"}}},
	}

	outcome := engine.Evaluate(validation.Input{
		Fields:         fields,
		FirstLoad:      true,
		ValidateOnLoad: true,
	})

	want := model.ValidationResult{
		Valid: false,
		Errors: []model.FieldError{
			{Field: "field_title", Message: "Title value is required"},
			{Field: "field_size", Message: "Size value is required"},
		},
	}
	if outcome.Path != validation.PathDefaults {
		t.Fatalf("expected defaults path, got %q", outcome.Path)
	}
	if diff := cmp.Diff(want, outcome.Result); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_SubmittedValidatesPostedValuesOnly(t *testing.T) {
	engine := validation.NewEngine()

	fields := []model.FieldDefinition{
		titleField(),
		{Key: "field_email", Label: "Email", Type: model.FieldTypeEmail, Required: true},
	}
	outcome := engine.Evaluate(validation.Input{
		Fields:    fields,
		Values:    map[string]any{"field_title": ""},
		Submitted: map[string]any{"field_email": "not-an-email"},
	})

	want := model.ValidationResult{
		Valid:  false,
		Errors: []model.FieldError{{Field: "field_email", Message: "Email must be a valid email address"}},
	}
	if outcome.Path != validation.PathSubmitted {
		t.Fatalf("expected submitted path, got %q", outcome.Path)
	}
	if diff := cmp.Diff(want, outcome.Result); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_HiddenFieldsSkipped(t *testing.T) {
	engine := validation.NewEngine(validation.WithVisibility(rules.New()))

	fields := []model.FieldDefinition{
		{Key: "field_show", Label: "Show", Type: model.FieldTypeTrueFalse},
		{Key: "field_cta", Label: "CTA", Type: model.FieldTypeText, Required: true, ConditionalLogic: model.ConditionalLogic{{{Field: "field_show", Operator: model.OperatorEquals, Value: "1"}}}},
	}

	hidden := engine.Evaluate(validation.Input{Fields: fields, Values: map[string]any{"field_show": false}})
	if diff := cmp.Diff(model.ValidResult(), hidden.Result); diff != "" {
		t.Fatalf("hidden result mismatch (-want +got):\n%s", diff)
	}

	shown := engine.Evaluate(validation.Input{Fields: fields, Values: map[string]any{"field_show": true}})
	want := model.ValidationResult{
		Valid:  false,
		Errors: []model.FieldError{{Field: "field_cta", Message: "CTA value is required"}},
	}
	if diff := cmp.Diff(want, shown.Result); diff != "" {
		t.Fatalf("shown result mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_FirstLoadWithValuesUsesStored(t *testing.T) {
	engine := validation.NewEngine()
	in := validation.Input{
		Fields:         []model.FieldDefinition{titleField()},
		Values:         map[string]any{"field_title": "Hello"},
		FirstLoad:      true,
		ValidateOnLoad: true,
	}
	if got := engine.Select(in); got != validation.PathStored {
		t.Fatalf("expected stored path, got %q", got)
	}
}
