// Package rules evaluates structured conditional logic: a field is shown
// when any of its condition groups passes, and a group passes when all of
// its conditions hold.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-fieldblocks/pkg/model"
	"github.com/goliatone/go-fieldblocks/pkg/visibility"
)

// Evaluator implements visibility.Evaluator for model.ConditionalLogic.
type Evaluator struct{}

// New returns a rule-group evaluator.
func New() *Evaluator { return &Evaluator{} }

var _ visibility.Evaluator = (*Evaluator)(nil)

// Visible implements visibility.Evaluator. Fields without active logic are
// always visible.
func (e *Evaluator) Visible(field model.FieldDefinition, ctx visibility.Context) (bool, error) {
	if !field.ConditionalLogic.Active() {
		return true, nil
	}
	for _, group := range field.ConditionalLogic {
		if len(group) == 0 {
			continue
		}
		ok, err := evalGroup(group, ctx)
		if err != nil {
			return false, fmt.Errorf("visibility/rules: field %q: %w", field.Key, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func evalGroup(group []model.Condition, ctx visibility.Context) (bool, error) {
	for _, cond := range group {
		ok, err := evalCondition(cond, ctx)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func evalCondition(cond model.Condition, ctx visibility.Context) (bool, error) {
	value, _ := visibility.Lookup(ctx, cond.Field)
	want := visibility.String(cond.Value)

	switch strings.TrimSpace(cond.Operator) {
	case model.OperatorEquals, "":
		return matchesAny(value, want), nil
	case model.OperatorNotEquals:
		return !matchesAny(value, want), nil
	case model.OperatorEmpty:
		return visibility.IsEmpty(value), nil
	case model.OperatorNotEmpty:
		return !visibility.IsEmpty(value), nil
	case model.OperatorContains:
		return strings.Contains(visibility.String(value), want), nil
	case model.OperatorPattern:
		re, err := regexp.Compile(want)
		if err != nil {
			return false, fmt.Errorf("invalid pattern %q: %w", want, err)
		}
		return re.MatchString(visibility.String(value)), nil
	case model.OperatorGreaterThan, model.OperatorLessThan:
		got, ok := visibility.Number(value)
		if !ok {
			return false, nil
		}
		limit, ok := visibility.Number(cond.Value)
		if !ok {
			return false, fmt.Errorf("operator %q needs a numeric value, got %q", cond.Operator, want)
		}
		if cond.Operator == model.OperatorGreaterThan {
			return got > limit, nil
		}
		return got < limit, nil
	default:
		return false, fmt.Errorf("unsupported operator %q", cond.Operator)
	}
}

// matchesAny compares scalars directly and checks membership for lists, so
// "== red" holds for a checkbox whose selection includes red.
func matchesAny(value any, want string) bool {
	for _, item := range visibility.Strings(value) {
		if item == want {
			return true
		}
	}
	return false
}
