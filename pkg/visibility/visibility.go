// Package visibility decides whether a field is currently shown, based on its
// conditional logic and the values of other fields.
package visibility

import (
	"github.com/goliatone/go-fieldblocks/pkg/model"
)

// Evaluator determines whether a field should be visible given the current
// values of the block.
type Evaluator interface {
	Visible(field model.FieldDefinition, ctx Context) (bool, error)
}

// Context provides inputs to an Evaluator. Values holds the block's current
// values keyed by field key; Extras carries host data such as the owner
// record's context.
type Context struct {
	Values map[string]any
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(field model.FieldDefinition, ctx Context) (bool, error)

// Visible delegates to the underlying function.
func (fn EvaluatorFunc) Visible(field model.FieldDefinition, ctx Context) (bool, error) {
	return fn(field, ctx)
}

// All combines evaluators; a field is visible only when every evaluator
// agrees. Nil evaluators are skipped.
func All(evaluators ...Evaluator) Evaluator {
	return EvaluatorFunc(func(field model.FieldDefinition, ctx Context) (bool, error) {
		for _, evaluator := range evaluators {
			if evaluator == nil {
				continue
			}
			ok, err := evaluator.Visible(field, ctx)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	})
}
