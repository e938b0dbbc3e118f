// Package expr evaluates free-form visibility expressions with
// github.com/expr-lang/expr. Expressions see the block values under
// "values" (and each value by its key at the root) plus host data under
// "extras".
package expr

import (
	"fmt"
	"strings"
	"sync"

	exprlang "github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/goliatone/go-fieldblocks/pkg/model"
	"github.com/goliatone/go-fieldblocks/pkg/visibility"
)

// Evaluator compiles each expression once and reuses the program.
type Evaluator struct {
	mu       sync.RWMutex
	programs map[string]*vm.Program
}

// New constructs an expression evaluator.
func New() *Evaluator {
	return &Evaluator{programs: make(map[string]*vm.Program)}
}

var _ visibility.Evaluator = (*Evaluator)(nil)

// Visible implements visibility.Evaluator. An empty expression is visible.
func (e *Evaluator) Visible(field model.FieldDefinition, ctx visibility.Context) (bool, error) {
	expression := strings.TrimSpace(field.Expression)
	if expression == "" {
		return true, nil
	}
	program, err := e.compile(expression)
	if err != nil {
		return false, fmt.Errorf("visibility/expr: field %q: %w", field.Key, err)
	}
	result, err := exprlang.Run(program, environment(ctx))
	if err != nil {
		return false, fmt.Errorf("visibility/expr: field %q: %w", field.Key, err)
	}
	return visibility.Truthy(result), nil
}

func (e *Evaluator) compile(expression string) (*vm.Program, error) {
	e.mu.RLock()
	program, ok := e.programs[expression]
	e.mu.RUnlock()
	if ok {
		return program, nil
	}

	program, err := exprlang.Compile(expression, exprlang.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.programs[expression] = program
	e.mu.Unlock()
	return program, nil
}

func environment(ctx visibility.Context) map[string]any {
	env := make(map[string]any, len(ctx.Values)+2)
	for key, value := range ctx.Values {
		env[key] = value
	}
	values := ctx.Values
	if values == nil {
		values = map[string]any{}
	}
	extras := ctx.Extras
	if extras == nil {
		extras = map[string]any{}
	}
	env["values"] = values
	env["extras"] = extras
	return env
}
