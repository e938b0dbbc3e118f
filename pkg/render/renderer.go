package render

import (
	"context"
)

// FormRenderer produces the editing-form markup for a block. Implementations
// live under pkg/renderers.
type FormRenderer interface {
	Name() string
	RenderForm(ctx context.Context, req FormRequest) (string, error)
}

// Executor runs a block's template and returns the raw markup.
type Executor interface {
	Execute(ctx context.Context, req ExecuteRequest) (string, error)
}

// ExecutorFunc adapts a function into an Executor.
type ExecutorFunc func(ctx context.Context, req ExecuteRequest) (string, error)

// Execute calls the underlying function.
func (fn ExecutorFunc) Execute(ctx context.Context, req ExecuteRequest) (string, error) {
	return fn(ctx, req)
}
