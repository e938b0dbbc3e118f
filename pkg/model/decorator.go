package model

// Decorator enriches a block type after it has been loaded but before it is
// registered, e.g. to derive field keys or nesting markers.
type Decorator interface {
	Decorate(*BlockType) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*BlockType) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(block *BlockType) error {
	return fn(block)
}
