// Package model defines the data shared across the block engine: field
// definitions and their conditional logic, registered block types, block
// descriptors as they travel over the wire, and validation results.
//
// Field definitions come from the host's field registry and are never mutated
// by the engine. Descriptors are owned by a single render request; once an
// identity has been resolved for a descriptor callers should treat it as
// immutable so the id keeps describing its content.
package model
