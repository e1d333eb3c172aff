// Package domain contains the core template style-analysis engine and logic.
package domain

// Block is one reusable style namespace referenced by a template. The block
// object model is owned by the caller; the engine only borrows handles.
//
// Implementations must be pointer types: the engine compares blocks and
// styles by reference identity, never structurally. Two handles collapse
// into one entry only when they are the same underlying instance.
type Block interface {
	// Source returns a stable source-identity string for the block.
	Source() string

	// TransitiveDependencies reports every block this block depends on,
	// directly or indirectly. The reported set is already transitive.
	TransitiveDependencies() []Block
}

// Style is one addressable style construct belonging to exactly one block.
// Like Block, implementations must be pointer types.
type Style interface {
	// Block returns the owning block.
	Block() Block

	// Fragment returns the style's stable source fragment, e.g. ".root".
	Fragment() string
}
