package sampler

import "errors"

// Sentinel errors for sampler construction and draws.
var (
	// ErrInvalidRange indicates a truncation slab with zero or negative
	// width, or bounds outside the sampler's coordinate space. Raised at
	// construction time, never mid-draw.
	ErrInvalidRange = errors.New("sampler: truncation range must have positive width inside [0, 1]")
	// ErrInvalidArgs indicates bad constructor input (no points, bad bins,
	// non-positive weights).
	ErrInvalidArgs = errors.New("sampler: invalid constructor arguments")
	// ErrTransform wraps a failure of a user transform passed to Apply.
	// Surfaced at draw time so a corrupted coordinate stream is never
	// silently produced.
	ErrTransform = errors.New("sampler: transform failed")
	// ErrDrawBudget indicates a truncated sampler exhausted its rejection
	// budget, which happens only when the wrapped support barely intersects
	// the requested slab.
	ErrDrawBudget = errors.New("sampler: rejection budget exhausted while drawing from truncated support")
)
