// Package sampler implements a composable probabilistic sampler algebra over
// 3D points. Leaf samplers draw from the unit cube; combinators build
// weighted mixtures, truncate supports to axis-aligned slabs, tag draws with
// a volume identity, and post-process draws with arbitrary transforms. Every
// combinator returns a new immutable Sampler value and never mutates its
// operands, so composed samplers can be shared freely by readers.
package sampler

// Point is one sampled coordinate triple tagged with the volume it belongs
// to. Coordinates are in sampler space (the unit interval per axis) until a
// downstream stage rescales them to absolute cube indices; which space a
// Point is in is fixed by the pipeline stage that produced it.
type Point struct {
	// Volume names the cube this point was drawn for. Empty until a
	// Constant tag is applied.
	Volume string

	// Coords holds the position along axes 0, 1 and 2.
	Coords [3]float64
}

// Sampler is an opaque distribution over Points restricted to a bounded box.
// Sample returns exactly n points on success; n = 0 yields an empty slice
// and never an error. Draws are not re-entrant: a Sampler owns its random
// source, so concurrent callers must build independent samplers.
type Sampler interface {
	Sample(n int) ([]Point, error)
}

// Kind selects a leaf sampler constructor. It replaces mode-string dispatch:
// the variant is resolved once at configuration time.
type Kind int

const (
	// KindUniform draws uniformly from the unit cube.
	KindUniform Kind = iota
	// KindHistogram draws from an empirical histogram of label points.
	KindHistogram
	// KindCustom uses a caller-provided Sampler drawing from the unit cube.
	KindCustom
)

// String names the kind for logs and config round-trips.
func (k Kind) String() string {
	switch k {
	case KindUniform:
		return "uniform"
	case KindHistogram:
		return "histogram"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Spec describes how to build one volume's leaf sampler. Exactly the fields
// relevant to Kind are consulted.
type Spec struct {
	Kind Kind

	// Points holds unit-cube label positions for KindHistogram.
	Points [][3]float64

	// Bins is the histogram resolution per axis for KindHistogram.
	Bins [3]int

	// Custom supplies the sampler for KindCustom. It must generate points
	// from the unit cube.
	Custom Sampler
}

// Build resolves the spec into a Sampler seeded from seed.
func (sp Spec) Build(seed uint64) (Sampler, error) {
	switch sp.Kind {
	case KindUniform:
		return NewUniform(seed), nil
	case KindHistogram:
		return NewHistogram(sp.Points, sp.Bins, seed)
	case KindCustom:
		if sp.Custom == nil {
			return nil, ErrInvalidArgs
		}
		return sp.Custom, nil
	default:
		return nil, ErrInvalidArgs
	}
}
