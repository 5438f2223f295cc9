package sampler

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Constant returns a Sampler whose draws come from s with the Volume field
// set to volume. It is the joint-sampling combinator: identity and spatial
// coordinates are drawn together, so every point knows which cube it
// belongs to.
func Constant(volume string, s Sampler) Sampler {
	return &taggedSampler{volume: volume, src: s}
}

type taggedSampler struct {
	volume string
	src    Sampler
}

func (t *taggedSampler) Sample(n int) ([]Point, error) {
	points, err := t.src.Sample(n)
	if err != nil {
		return nil, err
	}
	for i := range points {
		points[i].Volume = t.volume
	}
	return points, nil
}

// Weighted pairs a Sampler with its mixture weight.
type Weighted struct {
	Sampler Sampler
	Weight  float64
}

// Mixture returns a Sampler drawing from s1 with probability w1/(w1+w2) and
// from s2 otherwise. Weights are normalized internally; any finite
// non-negative weights with a positive sum are accepted, so a zero weight on
// one branch routes every draw to the other.
func Mixture(s1 Sampler, w1 float64, s2 Sampler, w2 float64, seed uint64) (Sampler, error) {
	return MixtureN([]Weighted{{s1, w1}, {s2, w2}}, seed)
}

// MixtureN generalizes Mixture to any number of branches. Mixing is
// associative: nesting mixtures and flattening them into one MixtureN call
// produce the same distribution.
func MixtureN(branches []Weighted, seed uint64) (Sampler, error) {
	if len(branches) == 0 {
		return nil, fmt.Errorf("%w: mixture needs at least one branch", ErrInvalidArgs)
	}
	weights := make([]float64, len(branches))
	samplers := make([]Sampler, len(branches))
	total := 0.0
	for i, b := range branches {
		if b.Sampler == nil {
			return nil, fmt.Errorf("%w: mixture branch %d has no sampler", ErrInvalidArgs, i)
		}
		if b.Weight < 0 {
			return nil, fmt.Errorf("%w: mixture weight %d is negative", ErrInvalidArgs, i)
		}
		weights[i] = b.Weight
		samplers[i] = b.Sampler
		total += b.Weight
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: mixture weights must have a positive sum", ErrInvalidArgs)
	}
	return &mixtureSampler{
		branches: samplers,
		cat:      distuv.NewCategorical(weights, rand.NewSource(seed)),
	}, nil
}

type mixtureSampler struct {
	branches []Sampler
	cat      distuv.Categorical
}

func (m *mixtureSampler) Sample(n int) ([]Point, error) {
	// Choose a branch per draw, then batch the draws per branch and place
	// them back in choice order.
	choice := make([]int, n)
	counts := make([]int, len(m.branches))
	for i := range choice {
		b := int(m.cat.Rand())
		choice[i] = b
		counts[b]++
	}

	drawn := make([][]Point, len(m.branches))
	for b, count := range counts {
		if count == 0 {
			continue
		}
		points, err := m.branches[b].Sample(count)
		if err != nil {
			return nil, err
		}
		drawn[b] = points
	}

	out := make([]Point, n)
	next := make([]int, len(m.branches))
	for i, b := range choice {
		out[i] = drawn[b][next[b]]
		next[b]++
	}
	return out, nil
}

// Truncate returns a Sampler whose support is the intersection of s's
// support and the slab [low, high] along the given axis. A slab without
// positive width fails with ErrInvalidRange here, at construction, never at
// draw time. Draws use rejection sampling with a bounded budget.
func Truncate(s Sampler, axis int, low, high float64) (Sampler, error) {
	if axis < 0 || axis > 2 {
		return nil, fmt.Errorf("%w: axis %d", ErrInvalidArgs, axis)
	}
	if high <= low {
		return nil, fmt.Errorf("%w: [%v, %v] on axis %d", ErrInvalidRange, low, high, axis)
	}
	return &truncatedSampler{src: s, axis: axis, low: low, high: high}, nil
}

// TruncateBox truncates along all three axes at once, the unit-cube clamp
// applied to every per-volume sampler before mixing.
func TruncateBox(s Sampler, low, high [3]float64) (Sampler, error) {
	out := s
	var err error
	for axis := 0; axis < 3; axis++ {
		out, err = Truncate(out, axis, low[axis], high[axis])
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

type truncatedSampler struct {
	src       Sampler
	axis      int
	low, high float64
}

// maxRejectionRounds bounds how many batches a truncated sampler will draw
// before giving up; each round over-draws, so the budget is only reachable
// when almost no mass lies inside the slab.
const maxRejectionRounds = 1000

func (t *truncatedSampler) Sample(n int) ([]Point, error) {
	if n == 0 {
		return []Point{}, nil
	}
	out := make([]Point, 0, n)
	for round := 0; round < maxRejectionRounds; round++ {
		want := (n - len(out)) * 4
		if want < 64 {
			want = 64
		}
		points, err := t.src.Sample(want)
		if err != nil {
			return nil, err
		}
		for _, p := range points {
			v := p.Coords[t.axis]
			if v < t.low || v > t.high {
				continue
			}
			out = append(out, p)
			if len(out) == n {
				return out, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: axis %d slab [%v, %v]", ErrDrawBudget, t.axis, t.low, t.high)
}

// Transform post-processes a batch of draws. It must be total over the
// sampler's coordinate space; an error aborts the draw.
type Transform func([]Point) ([]Point, error)

// Apply returns a Sampler whose raw draws pass through fn before leaving
// the sampler. A transform failure is surfaced to the caller wrapped in
// ErrTransform rather than skipped, since silently dropping or corrupting
// coordinates would poison the downstream crop stream.
func Apply(s Sampler, fn Transform) Sampler {
	return &appliedSampler{src: s, fn: fn}
}

type appliedSampler struct {
	src Sampler
	fn  Transform
}

func (a *appliedSampler) Sample(n int) ([]Point, error) {
	points, err := a.src.Sample(n)
	if err != nil {
		return nil, err
	}
	out, err := a.fn(points)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransform, err)
	}
	if len(out) != n {
		return nil, fmt.Errorf("%w: transform changed batch size from %d to %d", ErrTransform, n, len(out))
	}
	return out, nil
}
