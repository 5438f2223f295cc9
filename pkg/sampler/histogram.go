package sampler

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// histogramSampler draws from the empirical distribution of a set of label
// points: a categorical distribution over occupied histogram bins, with
// uniform jitter inside the chosen bin so draws are continuous.
type histogramSampler struct {
	bins   [3]int
	cat    distuv.Categorical
	jitter distuv.Uniform
}

// NewHistogram builds a Sampler from unit-cube label positions binned at the
// given per-axis resolution. At least one point and positive bin counts are
// required; points outside the unit cube are clamped into it.
func NewHistogram(points [][3]float64, bins [3]int, seed uint64) (Sampler, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: histogram needs at least one point", ErrInvalidArgs)
	}
	for axis, b := range bins {
		if b <= 0 {
			return nil, fmt.Errorf("%w: bins along axis %d must be positive, got %d", ErrInvalidArgs, axis, b)
		}
	}

	weights := make([]float64, bins[0]*bins[1]*bins[2])
	for _, p := range points {
		var idx [3]int
		for axis := 0; axis < 3; axis++ {
			b := int(clamp01(p[axis]) * float64(bins[axis]))
			if b == bins[axis] {
				b--
			}
			idx[axis] = b
		}
		weights[(idx[0]*bins[1]+idx[1])*bins[2]+idx[2]]++
	}

	src := rand.NewSource(seed)
	return &histogramSampler{
		bins:   bins,
		cat:    distuv.NewCategorical(weights, src),
		jitter: distuv.Uniform{Min: 0, Max: 1, Src: src},
	}, nil
}

func (h *histogramSampler) Sample(n int) ([]Point, error) {
	points := make([]Point, n)
	for i := range points {
		flat := int(h.cat.Rand())
		b0 := flat / (h.bins[1] * h.bins[2])
		b1 := (flat / h.bins[2]) % h.bins[1]
		b2 := flat % h.bins[2]
		points[i].Coords = [3]float64{
			(float64(b0) + h.jitter.Rand()) / float64(h.bins[0]),
			(float64(b1) + h.jitter.Rand()) / float64(h.bins[1]),
			(float64(b2) + h.jitter.Rand()) / float64(h.bins[2]),
		}
	}
	return points, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
