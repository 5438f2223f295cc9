package sampler

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// uniformSampler draws independently and uniformly along each axis of the
// unit cube.
type uniformSampler struct {
	dist distuv.Uniform
}

// NewUniform returns a Sampler drawing uniformly from the unit cube [0,1)^3.
func NewUniform(seed uint64) Sampler {
	return &uniformSampler{
		dist: distuv.Uniform{Min: 0, Max: 1, Src: rand.NewSource(seed)},
	}
}

func (u *uniformSampler) Sample(n int) ([]Point, error) {
	points := make([]Point, n)
	for i := range points {
		points[i].Coords = [3]float64{u.dist.Rand(), u.dist.Rand(), u.dist.Rand()}
	}
	return points, nil
}
