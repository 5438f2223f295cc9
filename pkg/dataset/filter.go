package dataset

import (
	"fmt"
	"math"

	"seiscrop/pkg/geometry"
	"seiscrop/pkg/sampler"
)

// Filter is a reusable chain of transformations over a sampler's output
// stream. Steps are recorded by the chained configuration calls and
// composed, in a fixed order (truncate, decimate, rescale, post), when
// Apply builds the final sampler. Steps that need volume shapes look them
// up through the geometries the filter was built with.
type Filter struct {
	geoms map[string]*geometry.Geometry

	truncations []truncation
	decimations []decimation
	toCube      bool
	post        sampler.Transform
}

type truncation struct {
	axis      int
	low, high float64
}

type decimation struct {
	axis      int
	each      int
	eachStart int
}

// NewFilter builds an empty filter chain over the given volume shapes.
func NewFilter(geoms []*geometry.Geometry) *Filter {
	f := &Filter{geoms: make(map[string]*geometry.Geometry, len(geoms))}
	for _, g := range geoms {
		f.geoms[g.Name] = g
	}
	return f
}

// Truncate keeps only draws whose sampler-space coordinate along axis lies
// in [low, high]. Validation happens when Apply composes the sampler.
func (f *Filter) Truncate(axis int, low, high float64) *Filter {
	f.truncations = append(f.truncations, truncation{axis: axis, low: low, high: high})
	return f
}

// Decimate snaps draws, once expressed in absolute cube units along axis,
// to the arithmetic progression eachStart, eachStart+each, ... bounded by
// the volume extent, then rescales back to sampler space. Ties round to the
// lower tick. eachStart < 0 defaults to each, matching the convention of
// "every k-th line starting from line k".
func (f *Filter) Decimate(axis, each, eachStart int) *Filter {
	if eachStart < 0 {
		eachStart = each
	}
	f.decimations = append(f.decimations, decimation{axis: axis, each: each, eachStart: eachStart})
	return f
}

// ToCube rescales unit-interval coordinates to absolute integer cube
// indices per the drawn volume's shape. It is the last coordinate-space
// change in the chain; Post still runs after it.
func (f *Filter) ToCube() *Filter {
	f.toCube = true
	return f
}

// Post appends an arbitrary user transform applied to every batch after all
// other steps.
func (f *Filter) Post(fn sampler.Transform) *Filter {
	f.post = fn
	return f
}

// Apply composes the configured steps around s and returns the resulting
// sampler. Invalid truncation slabs and decimation steps fail here, before
// any draw happens.
func (f *Filter) Apply(s sampler.Sampler) (sampler.Sampler, error) {
	out := s
	var err error
	for _, tr := range f.truncations {
		out, err = sampler.Truncate(out, tr.axis, tr.low, tr.high)
		if err != nil {
			return nil, err
		}
	}
	for _, dec := range f.decimations {
		if dec.axis < 0 || dec.axis > 2 {
			return nil, fmt.Errorf("dataset: decimation axis %d out of range", dec.axis)
		}
		if dec.each <= 0 {
			return nil, fmt.Errorf("dataset: decimation step must be positive, got %d", dec.each)
		}
		for _, g := range f.geoms {
			if dec.eachStart >= g.Shape()[dec.axis] {
				return nil, fmt.Errorf("dataset: decimation origin %d outside volume %q extent %d on axis %d",
					dec.eachStart, g.Name, g.Shape()[dec.axis], dec.axis)
			}
		}
		out = sampler.Apply(out, f.decimateTransform(dec))
	}
	if f.toCube {
		out = sampler.Apply(out, f.toCubeTransform())
	}
	if f.post != nil {
		out = sampler.Apply(out, f.post)
	}
	return out, nil
}

// shape resolves the drawn point's volume to its extents.
func (f *Filter) shape(p sampler.Point) ([3]int, error) {
	g, ok := f.geoms[p.Volume]
	if !ok {
		return [3]int{}, fmt.Errorf("dataset: point for unknown volume %q", p.Volume)
	}
	return g.Shape(), nil
}

func (f *Filter) decimateTransform(dec decimation) sampler.Transform {
	return func(points []sampler.Point) ([]sampler.Point, error) {
		for i := range points {
			shape, err := f.shape(points[i])
			if err != nil {
				return nil, err
			}
			extent := shape[dec.axis]
			abs := math.Round(points[i].Coords[dec.axis] * float64(extent))
			snapped := snapToTicks(abs, dec.each, dec.eachStart, extent)
			points[i].Coords[dec.axis] = snapped / float64(extent)
		}
		return points, nil
	}
}

// snapToTicks returns the tick of eachStart, eachStart+each, ... (bounded by
// extent) nearest to v, ties going to the lower tick. Apply guarantees
// eachStart < extent, so at least one tick fits.
func snapToTicks(v float64, each, eachStart, extent int) float64 {
	last := (extent - 1 - eachStart) / each
	idx := int(math.Floor((v - float64(eachStart)) / float64(each)))
	if idx < 0 {
		idx = 0
	}
	if idx > last {
		idx = last
	}
	lower := float64(eachStart + idx*each)
	if idx == last {
		return lower
	}
	upper := lower + float64(each)
	// Ties round to the lower tick.
	if upper-v < v-lower {
		return upper
	}
	return lower
}

func (f *Filter) toCubeTransform() sampler.Transform {
	return func(points []sampler.Point) ([]sampler.Point, error) {
		for i := range points {
			shape, err := f.shape(points[i])
			if err != nil {
				return nil, err
			}
			for axis := 0; axis < 3; axis++ {
				idx := math.Round(points[i].Coords[axis] * float64(shape[axis]))
				if idx > float64(shape[axis]-1) {
					idx = float64(shape[axis] - 1)
				}
				points[i].Coords[axis] = idx
			}
		}
		return points, nil
	}
}
