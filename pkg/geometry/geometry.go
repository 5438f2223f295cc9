// Package geometry holds per-volume shape metadata for seismic cubes.
// A Geometry describes the integer extents of one volume along with its
// empty-trace mask; a Surface describes a partially known labeled horizon
// over the lateral plane. Both are plain records supplied by external
// loaders: this package performs no file I/O and never reads trace values.
package geometry

import (
	"fmt"
)

// Axis indices used throughout the module. Axes 0 and 1 span the lateral
// plane (inlines and crosslines); axis 2 is depth.
const (
	AxisInline = 0
	AxisXline  = 1
	AxisDepth  = 2
)

// Geometry is the immutable shape record for one volume.
type Geometry struct {
	// Name identifies the volume in sampled points and batch metadata.
	Name string

	// Extents holds the integer length of the volume along each axis.
	Extents [3]int

	// zeroTraces marks (inline, xline) positions that carry no data.
	// Row-major over the lateral plane; nil means every trace is live.
	zeroTraces []bool
}

// New validates and builds a Geometry. The zeroTraces mask may be nil;
// when present its length must equal extents[0]*extents[1]. The mask is
// copied so the caller cannot mutate the geometry afterwards.
func New(name string, extents [3]int, zeroTraces []bool) (*Geometry, error) {
	if name == "" {
		return nil, fmt.Errorf("geometry: volume name must not be empty")
	}
	for axis, n := range extents {
		if n <= 0 {
			return nil, fmt.Errorf("geometry: extent along axis %d must be positive, got %d", axis, n)
		}
	}
	g := &Geometry{Name: name, Extents: extents}
	if zeroTraces != nil {
		want := extents[0] * extents[1]
		if len(zeroTraces) != want {
			return nil, fmt.Errorf("geometry: zero-trace mask has %d cells, lateral plane has %d",
				len(zeroTraces), want)
		}
		g.zeroTraces = make([]bool, want)
		copy(g.zeroTraces, zeroTraces)
	}
	return g, nil
}

// Shape returns the extents triple.
func (g *Geometry) Shape() [3]int {
	return g.Extents
}

// InBounds reports whether the lateral position (i, x) lies inside the volume.
func (g *Geometry) InBounds(i, x int) bool {
	return i >= 0 && i < g.Extents[0] && x >= 0 && x < g.Extents[1]
}

// IsZeroTrace reports whether the trace at lateral position (i, x) carries
// no data. Out-of-bounds positions are treated as empty.
func (g *Geometry) IsZeroTrace(i, x int) bool {
	if !g.InBounds(i, x) {
		return true
	}
	if g.zeroTraces == nil {
		return false
	}
	return g.zeroTraces[i*g.Extents[1]+x]
}
