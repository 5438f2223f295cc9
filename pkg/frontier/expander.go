// Package frontier implements coverage-tracked greedy crop placement along
// the boundary of a partially known labeled surface. One call performs
// exactly one growth step: it walks the boundary cells, proposes crops that
// extend the surface outward by a stride along both lateral scan
// orientations, rejects placements that leave the volume or touch empty
// traces, and claims the accepted footprints in a coverage bitmap so no two
// emitted crops overlap.
package frontier

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/op/go-logging"

	"seiscrop/pkg/geometry"
)

var log = logging.MustGetLogger("frontier")

// Sentinel errors for expansion construction.
var (
	// ErrInvalidArgs indicates non-positive crop extents, stride or batch
	// size, or a stride exceeding the lateral crop lengths.
	ErrInvalidArgs = errors.New("frontier: crop shape, stride and batch size must be positive with stride <= lateral crop lengths")
	// ErrCoverageMismatch indicates a pre-seeded coverage bitmap whose
	// dimensions do not match the volume's lateral plane.
	ErrCoverageMismatch = errors.New("frontier: coverage dimensions do not match the volume")
	// ErrSurfaceMismatch indicates a surface window that does not lie inside
	// the volume's lateral plane, usually a surface loaded for a different
	// volume.
	ErrSurfaceMismatch = errors.New("frontier: surface window must lie inside the volume")
)

// Anchor is one crop anchor in absolute cube coordinates.
type Anchor struct {
	Volume string
	Coords [3]int
}

// Candidate is one accepted crop placement. Shape may differ between
// entries: the two scan orientations emit transposed lateral shapes. Order
// records the growth order for downstream sequential processing.
type Candidate struct {
	Anchor Anchor
	Shape  [3]int
	Order  int
}

// Info describes how to map the emitted anchors back into a dense
// prediction array covering everything this growth step touched.
type Info struct {
	RunID        string
	Volume       string
	CropShape    [3]int
	Offsets      [3]int
	PredictShape [3]int
	Ranges       [3][2]int
}

// Expansion is the paged result of one growth step.
type Expansion struct {
	entries   []Candidate
	batchSize int
	cursor    int
	cov       *Coverage
	info      Info
}

// MakeExpandGrid performs one growth step for the surface on geom.
// cropShape is (rows, cols, depth) for the axis-1 scan orientation; the
// axis-0 orientation uses the transposed lateral shape. stride is how far
// each accepted crop extends past the boundary point. cov may carry
// coverage accumulated by earlier growth steps; nil starts from an all-zero
// bitmap. Boundary points yielding no valid placement are skipped silently;
// zero candidates is a valid outcome.
func MakeExpandGrid(geom *geometry.Geometry, surf *geometry.Surface, cropShape [3]int, stride, batchSize int, cov *Coverage) (*Expansion, error) {
	for axis, n := range cropShape {
		if n <= 0 {
			return nil, fmt.Errorf("%w: crop extent %d on axis %d", ErrInvalidArgs, n, axis)
		}
	}
	if stride <= 0 || stride > cropShape[0] || stride > cropShape[1] {
		return nil, fmt.Errorf("%w: stride %d for crop %v", ErrInvalidArgs, stride, cropShape)
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: batch size %d", ErrInvalidArgs, batchSize)
	}
	rows, cols := geom.Extents[geometry.AxisInline], geom.Extents[geometry.AxisXline]
	if surf.IMin+surf.Rows > rows || surf.XMin+surf.Cols > cols {
		return nil, fmt.Errorf("%w: window %dx%d at (%d, %d) on plane %dx%d",
			ErrSurfaceMismatch, surf.Rows, surf.Cols, surf.IMin, surf.XMin, rows, cols)
	}
	if cov == nil {
		cov = NewCoverage(rows, cols)
	} else if r, c := cov.Dims(); r != rows || c != cols {
		return nil, fmt.Errorf("%w: coverage %dx%d, volume %dx%d",
			ErrCoverageMismatch, r, c, rows, cols)
	}

	e := &Expansion{
		batchSize: batchSize,
		cov:       cov,
		info: Info{
			RunID:     uuid.New().String(),
			Volume:    geom.Name,
			CropShape: cropShape,
		},
	}

	rejected := 0
	for _, p := range surf.Boundary() {
		ai := p.I + surf.IMin
		ax := p.X + surf.XMin
		if cov.Covered(ai, ax) {
			continue
		}

		h := surf.Height(p.I, p.X)
		depthAnchor := int(h) - cropShape[geometry.AxisDepth]/2

		// Both scan orientations, both sides. Axis-1 scan keeps cropShape;
		// axis-0 scan transposes the lateral extents.
		for _, cand := range []struct {
			i, x  int
			shape [3]int
		}{
			{ai, ax - stride, cropShape},
			{ai, ax + stride - cropShape[1], cropShape},
			{ai - stride, ax, [3]int{cropShape[1], cropShape[0], cropShape[2]}},
			{ai + stride - cropShape[1], ax, [3]int{cropShape[1], cropShape[0], cropShape[2]}},
		} {
			if !e.accept(geom, cand.i, cand.x, depthAnchor, cand.shape) {
				rejected++
			}
		}
	}

	e.finishInfo()
	log.Debugf("expand %s: %d candidates, %d rejected, coverage %d cells",
		geom.Name, len(e.entries), rejected, cov.Count())
	return e, nil
}

// accept validates one placement and, when valid, claims its footprint and
// appends it to the output. Rejections are expected outcomes, not errors.
func (e *Expansion) accept(geom *geometry.Geometry, i, x, depth int, shape [3]int) bool {
	if i < 0 || x < 0 || i+shape[0] > geom.Extents[0] || x+shape[1] > geom.Extents[1] {
		return false
	}
	if depth < 0 || depth+shape[2] > geom.Extents[geometry.AxisDepth] {
		return false
	}
	for fi := i; fi < i+shape[0]; fi++ {
		for fx := x; fx < x+shape[1]; fx++ {
			if geom.IsZeroTrace(fi, fx) {
				return false
			}
		}
	}
	if e.cov.intersectsRect(i, x, shape[0], shape[1]) {
		return false
	}

	e.cov.MarkRect(i, x, shape[0], shape[1])
	e.entries = append(e.entries, Candidate{
		Anchor: Anchor{Volume: e.info.Volume, Coords: [3]int{i, x, depth}},
		Shape:  shape,
		Order:  len(e.entries),
	})
	return true
}

// finishInfo derives offsets, ranges and the prediction shape from the
// accepted candidates. With zero candidates everything stays zero-valued.
func (e *Expansion) finishInfo() {
	if len(e.entries) == 0 {
		return
	}
	var lo, hi [3]int
	for axis := 0; axis < 3; axis++ {
		lo[axis] = e.entries[0].Anchor.Coords[axis]
		hi[axis] = e.entries[0].Anchor.Coords[axis] + e.entries[0].Shape[axis]
	}
	for _, c := range e.entries[1:] {
		for axis := 0; axis < 3; axis++ {
			if a := c.Anchor.Coords[axis]; a < lo[axis] {
				lo[axis] = a
			}
			if top := c.Anchor.Coords[axis] + c.Shape[axis]; top > hi[axis] {
				hi[axis] = top
			}
		}
	}
	for axis := 0; axis < 3; axis++ {
		e.info.Offsets[axis] = lo[axis]
		e.info.PredictShape[axis] = hi[axis] - lo[axis]
		e.info.Ranges[axis] = [2]int{lo[axis], hi[axis]}
	}
}

// Total returns the number of accepted candidates.
func (e *Expansion) Total() int {
	return len(e.entries)
}

// Pages returns ceil(Total / batchSize).
func (e *Expansion) Pages() int {
	return (len(e.entries) + e.batchSize - 1) / e.batchSize
}

// Next returns the next page of candidates in growth order. ok is false
// once the expansion is exhausted.
func (e *Expansion) Next() (page []Candidate, ok bool) {
	if e.cursor >= len(e.entries) {
		return nil, false
	}
	end := e.cursor + e.batchSize
	if end > len(e.entries) {
		end = len(e.entries)
	}
	page = e.entries[e.cursor:end]
	e.cursor = end
	return page, true
}

// Coverage returns the bitmap accumulated by this run, for seeding the next
// growth step.
func (e *Expansion) Coverage() *Coverage {
	return e.cov
}

// Info returns the reassembly metadata for this growth step.
func (e *Expansion) Info() Info {
	return e.info
}
