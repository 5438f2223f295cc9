// Package grid generates regular lattices of fixed-size crop anchors
// covering a requested sub-region of one volume. The lattice is computed
// eagerly at construction (so range errors fail before any tile is
// produced) and consumed through a paged pull generator owned by the
// caller.
package grid

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"seiscrop/pkg/geometry"
)

// Sentinel errors for grid construction.
var (
	// ErrInvalidRange indicates a requested range outside the volume or too
	// narrow for the crop shape. No partial grid is ever returned.
	ErrInvalidRange = errors.New("grid: range must lie inside the volume and fit the crop shape")
	// ErrInvalidArgs indicates non-positive crop extents, strides or batch
	// size.
	ErrInvalidArgs = errors.New("grid: crop shape, strides and batch size must be positive")
)

// Anchor is one crop anchor in absolute cube coordinates.
type Anchor struct {
	Volume string
	Coords [3]int
}

// Info describes how to map emitted anchors back into a dense prediction
// array for the requested sub-region.
type Info struct {
	// RunID identifies this planning run for downstream correlation.
	RunID string

	// Volume names the cube the grid covers.
	Volume string

	// Offsets is the minimum anchor per axis; subtracting it re-expresses
	// anchors relative to the sampled sub-region.
	Offsets [3]int

	// PredictShape is range.high - range.low per axis.
	PredictShape [3]int

	// CropShape is the requested crop extents.
	CropShape [3]int

	// Ranges holds the requested [low, high) interval per axis.
	Ranges [3][2]int
}

// Grid is a restartable-by-reconstruction, finite, lazily paged sequence of
// crop anchors. It is fully consumed by repeated Next calls; a fresh
// MakeGrid call is required to iterate again.
type Grid struct {
	anchors   []Anchor
	batchSize int
	cursor    int
	info      Info
}

// MakeGrid builds the anchor lattice for geom covering the sub-region
// given by r0, r1, r2 (half-open [low, high) per axis) with the given crop
// shape and strides. A zero-valued strides defaults to cropShape
// (non-overlapping tiling). Per axis, anchors start at low and step by the
// stride; when the natural steps leave a gap before high, one closing
// anchor at high-crop is appended so the final tile sits flush with the
// upper bound. Anchor order is axis-0-major, axis-2-fastest.
func MakeGrid(geom *geometry.Geometry, cropShape [3]int, r0, r1, r2 [2]int, strides [3]int, batchSize int) (*Grid, error) {
	if strides == ([3]int{}) {
		strides = cropShape
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: batch size %d", ErrInvalidArgs, batchSize)
	}
	ranges := [3][2]int{r0, r1, r2}
	for axis := 0; axis < 3; axis++ {
		if cropShape[axis] <= 0 || strides[axis] <= 0 {
			return nil, fmt.Errorf("%w: axis %d crop %d stride %d",
				ErrInvalidArgs, axis, cropShape[axis], strides[axis])
		}
		low, high := ranges[axis][0], ranges[axis][1]
		if low < 0 || high > geom.Extents[axis] {
			return nil, fmt.Errorf("%w: axis %d range [%d, %d) on extent %d",
				ErrInvalidRange, axis, low, high, geom.Extents[axis])
		}
		if low+cropShape[axis] > high {
			return nil, fmt.Errorf("%w: axis %d crop %d does not fit range [%d, %d)",
				ErrInvalidRange, axis, cropShape[axis], low, high)
		}
	}

	var ticks [3][]int
	for axis := 0; axis < 3; axis++ {
		ticks[axis] = axisTicks(ranges[axis], strides[axis], cropShape[axis])
	}

	anchors := make([]Anchor, 0, len(ticks[0])*len(ticks[1])*len(ticks[2]))
	for _, t0 := range ticks[0] {
		for _, t1 := range ticks[1] {
			for _, t2 := range ticks[2] {
				anchors = append(anchors, Anchor{
					Volume: geom.Name,
					Coords: [3]int{t0, t1, t2},
				})
			}
		}
	}

	info := Info{
		RunID:     uuid.New().String(),
		Volume:    geom.Name,
		CropShape: cropShape,
		Ranges:    ranges,
	}
	for axis := 0; axis < 3; axis++ {
		info.Offsets[axis] = ticks[axis][0]
		info.PredictShape[axis] = ranges[axis][1] - ranges[axis][0]
	}

	return &Grid{anchors: anchors, batchSize: batchSize, info: info}, nil
}

// axisTicks computes the sorted, de-duplicated anchor positions for one
// axis. Natural ticks whose tile would cross high are dropped; if any were
// dropped, the closing tick high-crop is appended so the range is fully
// covered at the cost of one overlapping tile at the far edge.
func axisTicks(r [2]int, stride, crop int) []int {
	low, high := r[0], r[1]
	kept := make([]int, 0, (high-low)/stride+2)
	dropped := false
	for a := low; a < high; a += stride {
		if a+crop < high {
			kept = append(kept, a)
		} else {
			dropped = true
		}
	}
	if dropped {
		kept = append(kept, high-crop)
	}
	sort.Ints(kept)
	out := kept[:0]
	for i, a := range kept {
		if i > 0 && a == out[len(out)-1] {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Total returns the number of anchors in the grid.
func (g *Grid) Total() int {
	return len(g.anchors)
}

// Pages returns ceil(Total / batchSize), the exact number of Next calls
// that return ok.
func (g *Grid) Pages() int {
	return (len(g.anchors) + g.batchSize - 1) / g.batchSize
}

// Next returns the next page of up to batchSize anchors. ok is false once
// the grid is exhausted; the generator is then dead.
func (g *Grid) Next() (page []Anchor, ok bool) {
	if g.cursor >= len(g.anchors) {
		return nil, false
	}
	end := g.cursor + g.batchSize
	if end > len(g.anchors) {
		end = len(g.anchors)
	}
	page = g.anchors[g.cursor:end]
	g.cursor = end
	return page, true
}

// Info returns the reassembly metadata for this grid.
func (g *Grid) Info() Info {
	return g.info
}
