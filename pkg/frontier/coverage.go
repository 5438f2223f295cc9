package frontier

import (
	"github.com/Workiva/go-datastructures/bitarray"
)

// Coverage is a mutable bitmap over the lateral plane of one volume; a cell
// is set once any emitted crop's footprint has touched it. A Coverage is
// owned by a single expansion run; to grow a surface over several passes
// the caller keeps the Coverage returned by one run and seeds the next run
// with it. It is not safe for concurrent mutation.
type Coverage struct {
	rows, cols int
	bits       bitarray.BitArray
	marked     int
}

// NewCoverage returns an all-zero coverage bitmap for a rows x cols lateral
// plane.
func NewCoverage(rows, cols int) *Coverage {
	return &Coverage{
		rows: rows,
		cols: cols,
		bits: bitarray.NewBitArray(uint64(rows * cols)),
	}
}

// Dims returns the lateral plane dimensions the bitmap covers.
func (c *Coverage) Dims() (rows, cols int) {
	return c.rows, c.cols
}

// Count returns how many cells are marked.
func (c *Coverage) Count() int {
	return c.marked
}

// Covered reports whether cell (i, x) is already claimed. Positions outside
// the plane count as covered: nothing can be placed there.
func (c *Coverage) Covered(i, x int) bool {
	if i < 0 || i >= c.rows || x < 0 || x >= c.cols {
		return true
	}
	set, _ := c.bits.GetBit(uint64(i*c.cols + x))
	return set
}

// Mark claims cell (i, x). Out-of-plane positions are ignored.
func (c *Coverage) Mark(i, x int) {
	if i < 0 || i >= c.rows || x < 0 || x >= c.cols {
		return
	}
	pos := uint64(i*c.cols + x)
	if set, _ := c.bits.GetBit(pos); set {
		return
	}
	_ = c.bits.SetBit(pos)
	c.marked++
}

// MarkRect claims every cell of the footprint [i0, i0+di) x [x0, x0+dx).
func (c *Coverage) MarkRect(i0, x0, di, dx int) {
	for i := i0; i < i0+di; i++ {
		for x := x0; x < x0+dx; x++ {
			c.Mark(i, x)
		}
	}
}

// intersectsRect reports whether any cell of the footprint is claimed.
// Out-of-plane cells count as claimed.
func (c *Coverage) intersectsRect(i0, x0, di, dx int) bool {
	for i := i0; i < i0+di; i++ {
		for x := x0; x < x0+dx; x++ {
			if c.Covered(i, x) {
				return true
			}
		}
	}
	return false
}
