package geometry

import (
	"fmt"
)

// FillValue marks unknown cells in a Surface height map. It matches the
// sentinel used by horizon label files and is far outside any valid depth.
const FillValue int32 = -999999

// Surface is a partially known labeled horizon: a height map over a window
// of the lateral plane with FillValue marking unknown cells. IMin and XMin
// locate the window's origin in absolute volume coordinates.
type Surface struct {
	// Matrix holds depth values row-major over Rows x Cols, FillValue where
	// the horizon is unknown.
	Matrix []int32

	// Rows and Cols are the window dimensions along axes 0 and 1.
	Rows, Cols int

	// IMin and XMin are the absolute coordinates of Matrix cell (0, 0).
	IMin, XMin int
}

// Cell is one lateral position in window-relative coordinates.
type Cell struct {
	I, X int
}

// NewSurface validates and builds a Surface around an existing height map.
// The matrix is copied.
func NewSurface(matrix []int32, rows, cols, iMin, xMin int) (*Surface, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("geometry: surface window must be non-empty, got %dx%d", rows, cols)
	}
	if len(matrix) != rows*cols {
		return nil, fmt.Errorf("geometry: surface matrix has %d cells, window is %dx%d",
			len(matrix), rows, cols)
	}
	if iMin < 0 || xMin < 0 {
		return nil, fmt.Errorf("geometry: surface origin (%d, %d) must be non-negative", iMin, xMin)
	}
	s := &Surface{
		Matrix: make([]int32, len(matrix)),
		Rows:   rows,
		Cols:   cols,
		IMin:   iMin,
		XMin:   xMin,
	}
	copy(s.Matrix, matrix)
	return s, nil
}

// Known reports whether the window-relative cell (i, x) holds a labeled
// height. Cells outside the window are unknown.
func (s *Surface) Known(i, x int) bool {
	if i < 0 || i >= s.Rows || x < 0 || x >= s.Cols {
		return false
	}
	return s.Matrix[i*s.Cols+x] != FillValue
}

// Height returns the labeled depth at window-relative cell (i, x), or
// FillValue when the cell is unknown or out of the window.
func (s *Surface) Height(i, x int) int32 {
	if i < 0 || i >= s.Rows || x < 0 || x >= s.Cols {
		return FillValue
	}
	return s.Matrix[i*s.Cols+x]
}

// Boundary returns the known cells that touch unknown territory through
// 4-connectivity, in row-major order. Cells on the window edge count as
// boundary: the territory beyond the window is unknown by definition.
func (s *Surface) Boundary() []Cell {
	var cells []Cell
	for i := 0; i < s.Rows; i++ {
		for x := 0; x < s.Cols; x++ {
			if !s.Known(i, x) {
				continue
			}
			if !s.Known(i-1, x) || !s.Known(i+1, x) || !s.Known(i, x-1) || !s.Known(i, x+1) {
				cells = append(cells, Cell{I: i, X: x})
			}
		}
	}
	return cells
}
