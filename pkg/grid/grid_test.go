package grid

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"seiscrop/pkg/geometry"
)

func testGeometry(t *testing.T, extents [3]int) *geometry.Geometry {
	t.Helper()
	g, err := geometry.New("cube", extents, nil)
	if err != nil {
		t.Fatalf("building geometry: %v", err)
	}
	return g
}

// TestMakeGridCanonicalTiling verifies the canonical tiling: extent
// (100,100,50), crop (1,10,10), ranges [0,50) [0,100) [0,50), stride
// (10,10,10) produce exactly 5 x 10 x 5 = 250 anchors, with edge correction
// adding at most one anchor per axis
func TestMakeGridCanonicalTiling(t *testing.T) {
	geom := testGeometry(t, [3]int{100, 100, 50})

	g, err := MakeGrid(geom, [3]int{1, 10, 10},
		[2]int{0, 50}, [2]int{0, 100}, [2]int{0, 50},
		[3]int{10, 10, 10}, 16)
	if err != nil {
		t.Fatalf("MakeGrid failed: %v", err)
	}

	if g.Total() != 250 {
		t.Errorf("expected 250 anchors, got %d", g.Total())
	}
	if g.Pages() != 16 { // ceil(250/16)
		t.Errorf("expected 16 pages, got %d", g.Pages())
	}

	want := Info{
		Volume:       "cube",
		Offsets:      [3]int{0, 0, 0},
		PredictShape: [3]int{50, 100, 50},
		CropShape:    [3]int{1, 10, 10},
		Ranges:       [3][2]int{{0, 50}, {0, 100}, {0, 50}},
	}
	if diff := cmp.Diff(want, g.Info(), cmpopts.IgnoreFields(Info{}, "RunID")); diff != "" {
		t.Errorf("info mismatch (-want +got):\n%s", diff)
	}
	if g.Info().RunID == "" {
		t.Error("expected a non-empty run id")
	}
}

// TestGridDefaultsStridesToCrop verifies the non-overlapping default
func TestGridDefaultsStridesToCrop(t *testing.T) {
	geom := testGeometry(t, [3]int{40, 40, 40})

	g, err := MakeGrid(geom, [3]int{10, 10, 10},
		[2]int{0, 40}, [2]int{0, 40}, [2]int{0, 40},
		[3]int{}, 8)
	if err != nil {
		t.Fatalf("MakeGrid failed: %v", err)
	}
	// 40/10 divides evenly: 4 ticks per axis, closing tick coincides
	// with the last natural tick.
	if g.Total() != 64 {
		t.Errorf("expected 64 anchors, got %d", g.Total())
	}
}

// TestGridAnchorsStayInRange verifies no anchor starts before range.low or
// ends past range.high
func TestGridAnchorsStayInRange(t *testing.T) {
	geom := testGeometry(t, [3]int{100, 100, 50})
	crop := [3]int{5, 7, 9}
	ranges := [3][2]int{{7, 93}, {0, 100}, {10, 49}}

	g, err := MakeGrid(geom, crop, ranges[0], ranges[1], ranges[2], [3]int{3, 5, 4}, 64)
	if err != nil {
		t.Fatalf("MakeGrid failed: %v", err)
	}

	for page, ok := g.Next(); ok; page, ok = g.Next() {
		for _, a := range page {
			for axis := 0; axis < 3; axis++ {
				if a.Coords[axis] < ranges[axis][0] {
					t.Fatalf("anchor %v starts before range on axis %d", a.Coords, axis)
				}
				if a.Coords[axis]+crop[axis] > ranges[axis][1] {
					t.Fatalf("anchor %v overruns range on axis %d", a.Coords, axis)
				}
			}
		}
	}
}

// TestGridCoversRange verifies every coordinate of the requested region
// lies inside at least one emitted tile (strides <= crop shape)
func TestGridCoversRange(t *testing.T) {
	geom := testGeometry(t, [3]int{100, 100, 50})
	crop := [3]int{5, 7, 9}
	ranges := [3][2]int{{7, 93}, {0, 100}, {10, 49}}

	g, err := MakeGrid(geom, crop, ranges[0], ranges[1], ranges[2], [3]int{3, 5, 4}, 64)
	if err != nil {
		t.Fatalf("MakeGrid failed: %v", err)
	}

	var covered [3][]bool
	for axis := 0; axis < 3; axis++ {
		covered[axis] = make([]bool, ranges[axis][1]-ranges[axis][0])
	}
	for page, ok := g.Next(); ok; page, ok = g.Next() {
		for _, a := range page {
			for axis := 0; axis < 3; axis++ {
				for c := a.Coords[axis]; c < a.Coords[axis]+crop[axis]; c++ {
					covered[axis][c-ranges[axis][0]] = true
				}
			}
		}
	}
	for axis := 0; axis < 3; axis++ {
		for i, ok := range covered[axis] {
			if !ok {
				t.Fatalf("coordinate %d on axis %d not covered by any tile", i+ranges[axis][0], axis)
			}
		}
	}
}

// TestGridPageRoundTrip verifies concatenating all pages yields exactly
// Total rows over exactly Pages calls
func TestGridPageRoundTrip(t *testing.T) {
	geom := testGeometry(t, [3]int{30, 30, 30})

	g, err := MakeGrid(geom, [3]int{4, 4, 4},
		[2]int{0, 30}, [2]int{0, 30}, [2]int{0, 30},
		[3]int{6, 6, 6}, 7)
	if err != nil {
		t.Fatalf("MakeGrid failed: %v", err)
	}

	total, pages := 0, 0
	for page, ok := g.Next(); ok; page, ok = g.Next() {
		if len(page) == 0 || len(page) > 7 {
			t.Fatalf("page %d has %d rows", pages, len(page))
		}
		total += len(page)
		pages++
	}
	if total != g.Total() {
		t.Errorf("concatenated %d rows, Total is %d", total, g.Total())
	}
	if pages != g.Pages() {
		t.Errorf("drained %d pages, Pages is %d", pages, g.Pages())
	}
	// The generator is dead after exhaustion.
	if _, ok := g.Next(); ok {
		t.Error("exhausted generator produced another page")
	}
}

// TestGridFlushAnchorDeduplicated verifies a stride landing exactly on the
// boundary does not duplicate the closing anchor
func TestGridFlushAnchorDeduplicated(t *testing.T) {
	geom := testGeometry(t, [3]int{20, 20, 20})

	// Axis ticks: 0,5,10 natural; 10+10 == 20 drops tick 10, edge
	// correction re-adds 20-10 = 10. It must appear once, sorted.
	ticks := axisTicks([2]int{0, 20}, 5, 10)
	want := []int{0, 5, 10}
	if len(ticks) != len(want) {
		t.Fatalf("expected ticks %v, got %v", want, ticks)
	}
	for i := range want {
		if ticks[i] != want[i] {
			t.Fatalf("expected ticks %v, got %v", want, ticks)
		}
	}

	g, err := MakeGrid(geom, [3]int{10, 10, 10},
		[2]int{0, 20}, [2]int{0, 20}, [2]int{0, 20},
		[3]int{5, 5, 5}, 100)
	if err != nil {
		t.Fatalf("MakeGrid failed: %v", err)
	}
	if g.Total() != 27 {
		t.Errorf("expected 27 anchors, got %d", g.Total())
	}
}

// TestGridRejectsBadRanges verifies InvalidRange fires before any tile is
// produced
func TestGridRejectsBadRanges(t *testing.T) {
	geom := testGeometry(t, [3]int{100, 100, 50})
	crop := [3]int{1, 10, 10}
	okRange := [2]int{0, 50}

	cases := []struct {
		name       string
		r0, r1, r2 [2]int
	}{
		{"negative low", [2]int{-1, 50}, okRange, okRange},
		{"high past extent", okRange, [2]int{0, 101}, okRange},
		{"crop larger than range", okRange, okRange, [2]int{0, 5}},
	}
	for _, tc := range cases {
		if _, err := MakeGrid(geom, crop, tc.r0, tc.r1, tc.r2, [3]int{}, 16); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("%s: expected ErrInvalidRange, got %v", tc.name, err)
		}
	}

	if _, err := MakeGrid(geom, [3]int{0, 10, 10}, okRange, okRange, okRange, [3]int{}, 16); !errors.Is(err, ErrInvalidArgs) {
		t.Errorf("expected ErrInvalidArgs for zero crop, got %v", err)
	}
	if _, err := MakeGrid(geom, crop, okRange, okRange, okRange, [3]int{}, 0); !errors.Is(err, ErrInvalidArgs) {
		t.Errorf("expected ErrInvalidArgs for zero batch size, got %v", err)
	}
}

// TestGridFullVolumeRange verifies range.high == extent is a valid request
func TestGridFullVolumeRange(t *testing.T) {
	geom := testGeometry(t, [3]int{100, 100, 50})
	g, err := MakeGrid(geom, [3]int{10, 10, 10},
		[2]int{0, 100}, [2]int{0, 100}, [2]int{0, 50},
		[3]int{}, 16)
	if err != nil {
		t.Fatalf("full-volume grid rejected: %v", err)
	}
	if g.Total() != 10*10*5 {
		t.Errorf("expected 500 anchors, got %d", g.Total())
	}
}
