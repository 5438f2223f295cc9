package dataset

import (
	"math"
	"testing"

	"seiscrop/pkg/geometry"
	"seiscrop/pkg/sampler"
)

func testGeometries(t *testing.T) []*geometry.Geometry {
	t.Helper()
	a, err := geometry.New("cube_a", [3]int{100, 500, 200}, nil)
	if err != nil {
		t.Fatalf("building cube_a: %v", err)
	}
	b, err := geometry.New("cube_b", [3]int{300, 300, 400}, nil)
	if err != nil {
		t.Fatalf("building cube_b: %v", err)
	}
	return []*geometry.Geometry{a, b}
}

// TestMixtureWeightsNormalize verifies insertion order is preserved and
// weights always sum to 1
func TestMixtureWeightsNormalize(t *testing.T) {
	geoms := testGeometries(t)

	m, err := New(geoms, nil, []float64{3, 1}, 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	vols := m.Volumes()
	if len(vols) != 2 || vols[0] != "cube_a" || vols[1] != "cube_b" {
		t.Errorf("expected dataset order [cube_a cube_b], got %v", vols)
	}

	weights := m.Weights()
	if math.Abs(weights[0]-0.75) > 1e-12 || math.Abs(weights[1]-0.25) > 1e-12 {
		t.Errorf("expected normalized weights [0.75 0.25], got %v", weights)
	}
	sum := weights[0] + weights[1]
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("weights must sum to 1, got %v", sum)
	}
}

// TestMixtureDefaultsToUniformWeights verifies the 1/n default
func TestMixtureDefaultsToUniformWeights(t *testing.T) {
	m, err := New(testGeometries(t), nil, nil, 2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for i, w := range m.Weights() {
		if math.Abs(w-0.5) > 1e-12 {
			t.Errorf("weight %d: expected 0.5, got %v", i, w)
		}
	}
}

// TestMixtureTagsDraws verifies every combined draw carries a known volume
// identity and unit-cube coordinates
func TestMixtureTagsDraws(t *testing.T) {
	m, err := New(testGeometries(t), nil, []float64{4, 1}, 3)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	points, err := m.Sampler().Sample(10000)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}

	counts := make(map[string]int)
	for _, p := range points {
		counts[p.Volume]++
		for axis := 0; axis < 3; axis++ {
			if p.Coords[axis] < 0 || p.Coords[axis] > 1 {
				t.Fatalf("draw %v escaped the unit cube", p.Coords)
			}
		}
	}
	if counts["cube_a"]+counts["cube_b"] != 10000 {
		t.Fatalf("draws with unknown volume tags: %v", counts)
	}
	got := float64(counts["cube_a"]) / 10000
	if math.Abs(got-0.8) > 0.02 {
		t.Errorf("expected cube_a frequency 0.80 +- 0.02, observed %.4f", got)
	}
}

// TestMixtureRejectsBadInput verifies construction-time validation
func TestMixtureRejectsBadInput(t *testing.T) {
	geoms := testGeometries(t)
	if _, err := New(nil, nil, nil, 4); err == nil {
		t.Error("expected error for empty dataset")
	}
	if _, err := New(geoms, nil, []float64{1}, 4); err == nil {
		t.Error("expected error for weight count mismatch")
	}
	if _, err := New(geoms, nil, []float64{1, 0}, 4); err == nil {
		t.Error("expected error for non-positive weight")
	}
	if _, err := New([]*geometry.Geometry{geoms[0], geoms[0]}, nil, nil, 4); err == nil {
		t.Error("expected error for duplicate volume")
	}
}

// TestFilterTruncate verifies axis-range truncation through the chain
func TestFilterTruncate(t *testing.T) {
	geoms := testGeometries(t)
	m, err := New(geoms, nil, nil, 5)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	s, err := NewFilter(geoms).Truncate(0, 0.0, 0.8).Apply(m.Sampler())
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	points, err := s.Sample(5000)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	for _, p := range points {
		if p.Coords[0] > 0.8 {
			t.Fatalf("draw %v escaped truncation to [0, 0.8]", p.Coords[0])
		}
	}
}

// TestFilterRejectsBadSteps verifies invalid steps fail when the chain is
// composed, before any draw
func TestFilterRejectsBadSteps(t *testing.T) {
	geoms := testGeometries(t)
	m, err := New(geoms, nil, nil, 6)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := NewFilter(geoms).Truncate(1, 0.5, 0.5).Apply(m.Sampler()); err == nil {
		t.Error("expected error for zero-width truncation")
	}
	if _, err := NewFilter(geoms).Decimate(1, 0, -1).Apply(m.Sampler()); err == nil {
		t.Error("expected error for non-positive decimation step")
	}
	if _, err := NewFilter(geoms).Decimate(7, 10, -1).Apply(m.Sampler()); err == nil {
		t.Error("expected error for bad decimation axis")
	}
	// cube_a is 100 long on axis 0, so no tick of 150, 200, ... fits.
	if _, err := NewFilter(geoms).Decimate(0, 50, 150).Apply(m.Sampler()); err == nil {
		t.Error("expected error for a decimation origin past a volume extent")
	}
}

// TestFilterDecimate verifies draws snap to the arithmetic tick progression
// in absolute units
func TestFilterDecimate(t *testing.T) {
	geoms := testGeometries(t)
	m, err := New(geoms, nil, nil, 7)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Every 50th crossline starting from 70.
	s, err := NewFilter(geoms).Decimate(1, 50, 70).Apply(m.Sampler())
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	points, err := s.Sample(2000)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	for _, p := range points {
		extent := 500.0
		if p.Volume == "cube_b" {
			extent = 300.0
		}
		abs := p.Coords[1] * extent
		tick := math.Round(abs)
		if math.Abs(abs-tick) > 1e-9 {
			t.Fatalf("decimated coordinate %v is not integral in cube units", abs)
		}
		if int(tick-70)%50 != 0 || tick < 70 || tick >= extent {
			t.Fatalf("decimated coordinate %v is not on the tick progression", tick)
		}
	}
}

// TestSnapToTicks verifies nearest-tick rounding with ties to the lower tick
func TestSnapToTicks(t *testing.T) {
	cases := []struct {
		v    float64
		want float64
	}{
		{0, 70},    // below the first tick
		{70, 70},   // exact tick
		{94, 70},   // closer to 70
		{95, 70},   // tie rounds down
		{96, 120},  // closer to 120
		{460, 470}, // near the last tick
		{499, 470}, // beyond the last tick
	}
	for _, tc := range cases {
		if got := snapToTicks(tc.v, 50, 70, 500); got != tc.want {
			t.Errorf("snapToTicks(%v) = %v, want %v", tc.v, got, tc.want)
		}
	}
}

// TestFilterToCube verifies unit coordinates rescale to in-bounds integer
// cube indices per volume
func TestFilterToCube(t *testing.T) {
	geoms := testGeometries(t)
	m, err := New(geoms, nil, nil, 8)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	s, err := NewFilter(geoms).ToCube().Apply(m.Sampler())
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	points, err := s.Sample(5000)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	for _, p := range points {
		g := m.Geometry(p.Volume)
		if g == nil {
			t.Fatalf("draw for unknown volume %q", p.Volume)
		}
		for axis := 0; axis < 3; axis++ {
			c := p.Coords[axis]
			if c != math.Trunc(c) {
				t.Fatalf("cube coordinate %v on axis %d is not integral", c, axis)
			}
			if c < 0 || int(c) >= g.Shape()[axis] {
				t.Fatalf("cube coordinate %v on axis %d outside extent %d", c, axis, g.Shape()[axis])
			}
		}
	}
}

// TestFilterPost verifies the user hook runs last
func TestFilterPost(t *testing.T) {
	geoms := testGeometries(t)
	m, err := New(geoms, nil, nil, 9)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	s, err := NewFilter(geoms).ToCube().Post(func(points []sampler.Point) ([]sampler.Point, error) {
		for i := range points {
			points[i].Coords[2] = 0
		}
		return points, nil
	}).Apply(m.Sampler())
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	points, err := s.Sample(100)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	for _, p := range points {
		if p.Coords[2] != 0 {
			t.Fatal("post hook did not run after rescaling")
		}
	}
}
