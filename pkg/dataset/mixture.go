// Package dataset composes per-volume samplers into one dataset-level
// mixture and provides the region filter chain that reshapes a sampler's
// output stream: axis truncation, tick decimation, unit-to-cube rescaling
// and user post-processing. It owns no volume data; it only consults shape
// metadata from pkg/geometry.
package dataset

import (
	"fmt"

	"seiscrop/pkg/geometry"
	"seiscrop/pkg/sampler"
)

// Mixture maps every volume of a dataset to its own sampler and combines
// them into a single weighted mixture whose draws carry the volume identity.
// A Mixture is immutable after New and safe to share across readers; the
// samplers inside it are not re-entrant, so concurrent draw throughput needs
// one Mixture per worker.
type Mixture struct {
	order     []string
	geoms     map[string]*geometry.Geometry
	perVolume map[string]sampler.Sampler
	weights   []float64
	combined  sampler.Sampler
}

// New builds the dataset mixture. Volumes keep the order of geoms (dataset
// order). specs supplies the per-volume leaf sampler; volumes missing from
// specs fall back to uniform. weights holds one positive proportion per
// volume, defaulting to uniform 1/len(geoms); they are normalized so the
// stored weights always sum to 1. Every per-volume sampler is truncated to
// the unit cube before mixing.
func New(geoms []*geometry.Geometry, specs map[string]sampler.Spec, weights []float64, seed uint64) (*Mixture, error) {
	if len(geoms) == 0 {
		return nil, fmt.Errorf("dataset: mixture needs at least one volume")
	}
	if weights != nil && len(weights) != len(geoms) {
		return nil, fmt.Errorf("dataset: %d weights for %d volumes", len(weights), len(geoms))
	}

	m := &Mixture{
		geoms:     make(map[string]*geometry.Geometry, len(geoms)),
		perVolume: make(map[string]sampler.Sampler, len(geoms)),
	}

	branches := make([]sampler.Weighted, 0, len(geoms))
	total := 0.0
	for i, geom := range geoms {
		if _, dup := m.geoms[geom.Name]; dup {
			return nil, fmt.Errorf("dataset: duplicate volume %q", geom.Name)
		}

		spec, ok := specs[geom.Name]
		if !ok {
			spec = sampler.Spec{Kind: sampler.KindUniform}
		}
		base, err := spec.Build(seed + uint64(i))
		if err != nil {
			return nil, fmt.Errorf("dataset: building sampler for %q: %w", geom.Name, err)
		}
		clamped, err := sampler.TruncateBox(base, [3]float64{0, 0, 0}, [3]float64{1, 1, 1})
		if err != nil {
			return nil, fmt.Errorf("dataset: clamping sampler for %q: %w", geom.Name, err)
		}
		tagged := sampler.Constant(geom.Name, clamped)

		w := 1.0 / float64(len(geoms))
		if weights != nil {
			w = weights[i]
			if w <= 0 {
				return nil, fmt.Errorf("dataset: weight for %q must be positive, got %v", geom.Name, w)
			}
		}
		total += w

		m.order = append(m.order, geom.Name)
		m.geoms[geom.Name] = geom
		m.perVolume[geom.Name] = tagged
		branches = append(branches, sampler.Weighted{Sampler: tagged, Weight: w})
	}

	m.weights = make([]float64, len(branches))
	for i := range branches {
		m.weights[i] = branches[i].Weight / total
	}

	combined, err := sampler.MixtureN(branches, seed)
	if err != nil {
		return nil, fmt.Errorf("dataset: combining volume samplers: %w", err)
	}
	m.combined = combined
	return m, nil
}

// Volumes returns the volume names in dataset order.
func (m *Mixture) Volumes() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Weights returns the normalized mixture proportions in dataset order.
func (m *Mixture) Weights() []float64 {
	out := make([]float64, len(m.weights))
	copy(out, m.weights)
	return out
}

// Geometry returns the shape record for a volume, or nil if unknown.
func (m *Mixture) Geometry(volume string) *geometry.Geometry {
	return m.geoms[volume]
}

// VolumeSampler returns the unit-cube sampler for one volume, tagged with
// its identity, or nil if the volume is unknown.
func (m *Mixture) VolumeSampler(volume string) sampler.Sampler {
	return m.perVolume[volume]
}

// Sampler returns the combined dataset sampler.
func (m *Mixture) Sampler() sampler.Sampler {
	return m.combined
}
