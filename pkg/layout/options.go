package layout

import "math/rand/v2"

// Default parameters.
const (
	DefaultIterations        = 100
	DefaultRepulsion         = 80.0
	DefaultSameClusterFactor = 0.5
	DefaultAttraction        = 0.01
	DefaultClusterAttraction = 0.05
	DefaultDamping           = 0.9
	DefaultMinDistance       = 0.1
	DefaultScatterRadius     = 5.0
	DefaultMinSphereRadius   = 20.0
	DefaultSphereScale       = 8.0
	DefaultGoldenRatio       = 0.618
)

// Options tunes the layout. The zero value means "use defaults" for every
// field; see [DefaultOptions].
type Options struct {
	// Iterations is the number of relaxation passes.
	Iterations int `json:"iterations,omitempty" toml:"iterations"`

	Repulsion         float64 `json:"repulsion,omitempty" toml:"repulsion"`
	SameClusterFactor float64 `json:"same_cluster_factor,omitempty" toml:"same_cluster_factor"`
	Attraction        float64 `json:"attraction,omitempty" toml:"attraction"`
	ClusterAttraction float64 `json:"cluster_attraction,omitempty" toml:"cluster_attraction"`
	Damping           float64 `json:"damping,omitempty" toml:"damping"`
	MinDistance       float64 `json:"min_distance,omitempty" toml:"min_distance"`
	// MaxForce caps the net force applied to an entity in one pass.
	// Zero, the default, leaves forces uncapped.
	MaxForce float64 `json:"max_force,omitempty" toml:"max_force"`

	ScatterRadius   float64 `json:"scatter_radius,omitempty" toml:"scatter_radius"`
	MinSphereRadius float64 `json:"min_sphere_radius,omitempty" toml:"min_sphere_radius"`
	SphereScale     float64 `json:"sphere_scale,omitempty" toml:"sphere_scale"`
	GoldenRatio     float64 `json:"golden_ratio,omitempty" toml:"golden_ratio"`

	// Seed fixes the member scatter. Zero draws a fresh seed per run.
	Seed uint64 `json:"seed,omitempty" toml:"seed"`
}

// DefaultOptions returns the standard parameters with a random seed.
func DefaultOptions() Options {
	return Options{
		Iterations:        DefaultIterations,
		Repulsion:         DefaultRepulsion,
		SameClusterFactor: DefaultSameClusterFactor,
		Attraction:        DefaultAttraction,
		ClusterAttraction: DefaultClusterAttraction,
		Damping:           DefaultDamping,
		MinDistance:       DefaultMinDistance,
		ScatterRadius:     DefaultScatterRadius,
		MinSphereRadius:   DefaultMinSphereRadius,
		SphereScale:       DefaultSphereScale,
		GoldenRatio:       DefaultGoldenRatio,
	}
}

// WithDefaults fills every zero field from [DefaultOptions].
// Iterations is only filled when zero; a negative count means no relaxation.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.Iterations == 0 {
		o.Iterations = d.Iterations
	}
	fill(&o.Repulsion, d.Repulsion)
	fill(&o.SameClusterFactor, d.SameClusterFactor)
	fill(&o.Attraction, d.Attraction)
	fill(&o.ClusterAttraction, d.ClusterAttraction)
	fill(&o.Damping, d.Damping)
	fill(&o.MinDistance, d.MinDistance)
	fill(&o.ScatterRadius, d.ScatterRadius)
	fill(&o.MinSphereRadius, d.MinSphereRadius)
	fill(&o.SphereScale, d.SphereScale)
	fill(&o.GoldenRatio, d.GoldenRatio)
	return o
}

// Deterministic reports whether two runs over the same input yield the same
// layout.
func (o Options) Deterministic() bool { return o.Seed != 0 }

// Rand returns the generator used for member scatter.
func (o Options) Rand() *rand.Rand {
	seed := o.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

func fill(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}
