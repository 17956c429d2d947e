package layout

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/orbitgraph/pkg/geom"
	"github.com/matzehuels/orbitgraph/pkg/network"
)

// Seeding is the initial spatial state produced by [Seed].
type Seeding struct {
	Positions  map[int64]geom.Vec3
	Velocities map[int64]geom.Vec3
	// Points holds each cluster's point on the sphere, indexed by cluster id.
	Points []geom.Vec3
	Radius float64
}

// SphereRadius returns the radius of the sphere clusters are placed on.
func SphereRadius(clusters int, opts Options) float64 {
	opts = opts.WithDefaults()
	g := max(clusters, 1)
	return max(opts.MinSphereRadius, math.Cbrt(float64(g))*opts.SphereScale)
}

// SpherePoint returns the i-th of g points on a sphere of radius r, spread
// with a golden-angle spiral.
func SpherePoint(i, g int, r, golden float64) geom.Vec3 {
	g = max(g, 1)
	theta := math.Acos(2*float64(i)/float64(g) - 1)
	phi := 2 * math.Pi * float64(i) * golden
	return geom.V(
		r*math.Sin(theta)*math.Cos(phi),
		r*math.Sin(theta)*math.Sin(phi),
		r*math.Cos(theta),
	)
}

// Seed places every cluster on a sphere and scatters each entity within
// opts.ScatterRadius of its cluster's point. Velocities start at zero.
func Seed(entities []network.Entity, clusters Clusters, opts Options, rng *rand.Rand) Seeding {
	opts = opts.WithDefaults()
	if rng == nil {
		rng = opts.Rand()
	}

	g := clusters.Len()
	s := Seeding{
		Positions:  make(map[int64]geom.Vec3, len(entities)),
		Velocities: make(map[int64]geom.Vec3, len(entities)),
		Points:     make([]geom.Vec3, g),
		Radius:     SphereRadius(g, opts),
	}
	for i := range g {
		s.Points[i] = SpherePoint(i, g, s.Radius, opts.GoldenRatio)
	}

	for _, e := range entities {
		if _, done := s.Positions[e.ID]; done {
			continue
		}
		var center geom.Vec3
		if id, ok := clusters.Of[e.ID]; ok {
			center = s.Points[id]
		}
		s.Positions[e.ID] = center.Add(scatter(rng, opts.ScatterRadius))
		s.Velocities[e.ID] = geom.Vec3{}
	}
	return s
}

func scatter(rng *rand.Rand, spread float64) geom.Vec3 {
	a1 := rng.Float64() * 2 * math.Pi
	a2 := rng.Float64() * math.Pi
	r := rng.Float64() * spread
	return geom.V(
		r*math.Sin(a2)*math.Cos(a1),
		r*math.Sin(a2)*math.Sin(a1),
		r*math.Cos(a2),
	)
}
