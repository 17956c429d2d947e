package layout

import (
	"github.com/matzehuels/orbitgraph/pkg/geom"
	"github.com/matzehuels/orbitgraph/pkg/network"
)

// Result is the complete layout of one snapshot.
type Result struct {
	// IDs lists entity ids in snapshot order, duplicates removed.
	IDs             []int64
	Characteristics map[int64]Characteristics
	Clusters        Clusters
	Positions       map[int64]geom.Vec3
	Velocities      map[int64]geom.Vec3
	// Centroids are the cluster centroids after the final pass.
	Centroids []geom.Vec3
	// SeedPoints and Radius describe the initial cluster sphere.
	SeedPoints []geom.Vec3
	Radius     float64
	// Edges are the relationships whose endpoints both exist.
	Edges []network.Relationship
	// Dropped counts relationships discarded for a missing endpoint.
	Dropped int
}

// Empty reports whether the result holds no entities.
func (r Result) Empty() bool { return len(r.IDs) == 0 }

// Points returns the positions in IDs order.
func (r Result) Points() []geom.Vec3 {
	out := make([]geom.Vec3, len(r.IDs))
	for i, id := range r.IDs {
		out[i] = r.Positions[id]
	}
	return out
}

// Compute runs extraction, clustering, seeding and relaxation over one
// snapshot. It never fails; see the package documentation for how
// malformed input is treated.
func Compute(entities []network.Entity, rels []network.Relationship, opts Options) Result {
	opts = opts.WithDefaults()
	entities = Unique(entities)
	edges, dropped := Connected(entities, rels)

	res := Result{
		IDs:             make([]int64, len(entities)),
		Characteristics: Extract(entities, edges),
		Edges:           edges,
		Dropped:         dropped,
	}
	for i, e := range entities {
		res.IDs[i] = e.ID
	}

	res.Clusters = Assign(entities, res.Characteristics)
	s := Seed(entities, res.Clusters, opts, opts.Rand())
	res.Positions, res.Velocities = s.Positions, s.Velocities
	res.SeedPoints, res.Radius = s.Points, s.Radius

	Relax(entities, edges, res.Clusters, res.Positions, res.Velocities, opts, opts.Iterations)
	res.Centroids = Centroids(res.Clusters, res.Positions)
	return res
}

// Unique drops entities whose id was already seen, keeping the first.
func Unique(entities []network.Entity) []network.Entity {
	seen := make(map[int64]bool, len(entities))
	out := make([]network.Entity, 0, len(entities))
	for _, e := range entities {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		out = append(out, e)
	}
	return out
}

// Connected splits rels into those whose endpoints are both in entities and
// a count of the rest.
func Connected(entities []network.Entity, rels []network.Relationship) ([]network.Relationship, int) {
	known := make(map[int64]bool, len(entities))
	for _, e := range entities {
		known[e.ID] = true
	}
	out := make([]network.Relationship, 0, len(rels))
	for _, r := range rels {
		if known[r.SourceID] && known[r.TargetID] {
			out = append(out, r)
		}
	}
	return out, len(rels) - len(out)
}
