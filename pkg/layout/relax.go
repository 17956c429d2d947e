package layout

import (
	"github.com/matzehuels/orbitgraph/pkg/geom"
	"github.com/matzehuels/orbitgraph/pkg/network"
)

// arena is the dense working set of one relaxation run.
type arena struct {
	ids     []int64
	pos     []geom.Vec3
	vel     []geom.Vec3
	cluster []int
	adj     [][]int
	sums    []geom.Vec3
	counts  []int
}

func newArena(entities []network.Entity, edges []network.Relationship, clusters Clusters,
	positions, velocities map[int64]geom.Vec3) *arena {
	index := make(map[int64]int, len(entities))
	a := &arena{}
	for _, e := range entities {
		if _, dup := index[e.ID]; dup {
			continue
		}
		index[e.ID] = len(a.ids)
		a.ids = append(a.ids, e.ID)
		a.pos = append(a.pos, positions[e.ID])
		a.vel = append(a.vel, velocities[e.ID])
		cid, ok := clusters.Of[e.ID]
		if !ok {
			cid = -1
		}
		a.cluster = append(a.cluster, cid)
	}

	a.adj = make([][]int, len(a.ids))
	for _, r := range edges {
		s, ok1 := index[r.SourceID]
		t, ok2 := index[r.TargetID]
		if !ok1 || !ok2 {
			continue
		}
		a.adj[s] = append(a.adj[s], t)
		if s != t {
			a.adj[t] = append(a.adj[t], s)
		}
	}

	a.sums = make([]geom.Vec3, clusters.Len())
	a.counts = make([]int, clusters.Len())
	return a
}

func (a *arena) centroids() {
	clear(a.sums)
	clear(a.counts)
	for i, c := range a.cluster {
		if c < 0 {
			continue
		}
		a.sums[c] = a.sums[c].Add(a.pos[i])
		a.counts[c]++
	}
	for c, n := range a.counts {
		if n > 0 {
			a.sums[c] = a.sums[c].Scale(1 / float64(n))
		}
	}
}

// Relax runs iterations force-directed passes, updating positions and
// velocities in place. Entities are visited in order and each sees the
// positions already updated earlier in the same pass. Cluster centroids are
// recomputed at the start of every pass. When opts.MaxForce is positive the
// net force on an entity is clamped to it. Edges with an endpoint outside
// entities are ignored.
func Relax(entities []network.Entity, edges []network.Relationship, clusters Clusters,
	positions, velocities map[int64]geom.Vec3, opts Options, iterations int) {
	opts = opts.WithDefaults()
	if len(entities) == 0 || iterations <= 0 {
		return
	}

	a := newArena(entities, edges, clusters, positions, velocities)
	for range iterations {
		a.step(opts)
	}
	for i, id := range a.ids {
		positions[id] = a.pos[i]
		velocities[id] = a.vel[i]
	}
}

func (a *arena) step(opts Options) {
	a.centroids()
	for i := range a.pos {
		p := a.pos[i]
		var f geom.Vec3

		for j := range a.pos {
			if j == i {
				continue
			}
			d := p.Sub(a.pos[j])
			dist := max(d.Len(), opts.MinDistance)
			k := opts.Repulsion
			if a.cluster[i] >= 0 && a.cluster[i] == a.cluster[j] {
				k *= opts.SameClusterFactor
			}
			f = f.Add(d.Normalize().Scale(k / (dist * dist)))
		}

		for _, j := range a.adj[i] {
			f = f.Add(attract(p, a.pos[j], opts.Attraction))
		}

		if c := a.cluster[i]; c >= 0 {
			f = f.Add(attract(p, a.sums[c], opts.ClusterAttraction))
		}

		if opts.MaxForce > 0 {
			if n := f.Len(); n > opts.MaxForce {
				f = f.Scale(opts.MaxForce / n)
			}
		}

		v := a.vel[i].Add(f).Scale(opts.Damping)
		a.vel[i] = v
		a.pos[i] = p.Add(v)
	}
}

// attract returns a spring force toward to of magnitude distance*k.
func attract(from, to geom.Vec3, k float64) geom.Vec3 {
	return to.Sub(from).Scale(k)
}
