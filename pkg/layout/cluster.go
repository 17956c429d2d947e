package layout

import (
	"github.com/matzehuels/orbitgraph/pkg/geom"
	"github.com/matzehuels/orbitgraph/pkg/network"
)

// ClusterKey is the composite key shared by all members of a cluster.
type ClusterKey struct {
	Faction string `json:"faction"`
	Type    string `json:"type"`
	Bucket  string `json:"bucket"`
}

// KeyOf returns the cluster key for c.
func KeyOf(c Characteristics) ClusterKey {
	return ClusterKey{Faction: c.Faction, Type: c.DominantType, Bucket: c.Bucket}
}

func (k ClusterKey) String() string {
	return k.Faction + "_" + k.Type + "_" + k.Bucket
}

// Clusters is a partition of entities. Cluster ids are dense, starting at 0,
// allocated in the order each key is first seen.
type Clusters struct {
	// Of maps entity id to cluster id.
	Of map[int64]int
	// Keys holds each cluster's key, indexed by cluster id.
	Keys []ClusterKey
	// Members lists entity ids per cluster in entity order.
	Members [][]int64
}

// Len returns the number of clusters.
func (c Clusters) Len() int { return len(c.Keys) }

// Assign partitions entities by the key of their characteristics. Entities
// missing from chars are treated as isolated with default attributes.
func Assign(entities []network.Entity, chars map[int64]Characteristics) Clusters {
	c := Clusters{Of: make(map[int64]int, len(entities))}
	ids := make(map[ClusterKey]int)
	for _, e := range entities {
		if _, done := c.Of[e.ID]; done {
			continue
		}
		ch, ok := chars[e.ID]
		if !ok {
			ch = Characteristics{
				DominantType: network.TypeUnknown,
				Bucket:       BucketOf(0),
				Faction:      e.FactionOrNone(),
			}
		}
		key := KeyOf(ch)
		id, ok := ids[key]
		if !ok {
			id = len(c.Keys)
			ids[key] = id
			c.Keys = append(c.Keys, key)
			c.Members = append(c.Members, nil)
		}
		c.Of[e.ID] = id
		c.Members[id] = append(c.Members[id], e.ID)
	}
	return c
}

// Centroids returns the mean member position of every cluster, indexed by
// cluster id. Members without a position are ignored; a cluster with no
// positioned member sits at the origin.
func Centroids(c Clusters, positions map[int64]geom.Vec3) []geom.Vec3 {
	out := make([]geom.Vec3, c.Len())
	for id, members := range c.Members {
		pts := make([]geom.Vec3, 0, len(members))
		for _, m := range members {
			if p, ok := positions[m]; ok {
				pts = append(pts, p)
			}
		}
		out[id] = geom.Mean(pts)
	}
	return out
}
