package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/matzehuels/orbitgraph/pkg/camera"
	"github.com/matzehuels/orbitgraph/pkg/errors"
	"github.com/matzehuels/orbitgraph/pkg/geom"
	"github.com/matzehuels/orbitgraph/pkg/layout"
	"github.com/matzehuels/orbitgraph/pkg/network"
)

// =============================================================================
// Layout - Computed 3D Layout
// =============================================================================

// Layout is the serialized form of a computed layout.
type Layout struct {
	ID           string  `json:"id" bson:"id"`
	SnapshotID   string  `json:"snapshot_id,omitempty" bson:"snapshot_id,omitempty"`
	SnapshotHash string  `json:"snapshot_hash" bson:"snapshot_hash"`
	Seed         uint64  `json:"seed,omitempty" bson:"seed,omitempty"`
	Iterations   int     `json:"iterations" bson:"iterations"`
	Radius       float64 `json:"radius" bson:"radius"`

	Nodes    []Node      `json:"nodes" bson:"nodes"`
	Edges    []Edge      `json:"edges" bson:"edges"`
	Clusters []Cluster   `json:"clusters" bson:"clusters"`
	Camera   camera.Pose `json:"camera" bson:"camera"`

	// Dropped counts relationships whose endpoints were not in the snapshot.
	Dropped int `json:"dropped,omitempty" bson:"dropped,omitempty"`
}

// Node is a positioned entity.
type Node struct {
	ID              int64                  `json:"id" bson:"id"`
	Name            string                 `json:"name" bson:"name"`
	Cluster         int                    `json:"cluster" bson:"cluster"`
	Position        geom.Vec3              `json:"position" bson:"position"`
	Characteristics layout.Characteristics `json:"characteristics" bson:"characteristics"`
}

// Edge is a relationship between two positioned entities.
type Edge struct {
	ID             int64    `json:"id" bson:"id"`
	From           int64    `json:"from" bson:"from"`
	To             int64    `json:"to" bson:"to"`
	Type           string   `json:"type" bson:"type"`
	Classification string   `json:"classification" bson:"classification"`
	Strength       *float64 `json:"strength,omitempty" bson:"strength,omitempty"`
}

// Cluster is a group of entities sharing faction, dominant type and degree bucket.
type Cluster struct {
	ID       int               `json:"id" bson:"id"`
	Key      layout.ClusterKey `json:"key" bson:"key"`
	Label    string            `json:"label" bson:"label"`
	Members  []int64           `json:"members" bson:"members"`
	Centroid geom.Vec3         `json:"centroid" bson:"centroid"`
	Seed     geom.Vec3         `json:"seed" bson:"seed"`
}

// Relationship converts the edge back to a relationship.
func (e Edge) Relationship() network.Relationship {
	return network.Relationship{
		ID:             e.ID,
		SourceID:       e.From,
		TargetID:       e.To,
		Strength:       e.Strength,
		Type:           e.Type,
		Classification: e.Classification,
	}
}

// =============================================================================
// Result ↔ Layout Conversion
// =============================================================================

// FromResult serializes a computed layout. Nodes follow the order of
// res.IDs and clusters the order of first appearance.
func FromResult(snap Snapshot, res layout.Result, opts layout.Options, pose camera.Pose) Layout {
	opts = opts.WithDefaults()
	names := make(map[int64]string, len(snap.Entities))
	for _, e := range snap.Entities {
		if _, ok := names[e.ID]; !ok {
			names[e.ID] = e.DisplayName()
		}
	}

	out := Layout{
		ID:           uuid.NewString(),
		SnapshotID:   snap.ID,
		SnapshotHash: snap.Hash(),
		Seed:         opts.Seed,
		Iterations:   opts.Iterations,
		Radius:       res.Radius,
		Nodes:        make([]Node, len(res.IDs)),
		Edges:        make([]Edge, len(res.Edges)),
		Clusters:     make([]Cluster, res.Clusters.Len()),
		Camera:       pose,
		Dropped:      res.Dropped,
	}

	for i, id := range res.IDs {
		out.Nodes[i] = Node{
			ID:              id,
			Name:            names[id],
			Cluster:         res.Clusters.Of[id],
			Position:        res.Positions[id],
			Characteristics: res.Characteristics[id],
		}
	}
	for i, r := range res.Edges {
		out.Edges[i] = Edge{
			ID:             r.ID,
			From:           r.SourceID,
			To:             r.TargetID,
			Type:           r.TypeOrUnknown(),
			Classification: r.ClassOrNormal(),
			Strength:       r.Strength,
		}
	}
	for g, key := range res.Clusters.Keys {
		c := Cluster{
			ID:      g,
			Key:     key,
			Label:   key.String(),
			Members: res.Clusters.Members[g],
		}
		if g < len(res.Centroids) {
			c.Centroid = res.Centroids[g]
		}
		if g < len(res.SeedPoints) {
			c.Seed = res.SeedPoints[g]
		}
		out.Clusters[g] = c
	}
	return out
}

// Result rebuilds the in-memory layout result. Velocities are zero.
func (l Layout) Result() layout.Result {
	res := layout.Result{
		IDs:             make([]int64, len(l.Nodes)),
		Characteristics: make(map[int64]layout.Characteristics, len(l.Nodes)),
		Positions:       make(map[int64]geom.Vec3, len(l.Nodes)),
		Velocities:      make(map[int64]geom.Vec3, len(l.Nodes)),
		Clusters: layout.Clusters{
			Of:      make(map[int64]int, len(l.Nodes)),
			Keys:    make([]layout.ClusterKey, len(l.Clusters)),
			Members: make([][]int64, len(l.Clusters)),
		},
		Centroids:  make([]geom.Vec3, len(l.Clusters)),
		SeedPoints: make([]geom.Vec3, len(l.Clusters)),
		Radius:     l.Radius,
		Edges:      make([]network.Relationship, len(l.Edges)),
		Dropped:    l.Dropped,
	}
	for i, n := range l.Nodes {
		res.IDs[i] = n.ID
		res.Characteristics[n.ID] = n.Characteristics
		res.Positions[n.ID] = n.Position
		res.Velocities[n.ID] = geom.Vec3{}
		res.Clusters.Of[n.ID] = n.Cluster
	}
	for g, c := range l.Clusters {
		res.Clusters.Keys[g] = c.Key
		res.Clusters.Members[g] = c.Members
		res.Centroids[g] = c.Centroid
		res.SeedPoints[g] = c.Seed
	}
	for i, e := range l.Edges {
		res.Edges[i] = e.Relationship()
	}
	return res
}

// Entities reconstructs the entity list from the node table.
func (l Layout) Entities() []network.Entity {
	out := make([]network.Entity, len(l.Nodes))
	for i, n := range l.Nodes {
		faction := n.Characteristics.Faction
		if faction == network.FactionNone {
			faction = ""
		}
		out[i] = network.Entity{
			ID:        n.ID,
			Name:      n.Name,
			Faction:   faction,
			RiskLevel: n.Characteristics.Risk,
		}
	}
	return out
}

// Validate checks that every reference in the layout resolves.
func (l Layout) Validate() error {
	ids := make(map[int64]bool, len(l.Nodes))
	for _, n := range l.Nodes {
		if ids[n.ID] {
			return errors.New(errors.ErrCodeInvalidFormat, "duplicate node %d", n.ID)
		}
		ids[n.ID] = true
		if n.Cluster < 0 || n.Cluster >= len(l.Clusters) {
			return errors.New(errors.ErrCodeInvalidFormat, "node %d references cluster %d of %d", n.ID, n.Cluster, len(l.Clusters))
		}
	}
	for _, e := range l.Edges {
		if !ids[e.From] || !ids[e.To] {
			return errors.New(errors.ErrCodeInvalidFormat, "edge %d references unknown node (%d→%d)", e.ID, e.From, e.To)
		}
	}
	for g, c := range l.Clusters {
		if c.ID != g {
			return errors.New(errors.ErrCodeInvalidFormat, "cluster %d stored at index %d", c.ID, g)
		}
	}
	return nil
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout and validates it.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode layout")
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Layout{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "layout %s", path)
	}
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
