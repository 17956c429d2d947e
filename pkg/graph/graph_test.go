package graph

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/orbitgraph/pkg/camera"
	"github.com/matzehuels/orbitgraph/pkg/errors"
	"github.com/matzehuels/orbitgraph/pkg/geom"
	"github.com/matzehuels/orbitgraph/pkg/layout"
	"github.com/matzehuels/orbitgraph/pkg/network"
)

func testSnapshot() Snapshot {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return Snapshot{
		ID: "snap-1",
		Entities: []network.Entity{
			{ID: 1, Name: "Ana", Faction: "PCC", Email: "ana@corp.example"},
			{ID: 2, Name: "Bruno", Faction: "PCC"},
			{ID: 3, Name: ""},
		},
		Relationships: []network.Relationship{
			{ID: 10, SourceID: 1, TargetID: 2, Type: network.TypeCriminalPartner, Strength: network.Strength(0.9), Start: start},
			{ID: 11, SourceID: 2, TargetID: 3, Type: network.TypeFamily, Start: start},
			{ID: 12, SourceID: 3, TargetID: 99, Start: start},
		},
	}
}

func testLayout(t *testing.T) (Snapshot, layout.Result, Layout) {
	t.Helper()
	snap := testSnapshot()
	opts := layout.DefaultOptions()
	opts.Seed = 42
	res := layout.Compute(snap.Entities, snap.Relationships, opts)
	pose, ok := camera.FrameAll(res.Points())
	if !ok {
		t.Fatal("FrameAll returned false for a non-empty layout")
	}
	return snap, res, FromResult(snap, res, opts, pose)
}

func TestSnapshotHash(t *testing.T) {
	a := testSnapshot()
	b := testSnapshot()
	b.ID = "other"
	if a.Hash() != b.Hash() {
		t.Error("Hash should ignore the snapshot ID")
	}

	b.Entities[0].Name = "Ana Maria"
	if a.Hash() == b.Hash() {
		t.Error("Hash should change with entity content")
	}
}

func TestNewSnapshot(t *testing.T) {
	s1 := NewSnapshot(nil, nil, nil)
	s2 := NewSnapshot(nil, nil, nil)
	if s1.ID == "" || s1.ID == s2.ID {
		t.Errorf("NewSnapshot IDs = %q, %q, want distinct non-empty", s1.ID, s2.ID)
	}
	if !s1.Empty() {
		t.Error("snapshot without entities should be empty")
	}
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	want := testSnapshot()
	if err := WriteSnapshotFile(want, path); err != nil {
		t.Fatalf("WriteSnapshotFile: %v", err)
	}
	got, err := ReadSnapshotFile(path)
	if err != nil {
		t.Fatalf("ReadSnapshotFile: %v", err)
	}
	if got.Hash() != want.Hash() {
		t.Error("round trip changed snapshot content")
	}
	if got.Relationships[0].StrengthOr(0) != 0.9 {
		t.Errorf("strength = %v, want 0.9", got.Relationships[0].StrengthOr(0))
	}
	if got.Relationships[1].Strength != nil {
		t.Error("absent strength should stay absent")
	}
}

func TestReadSnapshotFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadSnapshotFile(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: code = %v, want %v", errors.GetCode(err), errors.ErrCodeFileNotFound)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = ReadSnapshotFile(bad)
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad file: code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidFormat)
	}
}

func TestFromResult(t *testing.T) {
	snap, res, l := testLayout(t)

	if l.ID == "" {
		t.Error("layout ID should be set")
	}
	if l.SnapshotID != snap.ID || l.SnapshotHash != snap.Hash() {
		t.Errorf("snapshot reference = %q/%q, want %q/%q", l.SnapshotID, l.SnapshotHash, snap.ID, snap.Hash())
	}
	if l.Seed != 42 || l.Iterations != layout.DefaultIterations {
		t.Errorf("seed/iterations = %d/%d, want 42/%d", l.Seed, l.Iterations, layout.DefaultIterations)
	}
	if len(l.Nodes) != 3 {
		t.Fatalf("len(Nodes) = %d, want 3", len(l.Nodes))
	}
	if len(l.Edges) != 2 || l.Dropped != 1 {
		t.Errorf("edges/dropped = %d/%d, want 2/1", len(l.Edges), l.Dropped)
	}
	if l.Nodes[2].Name != network.NameUnknown {
		t.Errorf("unnamed node = %q, want %q", l.Nodes[2].Name, network.NameUnknown)
	}
	for _, n := range l.Nodes {
		if n.Position != res.Positions[n.ID] {
			t.Errorf("node %d position = %v, want %v", n.ID, n.Position, res.Positions[n.ID])
		}
	}
	if l.Edges[1].Type != network.TypeFamily || l.Edges[1].Classification != network.ClassNormal {
		t.Errorf("edge defaults = %q/%q", l.Edges[1].Type, l.Edges[1].Classification)
	}
	if err := l.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLayoutResultRoundTrip(t *testing.T) {
	_, res, l := testLayout(t)
	back := l.Result()

	if len(back.IDs) != len(res.IDs) {
		t.Fatalf("len(IDs) = %d, want %d", len(back.IDs), len(res.IDs))
	}
	for i, id := range res.IDs {
		if back.IDs[i] != id {
			t.Errorf("IDs[%d] = %d, want %d", i, back.IDs[i], id)
		}
		if back.Clusters.Of[id] != res.Clusters.Of[id] {
			t.Errorf("cluster of %d = %d, want %d", id, back.Clusters.Of[id], res.Clusters.Of[id])
		}
		if !geom.ApproxEqual(back.Positions[id], res.Positions[id], 1e-12) {
			t.Errorf("position of %d changed", id)
		}
	}
	if back.Clusters.Len() != res.Clusters.Len() {
		t.Errorf("clusters = %d, want %d", back.Clusters.Len(), res.Clusters.Len())
	}
	if back.Radius != res.Radius {
		t.Errorf("Radius = %v, want %v", back.Radius, res.Radius)
	}

	ents := l.Entities()
	if ents[0].Faction != "PCC" || ents[2].Faction != "" {
		t.Errorf("entity factions = %q, %q, want PCC and empty", ents[0].Faction, ents[2].Faction)
	}
}

func TestUnmarshalLayoutValidation(t *testing.T) {
	_, _, good := testLayout(t)

	tests := []struct {
		name   string
		mutate func(l *Layout)
	}{
		{"duplicate node", func(l *Layout) { l.Nodes[1].ID = l.Nodes[0].ID }},
		{"cluster out of range", func(l *Layout) { l.Nodes[0].Cluster = len(l.Clusters) }},
		{"dangling edge", func(l *Layout) { l.Edges[0].To = 1234 }},
		{"cluster index", func(l *Layout) { l.Clusters[0].ID = 7 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := good
			l.Nodes = append([]Node(nil), good.Nodes...)
			l.Edges = append([]Edge(nil), good.Edges...)
			l.Clusters = append([]Cluster(nil), good.Clusters...)
			tt.mutate(&l)

			data, err := MarshalLayout(l)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := UnmarshalLayout(data); !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("UnmarshalLayout error = %v, want %s", err, errors.ErrCodeInvalidFormat)
			}
		})
	}
}

func TestLayoutFileRoundTrip(t *testing.T) {
	_, _, want := testLayout(t)
	path := filepath.Join(t.TempDir(), "l.json")
	if err := WriteLayoutFile(want, path); err != nil {
		t.Fatalf("WriteLayoutFile: %v", err)
	}
	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile: %v", err)
	}
	if got.ID != want.ID || len(got.Nodes) != len(want.Nodes) {
		t.Errorf("round trip = %s/%d nodes, want %s/%d", got.ID, len(got.Nodes), want.ID, len(want.Nodes))
	}
	if got.Camera != want.Camera {
		t.Errorf("Camera = %+v, want %+v", got.Camera, want.Camera)
	}
}

func TestEmptyLayout(t *testing.T) {
	snap := Snapshot{}
	res := layout.Compute(nil, nil, layout.DefaultOptions())
	l := FromResult(snap, res, layout.DefaultOptions(), camera.Pose{})
	if len(l.Nodes) != 0 || len(l.Clusters) != 0 {
		t.Errorf("empty layout has %d nodes, %d clusters", len(l.Nodes), len(l.Clusters))
	}
	if err := l.Validate(); err != nil {
		t.Errorf("Validate(empty) = %v", err)
	}
}
