// Package graph provides the serialization types for network snapshots and
// computed layouts.
//
// This package defines the wire format shared by JSON files, API responses
// and the layout cache:
//
//   - [Snapshot]: the entities and relationships visible in one time window
//   - [Layout]: a computed 3D layout with positions, clusters and a camera pose
//
// # Snapshot Serialization
//
// Snapshots use the field names of the source store:
//
//	{
//	  "id": "5b7f...",
//	  "entities": [{"id": 1, "name": "Ana", "faction": "PCC"}],
//	  "relationships": [{"id": 10, "source_id": 1, "target_id": 2,
//	                     "relationship_type": "family", "start_time": "..."}]
//	}
//
// Common operations:
//
//	snap, _ := graph.ReadSnapshotFile("network.json")
//	graph.WriteSnapshotFile(snap, "copy.json")
//	hash := snap.Hash() // content hash, ignores the ID
//
// # Layout Serialization
//
//	res := layout.Compute(snap.Entities, snap.Relationships, opts)
//	pose, _ := camera.FrameAll(res.Points())
//	l := graph.FromResult(snap, res, pose)
//	graph.WriteLayoutFile(l, "network.layout.json")
//
// [UnmarshalLayout] validates references (edge endpoints, cluster indices),
// and [Layout.Result] rebuilds a [layout.Result] so a stored layout can be
// installed into a scene without recomputing it.
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
